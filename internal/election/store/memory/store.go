// Package memory is an in-memory ledger store for tests and dev runs.
package memory

import (
	"context"
	"sync"

	"curia/internal/election/models"
)

type Store struct {
	mu          sync.Mutex
	eligibility *models.EligibilityLedger
	ballots     *models.BallotLedger

	// FailNext, when set, makes the next store operation return the error
	// once. Lets tests exercise ledger failure paths.
	FailNext error
}

func New() *Store {
	return &Store{
		eligibility: models.NewEligibilityLedger(),
		ballots:     models.NewBallotLedger(),
	}
}

// SeedVoters replaces the all-time eligibility list.
func (s *Store) SeedVoters(valid []models.EligibleVoter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eligibility.Valid = append([]models.EligibleVoter(nil), valid...)
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *Store) LoadEligibility(_ context.Context) (*models.EligibilityLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return s.eligibility.Clone(), nil
}

func (s *Store) SaveEligibility(_ context.Context, ledger *models.EligibilityLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.eligibility = ledger.Clone()
	return nil
}

func (s *Store) LoadBallots(_ context.Context) (*models.BallotLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return s.ballots.Clone(), nil
}

func (s *Store) SaveBallots(_ context.Context, ledger *models.BallotLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.ballots = ledger.Clone()
	return nil
}

func (s *Store) SaveAll(_ context.Context, el *models.EligibilityLedger, bl *models.BallotLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.eligibility = el.Clone()
	s.ballots = bl.Clone()
	return nil
}
