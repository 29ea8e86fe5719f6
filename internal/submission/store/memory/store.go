// Package memory is an in-memory submission store for tests and runs
// without a configured output file.
package memory

import (
	"context"
	"sync"

	"curia/internal/submission/models"
)

type Store struct {
	mu       sync.Mutex
	messages []models.Message

	// FailNext, when set, makes the next operation return the error once.
	FailNext error
}

func New() *Store {
	return &Store{}
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *Store) Append(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *Store) List(_ context.Context) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return append([]models.Message(nil), s.messages...), nil
}
