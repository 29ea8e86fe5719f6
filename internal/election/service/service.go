// Package service implements the voting workflow: window admission, the
// eligibility and duplicate checks, receipt recording and anonymized ballot
// storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"curia/internal/audit"
	"curia/internal/election/models"
	"curia/internal/election/window"
	"curia/internal/platform/metrics"
	"curia/internal/platform/middleware"
	domainerrors "curia/pkg/domain-errors"
)

// ErrWindowClosed is returned when a vote arrives outside the active window.
var ErrWindowClosed = errors.New("voting window closed")

// errBallotRefused covers both a claim that is not on the eligibility list
// and a claim that already has a receipt this window. The two cases share
// one error value so the response gives a probing client nothing to learn
// from.
var errBallotRefused = domainerrors.New(domainerrors.CodeForbidden, "ballot refused")

// Store is the ledger persistence the workflow needs.
type Store interface {
	LoadEligibility(ctx context.Context) (*models.EligibilityLedger, error)
	LoadBallots(ctx context.Context) (*models.BallotLedger, error)
	SaveAll(ctx context.Context, el *models.EligibilityLedger, bl *models.BallotLedger) error
}

// BallotClaim is one vote submission: the voter's credentials plus the
// ballot choices.
type BallotClaim struct {
	ID           string
	BallotNumber string
	Magistrates  []string
	Senators     []string
}

// Service runs the voting workflow. All ledger mutations happen inside one
// critical section so the read-check-append-rewrite cycle over both ledgers
// is serialized.
type Service struct {
	store   Store
	policy  *window.Policy
	logger  *slog.Logger
	audit   *audit.Publisher
	metrics *metrics.Metrics

	debugBypass bool
	now         func() time.Time
	rng         *rand.Rand

	mu sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(pub *audit.Publisher) Option {
	return func(s *Service) { s.audit = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDebugBypass lets votes through outside the window. Dev only.
func WithDebugBypass(enabled bool) Option {
	return func(s *Service) { s.debugBypass = enabled }
}

// WithClock sets the time source for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand sets the randomness source used for ballot shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func New(store Store, policy *window.Policy, opts ...Option) *Service {
	s := &Service{
		store:  store,
		policy: policy,
		logger: slog.Default(),
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CurrentWindow returns the active window and whether votes are being
// accepted right now.
func (s *Service) CurrentWindow() (window.Window, bool) {
	now := s.now()
	w := s.policy.Current(now)
	return w, w.Contains(now) || s.debugBypass
}

// SubmitVote runs one claim through the workflow. On success a receipt is
// appended to the eligibility ledger and the anonymized ballot lands in the
// ballot ledger, which is reshuffled before both are committed together.
func (s *Service) SubmitVote(ctx context.Context, claim BallotClaim) error {
	now := s.now()
	w := s.policy.Current(now)

	if !w.Contains(now) && !s.debugBypass {
		s.reject(ctx, claim.ID, "window_closed")
		return ErrWindowClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.store.LoadEligibility(ctx)
	if err != nil {
		return fmt.Errorf("load eligibility ledger: %w", err)
	}
	bl, err := s.store.LoadBallots(ctx)
	if err != nil {
		return fmt.Errorf("load ballot ledger: %w", err)
	}

	key := w.Key()
	voter := models.EligibleVoter{ID: claim.ID, BallotNumber: claim.BallotNumber}
	if !el.IsEligible(voter) || el.HasVoted(key, claim.ID) {
		s.reject(ctx, claim.ID, "refused")
		return errBallotRefused
	}

	el.AppendRecord(key, models.VoteRecord{
		ID:           claim.ID,
		BallotNumber: claim.BallotNumber,
		Submitter: models.Submitter{
			Address: middleware.GetClientIP(ctx),
			Client:  middleware.GetUserAgent(ctx),
		},
		TimeUTC: now.UTC(),
	})

	bl.Append(key, models.Ballot{
		Magistrates: claim.Magistrates,
		Senators:    claim.Senators,
	})
	bl.Shuffle(key, s.rng)

	if err := s.store.SaveAll(ctx, el, bl); err != nil {
		return fmt.Errorf("commit ledgers: %w", err)
	}

	if s.metrics != nil {
		s.metrics.VotesAccepted.Inc()
	}
	s.emit(ctx, claim.ID, "accepted", "")
	s.logger.InfoContext(ctx, "vote accepted", "window", key)
	return nil
}

// ReceiptCounts returns the number of receipts recorded per window.
func (s *Service) ReceiptCounts(ctx context.Context) (map[string]int, error) {
	el, err := s.store.LoadEligibility(ctx)
	if err != nil {
		return nil, fmt.Errorf("load eligibility ledger: %w", err)
	}
	counts := make(map[string]int, len(el.Windows))
	for key, recs := range el.Windows {
		counts[key] = len(recs)
	}
	return counts, nil
}

func (s *Service) reject(ctx context.Context, subject, reason string) {
	if s.metrics != nil {
		s.metrics.IncVoteRejected(reason)
	}
	s.emit(ctx, subject, "denied", reason)
}

func (s *Service) emit(ctx context.Context, subject, decision, reason string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Subject:  subject,
		Action:   "election.vote",
		Decision: decision,
		Reason:   reason,
		Actor:    middleware.GetClientIP(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
