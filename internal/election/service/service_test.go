package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"curia/internal/audit"
	auditmemory "curia/internal/audit/memory"
	"curia/internal/election/models"
	"curia/internal/election/store/memory"
	"curia/internal/election/window"
	"curia/internal/platform/middleware"
	domainerrors "curia/pkg/domain-errors"
)

var (
	windowStart = time.Date(2026, time.July, 30, 0, 0, 0, 0, time.UTC)
	duringVote  = time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC)
)

func newService(t *testing.T, store *memory.Store, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return duringVote }),
		WithRand(rand.New(rand.NewSource(1))),
	}
	return New(store, window.NewPolicy(window.FixedStart(windowStart)), append(base, opts...)...)
}

func seededStore(voters ...models.EligibleVoter) *memory.Store {
	store := memory.New()
	store.SeedVoters(voters)
	return store
}

func TestSubmitVoteAccepted(t *testing.T) {
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	svc := newService(t, store)
	ctx := middleware.WithClientMetadata(context.Background(), "203.0.113.7", "Mozilla/5.0")

	err := svc.SubmitVote(ctx, BallotClaim{
		ID:           "CIV-1",
		BallotNumber: "0042",
		Magistrates:  []string{"m1"},
		Senators:     []string{"s1", "s2"},
	})
	require.NoError(t, err)

	key := "2026-07-30 00:00:00"
	el, err := store.LoadEligibility(ctx)
	require.NoError(t, err)
	recs := el.Records(key)
	require.Len(t, recs, 1)
	require.Equal(t, "CIV-1", recs[0].ID)
	require.Equal(t, "203.0.113.7", recs[0].Submitter.Address)
	require.Equal(t, "Mozilla/5.0", recs[0].Submitter.Client)
	require.Equal(t, duringVote, recs[0].TimeUTC)

	bl, err := store.LoadBallots(ctx)
	require.NoError(t, err)
	require.Len(t, bl.Ballots(key), 1)
	require.Equal(t, []string{"s1", "s2"}, bl.Ballots(key)[0].Senators)
}

func TestRefusalsAreIndistinguishable(t *testing.T) {
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	svc := newService(t, store)
	ctx := context.Background()

	// Unknown voter.
	errUnknown := svc.SubmitVote(ctx, BallotClaim{ID: "CIV-9", BallotNumber: "0042"})
	require.Error(t, errUnknown)

	// Wrong ballot number for a known voter.
	errWrongNum := svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "9999"})
	require.Error(t, errWrongNum)

	// Duplicate after a successful vote.
	require.NoError(t, svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042"}))
	errDup := svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042"})
	require.Error(t, errDup)

	// All three denials are the same value with the same message.
	require.Equal(t, errUnknown, errWrongNum)
	require.Equal(t, errUnknown, errDup)
	require.True(t, domainerrors.HasCode(errDup, domainerrors.CodeForbidden))
}

func TestDuplicateLeavesLedgersUntouched(t *testing.T) {
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	svc := newService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042", Senators: []string{"s1"}}))
	require.Error(t, svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042", Senators: []string{"s2"}}))

	key := "2026-07-30 00:00:00"
	el, _ := store.LoadEligibility(ctx)
	require.Len(t, el.Records(key), 1)
	bl, _ := store.LoadBallots(ctx)
	require.Len(t, bl.Ballots(key), 1)
}

func TestWindowClosed(t *testing.T) {
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	afterClose := windowStart.Add(window.Length)
	svc := newService(t, store, WithClock(func() time.Time { return afterClose }))

	err := svc.SubmitVote(context.Background(), BallotClaim{ID: "CIV-1", BallotNumber: "0042"})
	require.ErrorIs(t, err, ErrWindowClosed)

	_, open := svc.CurrentWindow()
	require.False(t, open)
}

func TestDebugBypassOpensWindow(t *testing.T) {
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	afterClose := windowStart.Add(window.Length + time.Hour)
	svc := newService(t, store,
		WithClock(func() time.Time { return afterClose }),
		WithDebugBypass(true),
	)

	require.NoError(t, svc.SubmitVote(context.Background(), BallotClaim{ID: "CIV-1", BallotNumber: "0042"}))

	_, open := svc.CurrentWindow()
	require.True(t, open)
}

func TestSaveFailureSurfacesAndKeepsState(t *testing.T) {
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	svc := newService(t, store)
	ctx := context.Background()

	// FailNext fires on the first store call inside SubmitVote (the
	// eligibility load), so nothing is committed.
	boom := errors.New("disk gone")
	store.FailNext = boom
	err := svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042"})
	require.ErrorIs(t, err, boom)

	el, err := store.LoadEligibility(ctx)
	require.NoError(t, err)
	require.Empty(t, el.Records("2026-07-30 00:00:00"))
}

func TestBallotsCarryNoIdentity(t *testing.T) {
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	svc := newService(t, store)
	ctx := middleware.WithClientMetadata(context.Background(), "203.0.113.7", "Mozilla/5.0")

	require.NoError(t, svc.SubmitVote(ctx, BallotClaim{
		ID: "CIV-1", BallotNumber: "0042", Magistrates: []string{"m1"},
	}))

	bl, _ := store.LoadBallots(ctx)
	data, err := json.Marshal(bl)
	require.NoError(t, err)
	require.NotContains(t, string(data), "CIV-1")
	require.NotContains(t, string(data), "0042")
	require.NotContains(t, string(data), "203.0.113.7")
}

func TestBallotOrderDiffersFromSubmissionOrder(t *testing.T) {
	const n = 16

	voters := make([]models.EligibleVoter, n)
	for i := range voters {
		voters[i] = models.EligibleVoter{
			ID:           fmt.Sprintf("CIV-%03d", i),
			BallotNumber: fmt.Sprintf("%04d", i),
		}
	}
	store := seededStore(voters...)
	svc := newService(t, store, WithRand(rand.New(rand.NewSource(7))))
	ctx := context.Background()

	for i, v := range voters {
		require.NoError(t, svc.SubmitVote(ctx, BallotClaim{
			ID:           v.ID,
			BallotNumber: v.BallotNumber,
			Senators:     []string{fmt.Sprintf("choice-%03d", i)},
		}))
	}

	key := "2026-07-30 00:00:00"
	el, _ := store.LoadEligibility(ctx)
	bl, _ := store.LoadBallots(ctx)
	require.Len(t, bl.Ballots(key), n)

	// Receipts keep submission order; the stored ballots must not, or the
	// two ledgers could be lined up to re-identify votes.
	submitted := make([]string, 0, n)
	for i, rec := range el.Records(key) {
		require.Equal(t, voters[i].ID, rec.ID)
		submitted = append(submitted, fmt.Sprintf("choice-%03d", i))
	}
	stored := make([]string, 0, n)
	for _, b := range bl.Ballots(key) {
		stored = append(stored, b.Senators[0])
	}
	require.ElementsMatch(t, submitted, stored)
	require.NotEqual(t, submitted, stored)
}

func TestConcurrentVotesAllLand(t *testing.T) {
	const n = 32

	voters := make([]models.EligibleVoter, n)
	for i := range voters {
		voters[i] = models.EligibleVoter{
			ID:           fmt.Sprintf("CIV-%03d", i),
			BallotNumber: fmt.Sprintf("%04d", i),
		}
	}
	store := seededStore(voters...)
	svc := newService(t, store)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.SubmitVote(context.Background(), BallotClaim{
				ID:           voters[i].ID,
				BallotNumber: voters[i].BallotNumber,
				Senators:     []string{voters[i].ID},
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "voter %d", i)
	}

	key := "2026-07-30 00:00:00"
	el, _ := store.LoadEligibility(context.Background())
	require.Len(t, el.Records(key), n)
	bl, _ := store.LoadBallots(context.Background())
	require.Len(t, bl.Ballots(key), n)
}

func TestAuditTrail(t *testing.T) {
	sink := auditmemory.New()
	store := seededStore(models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"})
	svc := newService(t, store, WithAuditPublisher(audit.NewPublisher(sink)))
	ctx := context.Background()

	require.NoError(t, svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042"}))
	require.Error(t, svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042"}))

	events := sink.Events()
	require.Len(t, events, 2)
	require.Equal(t, "accepted", events[0].Decision)
	require.Equal(t, "denied", events[1].Decision)
}

func TestReceiptCounts(t *testing.T) {
	store := seededStore(
		models.EligibleVoter{ID: "CIV-1", BallotNumber: "0042"},
		models.EligibleVoter{ID: "CIV-2", BallotNumber: "0043"},
	)
	svc := newService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.SubmitVote(ctx, BallotClaim{ID: "CIV-1", BallotNumber: "0042"}))
	require.NoError(t, svc.SubmitVote(ctx, BallotClaim{ID: "CIV-2", BallotNumber: "0043"}))

	counts, err := svc.ReceiptCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"2026-07-30 00:00:00": 2}, counts)
}
