package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"curia/internal/audit"
	"curia/internal/audit/memory"
	"curia/internal/platform/logger"
)

func TestEmitFillsIDAndTimestamp(t *testing.T) {
	store := memory.New()
	pub := audit.NewPublisher(store)

	err := pub.Emit(context.Background(), audit.Event{
		Subject:  "CIV-1",
		Action:   "election.vote",
		Decision: "accepted",
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	require.NotEmpty(t, events[0].ID)
	require.False(t, events[0].Timestamp.IsZero())
}

func TestEmitKeepsProvidedFields(t *testing.T) {
	store := memory.New()
	pub := audit.NewPublisher(store)

	ts := time.Date(2026, time.July, 30, 9, 0, 0, 0, time.UTC)
	err := pub.Emit(context.Background(), audit.Event{
		ID:        "evt-1",
		Timestamp: ts,
		Action:    "election.vote",
		Decision:  "denied",
		Reason:    "window closed",
	})
	require.NoError(t, err)

	events := store.Events()
	require.Equal(t, "evt-1", events[0].ID)
	require.Equal(t, ts, events[0].Timestamp)
}

func TestStoreListByAction(t *testing.T) {
	store := memory.New()
	pub := audit.NewPublisher(store)
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "election.vote", Decision: "accepted"}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "admin.login", Decision: "accepted"}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "election.vote", Decision: "denied"}))

	votes, err := store.ListByAction(ctx, "election.vote")
	require.NoError(t, err)
	require.Len(t, votes, 2)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := audit.NewQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Append(ctx, audit.Event{ID: "evt-1"}))
	require.Error(t, q.Append(ctx, audit.Event{ID: "evt-2"}))
}

func TestWorkerDrainsQueueIntoStore(t *testing.T) {
	q := audit.NewQueue(8)
	store := memory.New()
	worker := audit.NewWorker(store, q.Events(), logger.New(false))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	pub := audit.NewPublisher(q)
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "election.vote", Decision: "accepted"}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "election.vote", Decision: "denied"}))

	require.Eventually(t, func() bool {
		return len(store.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
