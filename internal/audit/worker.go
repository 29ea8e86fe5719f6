package audit

import (
	"context"
	"log/slog"

	domainerrors "curia/pkg/domain-errors"
)

// Queue is an in-process buffer between emitters and a persistent store.
// Append never blocks a request: when the buffer is full the event is
// rejected and the publisher's caller decides whether that matters.
type Queue struct {
	ch chan Event
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Event, size)}
}

func (q *Queue) Append(_ context.Context, e Event) error {
	select {
	case q.ch <- e:
		return nil
	default:
		return domainerrors.New(domainerrors.CodeUnavailable, "audit queue full")
	}
}

// Events exposes the queued events for a Worker to drain.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

// Worker drains a queue into a persistent sink. A failed append is logged
// and the event dropped rather than stalling the queue; the trail is an
// operational aid, not a ledger.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

// drain flushes whatever is already buffered at shutdown.
func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil {
		w.logger.Warn("audit append failed",
			"action", event.Action,
			"error", err,
		)
	}
}
