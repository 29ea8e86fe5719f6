// Package audit captures decision trails for the portal. Events are emitted
// from domain logic and kept transport-agnostic so sinks can fan out.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event records one decision made about a request.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

// Sink accepts audit events, append-only.
type Sink interface {
	Append(ctx context.Context, e Event) error
}

// Store is a sink whose trail can be read back.
type Store interface {
	Sink
	ListByAction(ctx context.Context, action string) ([]Event, error)
}

// Publisher captures structured audit events. It writes to a sink so tests
// and deployments can swap persistence.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Emit appends the event, filling the ID and timestamp when unset.
func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now().UTC()
	}
	return p.sink.Append(ctx, base)
}
