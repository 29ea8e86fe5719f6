// Package election exposes the voting workflow: window policy, ledgers and
// the HTTP endpoints over them.
package election

import (
	"log/slog"

	"curia/internal/election/handler"
	"curia/internal/election/service"
	"curia/internal/election/window"
)

// Service runs the voting workflow over the two ledgers.
type Service = service.Service

// Handler wires the public voting endpoints to the service.
type Handler = handler.Handler

// BallotClaim is one vote submission.
type BallotClaim = service.BallotClaim

// NewService constructs the voting workflow over a ledger store.
func NewService(store service.Store, policy *window.Policy, opts ...service.Option) *Service {
	return service.New(store, policy, opts...)
}

// NewHandler constructs the HTTP handler for the voting endpoints.
func NewHandler(s *Service, logger *slog.Logger, candidatesPath, defaultLang string) *Handler {
	return handler.New(s, logger, candidatesPath, defaultLang)
}
