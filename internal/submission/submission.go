// Package submission exposes form-submission intake: storage, certificate
// generation and the HTTP endpoints over them.
package submission

import (
	"log/slog"

	"curia/internal/submission/handler"
	"curia/internal/submission/service"
)

// Service stores submissions and generates their documents.
type Service = service.Service

// Handler wires the public form endpoints to the service.
type Handler = handler.Handler

// NewService constructs the submission service.
func NewService(store service.Store, docs service.DocumentGenerator, opts ...service.Option) *Service {
	return service.New(store, docs, opts...)
}

// NewHandler constructs the HTTP handler for the form endpoints.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
