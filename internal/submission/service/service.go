// Package service stores form submissions and generates their certificate
// documents.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"curia/internal/audit"
	"curia/internal/platform/metrics"
	"curia/internal/platform/middleware"
	"curia/internal/submission/models"
)

// Store persists submission messages.
type Store interface {
	Append(ctx context.Context, msg models.Message) error
	List(ctx context.Context) ([]models.Message, error)
}

// DocumentGenerator renders the localized certificate for a form.
type DocumentGenerator interface {
	Generate(docID, lang string, values map[string]string) (string, error)
}

// Request is one form submission on its way into the store.
type Request struct {
	Form          string // stored form name, e.g. "Citizenship-Form"
	Kind          string // short form type for metrics, e.g. "citizen"
	SubmitterName string
	Values        map[string]string
	DocumentID    string // empty when the form has no certificate document
	Lang          string
	File          string // declared upload filename, reference only
	Page          string
}

type Service struct {
	store   Store
	docs    DocumentGenerator
	logger  *slog.Logger
	audit   *audit.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
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

// WithClock sets the time source for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store Store, docs DocumentGenerator, opts ...Option) *Service {
	s := &Service{
		store:  store,
		docs:   docs,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit builds the durable message and appends it to the store. A failed
// document generation degrades to an empty document; a failed append is the
// only hard error.
func (s *Service) Submit(ctx context.Context, req Request) error {
	msg := models.Message{
		ID:            uuid.NewString(),
		SubmitterName: req.SubmitterName,
		Form:          req.Form,
		Values:        req.Values,
		File:          req.File,
		Submitter: models.Submitter{
			Address: middleware.GetClientIP(ctx),
			Client:  middleware.GetUserAgent(ctx),
		},
		TimeUTC: s.now().UTC(),
		Page:    req.Page,
	}

	if req.DocumentID != "" && s.docs != nil {
		doc, err := s.docs.Generate(req.DocumentID, req.Lang, req.Values)
		if err != nil {
			s.logger.WarnContext(ctx, "document generation failed",
				"document", req.DocumentID,
				"lang", req.Lang,
				"error", err,
			)
		}
		msg.Document = doc
	}

	if err := s.store.Append(ctx, msg); err != nil {
		if s.metrics != nil {
			s.metrics.SubmissionsFailed.Inc()
		}
		return fmt.Errorf("store submission: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncSubmissionStored(req.Kind)
	}
	s.emit(ctx, req)
	s.logger.InfoContext(ctx, "submission stored", "form", req.Form, "id", msg.ID)
	return nil
}

// List returns every stored submission, oldest first.
func (s *Service) List(ctx context.Context) ([]models.Message, error) {
	return s.store.List(ctx)
}

func (s *Service) emit(ctx context.Context, req Request) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Subject:  req.Form,
		Action:   "form.submit",
		Decision: "accepted",
		Actor:    middleware.GetClientIP(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
