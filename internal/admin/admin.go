// Package admin is the clerk surface: login plus read-only views over
// stored submissions and election records.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"curia/internal/audit"
	"curia/internal/platform/middleware"
	"curia/internal/submission/models"
	domainerrors "curia/pkg/domain-errors"
	"curia/pkg/platform/httputil"
)

// tokenTTL is how long a clerk session token stays valid.
const tokenTTL = time.Hour

// SubmissionLister exposes the stored form submissions.
type SubmissionLister interface {
	List(ctx context.Context) ([]models.Message, error)
}

// ElectionRecords exposes per-window vote-record counts. Counts only:
// ballots are never served next to identities.
type ElectionRecords interface {
	ReceiptCounts(ctx context.Context) (map[string]int, error)
}

// TokenIssuer signs clerk session tokens.
type TokenIssuer interface {
	GenerateAccessToken(subject string, expiresIn time.Duration) (string, error)
}

// Handler serves the /admin routes.
type Handler struct {
	secretHash  string
	tokens      TokenIssuer
	submissions SubmissionLister
	elections   ElectionRecords
	logger      *slog.Logger
	audit       *audit.Publisher
}

type Option func(*Handler)

func WithAuditPublisher(pub *audit.Publisher) Option {
	return func(h *Handler) { h.audit = pub }
}

// New constructs the admin handler. secretHash is the bcrypt hash of the
// shared clerk secret.
func New(secretHash string, tokens TokenIssuer, submissions SubmissionLister, elections ElectionRecords, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		secretHash:  secretHash,
		tokens:      tokens,
		submissions: submissions,
		elections:   elections,
		logger:      logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Register mounts the admin routes; everything but login sits behind the
// bearer-token guard.
func (h *Handler) Register(r chi.Router, validator middleware.TokenValidator) {
	r.Post("/admin/login", h.HandleLogin)
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(validator, h.logger))
		pr.Get("/admin/submissions", h.HandleSubmissions)
		pr.Get("/admin/elections/records", h.HandleElectionRecords)
	})
}

type loginRequest struct {
	Clerk  string `json:"clerk"`
	Secret string `json:"secret"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// HandleLogin exchanges the shared clerk secret for a session token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "malformed login request"))
		return
	}
	if req.Clerk == "" || req.Secret == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "clerk and secret are required"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.secretHash), []byte(req.Secret)); err != nil {
		h.logger.WarnContext(ctx, "admin login rejected",
			"clerk", req.Clerk,
			"request_id", middleware.GetRequestID(ctx),
		)
		h.emit(ctx, req.Clerk, "denied")
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "invalid credentials"))
		return
	}

	token, err := h.tokens.GenerateAccessToken(req.Clerk, tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed", "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "login failed", err))
		return
	}

	h.emit(ctx, req.Clerk, "accepted")
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenTTL.Seconds()),
	})
}

type submissionSummary struct {
	ID            string    `json:"id"`
	SubmitterName string    `json:"name"`
	Form          string    `json:"form"`
	TimeUTC       time.Time `json:"time-UTC"`
	Page          string    `json:"page"`
	Address       string    `json:"address"`
	Browser       string    `json:"browser"`
	OS            string    `json:"os"`
}

// HandleSubmissions lists stored submissions with the recorded client
// parsed into something a clerk can read.
func (h *Handler) HandleSubmissions(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.submissions.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list submissions failed", "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "submissions unavailable", err))
		return
	}

	out := make([]submissionSummary, 0, len(msgs))
	for _, msg := range msgs {
		ua := useragent.New(msg.Submitter.Client)
		browser, version := ua.Browser()
		out = append(out, submissionSummary{
			ID:            msg.ID,
			SubmitterName: msg.SubmitterName,
			Form:          msg.Form,
			TimeUTC:       msg.TimeUTC,
			Page:          msg.Page,
			Address:       msg.Submitter.Address,
			Browser:       browser + " " + version,
			OS:            ua.OS(),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

// HandleElectionRecords reports how many vote records each window holds.
func (h *Handler) HandleElectionRecords(w http.ResponseWriter, r *http.Request) {
	counts, err := h.elections.ReceiptCounts(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "election records failed", "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "election records unavailable", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"windows": counts})
}

func (h *Handler) emit(ctx context.Context, clerk, decision string) {
	if h.audit == nil {
		return
	}
	err := h.audit.Emit(ctx, audit.Event{
		Subject:  clerk,
		Action:   "admin.login",
		Decision: decision,
		Actor:    middleware.GetClientIP(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
