// Package handler wires the public voting endpoints to the election service.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"curia/internal/calendar"
	"curia/internal/election/service"
	"curia/internal/election/window"
	"curia/internal/platform/middleware"
	domainerrors "curia/pkg/domain-errors"
	"curia/pkg/platform/httputil"
)

// Service is what the handler needs from the voting workflow.
type Service interface {
	SubmitVote(ctx context.Context, claim service.BallotClaim) error
	CurrentWindow() (window.Window, bool)
}

// Handler serves the ballot page and vote submissions.
type Handler struct {
	service        Service
	logger         *slog.Logger
	candidatesPath string
	defaultLang    string
}

func New(svc Service, logger *slog.Logger, candidatesPath, defaultLang string) *Handler {
	return &Handler{
		service:        svc,
		logger:         logger,
		candidatesPath: candidatesPath,
		defaultLang:    defaultLang,
	}
}

// Register mounts the voting endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/elections/vote", h.HandleBallotPage)
	r.Post("/elections/vote", h.HandleSubmitVote)
}

// HandleBallotPage serves the candidate lists while the window is open and a
// closed notice naming the next voting date otherwise.
func (h *Handler) HandleBallotPage(w http.ResponseWriter, r *http.Request) {
	win, open := h.service.CurrentWindow()
	if !open {
		lang := h.requestLang(r)
		date := calendar.Format(win.Start, lang)
		httputil.WriteHTML(w, http.StatusOK,
			"<html><body><h1>Voting is closed</h1><p>The next voting period begins on "+date+".</p></body></html>")
		return
	}

	data, err := os.ReadFile(h.candidatesPath)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "read candidates file",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "candidates unavailable", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleSubmitVote handles POST /elections/vote form submissions.
func (h *Handler) HandleSubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "malformed form"))
		return
	}

	claim := service.BallotClaim{
		ID:           strings.TrimSpace(r.PostForm.Get("id")),
		BallotNumber: strings.TrimSpace(r.PostForm.Get("num")),
		Magistrates:  r.PostForm["magistrate"],
		Senators:     r.PostForm["senator"],
	}
	if claim.ID == "" || claim.BallotNumber == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "voter id and ballot number are required"))
		return
	}

	err := h.service.SubmitVote(ctx, claim)
	switch {
	case err == nil:
		httputil.WriteHTML(w, http.StatusOK,
			"<html><body><h1>Thank you</h1><p>Your vote has been counted.</p></body></html>")
	case errors.Is(err, service.ErrWindowClosed):
		http.Redirect(w, r, "/elections/vote", http.StatusFound)
	case domainerrors.HasCode(err, domainerrors.CodeForbidden):
		// One page for every refusal, whatever the cause.
		httputil.WriteHTML(w, http.StatusForbidden,
			"<html><body><h1>Vote not accepted</h1><p>Your submission could not be accepted.</p></body></html>")
	default:
		h.logger.ErrorContext(ctx, "vote submission failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "vote submission failed", err))
	}
}

func (h *Handler) requestLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tag := accept
		if idx := strings.IndexAny(tag, ",;"); idx != -1 {
			tag = tag[:idx]
		}
		// The formatter keys on primary subtags, so "de-DE" counts as "de".
		if idx := strings.Index(tag, "-"); idx != -1 {
			tag = tag[:idx]
		}
		if tag = strings.TrimSpace(tag); tag != "" {
			return tag
		}
	}
	return h.defaultLang
}
