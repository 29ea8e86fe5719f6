// Package handler wires the public form-submission endpoints to the
// submission service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"curia/internal/platform/middleware"
	"curia/internal/submission/service"
	domainerrors "curia/pkg/domain-errors"
	"curia/pkg/platform/httputil"
)

// maxUploadMemory bounds multipart parsing; only the filename is recorded.
const maxUploadMemory = 1 << 20

// Service is what the handler needs from the submission workflow.
type Service interface {
	Submit(ctx context.Context, req service.Request) error
}

// Handler serves the portal's form POST endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the form endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reg/citizen", h.handleCitizen)
	r.Post("/reg/resident", h.handleResident)
	r.Post("/reg/visa", h.handleVisa)
	r.Post("/reg/company", h.handleCompany)
	r.Post("/ministries/mbb/plot", h.handlePlot)
	r.Post("/ministries/mbb/permit", h.handlePlot)
	r.Post("/ministries/mfb/enroll-class", h.handleEnroll)
	r.Post("/ministries/mfb/enroll-exam", h.handleEnroll)
	r.Post("/ministries/{ministry}/reg", h.handleMinistryJob)
	r.Post("/ministries/{ministry}/register", h.handleMinistryJob)
	r.Post("/embassies/reg", h.handleRegistration)
	r.Post("/elections/reg", h.handleRegistration)
}

func (h *Handler) handleCitizen(w http.ResponseWriter, r *http.Request) {
	h.submitCertified(w, r, "Citizenship-Form", "citizen", "citizen-certificate")
}

func (h *Handler) handleResident(w http.ResponseWriter, r *http.Request) {
	h.submitCertified(w, r, "Residentship-Form", "resident", "resident-certificate")
}

// submitCertified covers the citizen and resident forms: the submitter name
// comes from "name-mod" and the document language from "lang".
func (h *Handler) submitCertified(w http.ResponseWriter, r *http.Request, form, kind, docID string) {
	values, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	h.submit(w, r, service.Request{
		Form:          form,
		Kind:          kind,
		SubmitterName: values["name-mod"],
		Values:        values,
		DocumentID:    docID,
		Lang:          values["lang"],
		Page:          page(r),
	})
}

func (h *Handler) handleVisa(w http.ResponseWriter, r *http.Request) {
	values, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	h.submit(w, r, service.Request{
		Form:          "Visa-Form",
		Kind:          "visa",
		SubmitterName: romanizedName(values),
		Values:        values,
		DocumentID:    "visa",
		Lang:          values["lang-pref"],
		Page:          page(r),
	})
}

func (h *Handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	values, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	h.submit(w, r, service.Request{
		Form:          "Company-Form",
		Kind:          "company",
		SubmitterName: romanizedName(values),
		Values:        values,
		DocumentID:    "company-registration",
		Lang:          values["lang"],
		Page:          page(r),
	})
}

// handlePlot serves both the land-plot purchase and the building-permit
// forms. A non-default issue means a foreign state is the purchaser, which
// changes where the name and signatory come from.
func (h *Handler) handlePlot(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	issue := raw["issue"]
	values := map[string]string{
		"issue":   issue,
		"name":    raw["name"],
		"signing": raw["name"],
		"id":      raw["id"],
		"address": raw["address"],
	}
	if issue != "default" {
		values["name"] = raw["country"]
		values["signing"] = raw["name-leader"]
		values["id"] = ""
	}

	form, kind, docID := "Plot-Form", "plot", "plot-purchase"
	if r.URL.Path == "/ministries/mbb/permit" {
		form, kind, docID = "Buildingpermit-Form", "building-permit", "building-permit"
	}
	h.submit(w, r, service.Request{
		Form:          form,
		Kind:          kind,
		SubmitterName: values["signing"],
		Values:        values,
		DocumentID:    docID,
		Lang:          "en",
		Page:          page(r),
	})
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	values, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	form, kind := "Class-Application", "enroll-class"
	if r.URL.Path == "/ministries/mfb/enroll-exam" {
		form, kind = "Exam-Application", "enroll-exam"
	}
	h.submit(w, r, service.Request{
		Form:          form,
		Kind:          kind,
		SubmitterName: values["name"],
		Values:        values,
		Page:          page(r),
	})
}

func (h *Handler) handleRegistration(w http.ResponseWriter, r *http.Request) {
	values, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	form, kind := "Embassy-Registration", "embassy"
	if r.URL.Path == "/elections/reg" {
		form, kind = "Election-Registration", "election-reg"
	}
	h.submit(w, r, service.Request{
		Form:          form,
		Kind:          kind,
		SubmitterName: values["name"],
		Values:        values,
		Page:          page(r),
	})
}

// handleMinistryJob takes the multipart job application. The upload itself
// is not stored; only the declared filename goes into the record.
func (h *Handler) handleMinistryJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "malformed multipart form"))
		return
	}

	values := map[string]string{
		"name":        r.FormValue("name"),
		"id":          r.FormValue("id"),
		"ministry":    chi.URLParam(r, "ministry"),
		"position":    r.FormValue("position"),
		"description": r.FormValue("description"),
	}
	h.submit(w, r, service.Request{
		Form:          "Ministryjob-Application",
		Kind:          "ministry-job",
		SubmitterName: values["name"],
		Values:        values,
		File:          uploadName(r),
		Page:          page(r),
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, req service.Request) {
	if err := h.service.Submit(r.Context(), req); err != nil {
		h.logger.ErrorContext(r.Context(), "submission failed",
			"form", req.Form,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "submission failed", err))
		return
	}
	httputil.WriteHTML(w, http.StatusOK,
		"<html><body><h1>Thank you</h1><p>Your submission has been received.</p></body></html>")
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "malformed form"))
		return nil, false
	}
	values := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		values[key] = r.PostForm.Get(key)
	}
	return values, true
}

// romanizedName prefers the romanized spelling when the form carries one.
func romanizedName(values map[string]string) string {
	if rom := values["name-rom"]; rom != "" {
		return rom
	}
	return values["name"]
}

func uploadName(r *http.Request) string {
	if r.MultipartForm == nil {
		return ""
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return ""
	}
	return files[0].Filename
}

func page(r *http.Request) string {
	return r.Host + r.URL.Path
}
