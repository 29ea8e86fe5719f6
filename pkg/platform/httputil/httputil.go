// Package httputil holds shared response helpers for HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	domainerrors "curia/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteHTML writes an HTML response with the given status.
func WriteHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteError maps a domain error to its HTTP status and writes a JSON error
// body. Internal errors omit the description so nothing about the failure
// leaks to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := domainerrors.ToHTTPStatus(err)

	body := map[string]string{"error": errorCode(err)}
	var de *domainerrors.Error
	if errors.As(err, &de) && status < http.StatusInternalServerError {
		body["error_description"] = de.Message
	}
	WriteJSON(w, status, body)
}

func errorCode(err error) string {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return string(de.Code)
	}
	return string(domainerrors.CodeInternal)
}
