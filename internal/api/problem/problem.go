// Package problem writes RFC 7807 application/problem+json error responses.
// The HTTP layer maps every domain error to exactly one of the kinds below;
// server faults never leak their detail outside development and test.
package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const (
	TypeValidation   = "https://eventmanager.dev/problems/validation-error"
	TypeUnauthorized = "https://eventmanager.dev/problems/unauthorized"
	TypeNotFound     = "https://eventmanager.dev/problems/not-found"
	TypeServerError  = "https://eventmanager.dev/problems/server-error"
)

type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string) {
	details := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	if err != nil {
		if status < http.StatusInternalServerError || env == "development" || env == "test" {
			details.Detail = err.Error()
		} else {
			details.Detail = http.StatusText(status)
		}
	}

	if r != nil {
		details.Instance = r.URL.Path

		logger := zerolog.Ctx(r.Context())
		switch {
		case err != nil && status >= 500:
			logger.Error().Err(err).Int("status", status).Str("path", r.URL.Path).Str("method", r.Method).Msg(title)
		case err != nil && status >= 400:
			logger.Warn().Err(err).Int("status", status).Str("path", r.URL.Path).Str("method", r.Method).Msg(title)
		}
	}

	writeDetails(w, details)
}

// Validation writes a 400 for a rejected request parameter or body.
func Validation(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env)
}

// Unauthorized writes a 401 with a constant-shape title so callers cannot
// tell which credential check failed.
func Unauthorized(w http.ResponseWriter, r *http.Request, title string, env string) {
	Write(w, r, http.StatusUnauthorized, TypeUnauthorized, title, nil, env)
}

// NotFound writes a 404 for an unknown resource.
func NotFound(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusNotFound, TypeNotFound, "Not found", err, env)
}

// ServerError writes a 500; the wrapped error is logged server-side and its
// detail replaced by a generic message outside development/test.
func ServerError(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusInternalServerError, TypeServerError, "Server error", err, env)
}

func writeDetails(w http.ResponseWriter, details ProblemDetails) {
	payload, err := json.Marshal(details)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(details.Status)
	_, _ = w.Write(payload)
}
