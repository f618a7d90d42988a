package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/EzraBr1dger/space-map-admin/internal/middleware"
	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

const maxBodyBytes = 10 << 20

func statusFor(code string) int {
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeInsufficientFunds, errors.ErrCodeInsufficientCapacity:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeAlreadyExists, errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}

// writeError maps an AppError to its HTTP status. Anything unexpected is
// logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.CodeOf(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			"request_id", middleware.RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSONError(w, status, code, errors.MessageOf(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrCodeValidation, "request body is required")
		}
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid JSON body")
	}
	return nil
}

// pathParam returns the decoded URL parameter; names like "Food Rations"
// arrive escaped.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// actor is the authenticated caller. Routes behind Authenticate always have one.
func actor(r *http.Request) models.Principal {
	p, _ := middleware.PrincipalFrom(r.Context())
	return p
}

type messageResponse struct {
	Message string `json:"message"`
}
