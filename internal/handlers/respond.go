package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/metrics"
	"github.com/seguimed/notas/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: NotFound 404,
// Conflict 409, Validation 400, anything else (store failures included) 500.
func writeError(w http.ResponseWriter, err error) int {
	var validationErr *app.ValidationError

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return http.StatusConflict
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return http.StatusBadRequest
	default:
		logger.Error.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "something went wrong, please retry",
		})
		return http.StatusInternalServerError
	}
}

func requireHeaders(s *app.Service, w http.ResponseWriter, r *http.Request) bool {
	if !s.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return false
	}
	return true
}

func requireAdmin(s *app.Service, w http.ResponseWriter, r *http.Request) bool {
	if !requireHeaders(s, w, r) {
		return false
	}
	if err := s.RequireAdmin(r); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// statusRecorder captures the status code a handler writes so the duration
// histogram can label it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WithMetrics times every request into the API duration histogram. Routes are
// labeled by their matched mux pattern rather than the raw URL, so path
// parameters do not blow up label cardinality.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if _, rest, found := strings.Cut(path, " "); found {
			path = rest
		}
		if path == "" {
			path = r.URL.Path
		}

		metrics.APIRequestDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	})
}
