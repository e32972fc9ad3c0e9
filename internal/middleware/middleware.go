// Package middleware holds the HTTP middleware of the API: request ids,
// client IPs, authentication and role policies, body and time limits,
// rate limiting, security headers and Prometheus metrics.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/techtrend/emporium/internal/domain"
)

type contextKey string

var statusByCode = map[string]int{
	domain.EINVALID:      http.StatusBadRequest,
	domain.EUNAUTHORIZED: http.StatusUnauthorized,
	domain.EFORBIDDEN:    http.StatusForbidden,
	domain.ENOTFOUND:     http.StatusNotFound,
	domain.ECONFLICT:     http.StatusConflict,
	domain.ETOOLARGE:     http.StatusRequestEntityTooLarge,
	domain.ERATELIMIT:    http.StatusTooManyRequests,
	domain.EUNAVAILABLE:  http.StatusBadGateway,
}

// StatusForCode maps a domain error code to an HTTP status. Unknown codes
// and EINTERNAL are 500.
func StatusForCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorDetail is the "error" object of a failed response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteError writes {"error": detail} with status.
func WriteError(w http.ResponseWriter, status int, detail ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(struct {
		Error ErrorDetail `json:"error"`
	}{detail}); err != nil {
		slog.Default().Error("failed to encode error response", "error", err)
	}
}

// reject answers a request that middleware refused before it reached a
// handler. Refusals are routine, so they log at info.
func reject(w http.ResponseWriter, r *http.Request, code, message string) {
	status := StatusForCode(code)
	GetLogger(r.Context()).Info("request refused",
		"code", code,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", GetRequestID(r.Context()),
	)
	WriteError(w, status, ErrorDetail{Code: code, Message: message})
}

func respondUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	reject(w, r, domain.EUNAUTHORIZED, message)
}

func respondForbidden(w http.ResponseWriter, r *http.Request) {
	reject(w, r, domain.EFORBIDDEN, "You don't have permission to access this resource")
}

func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	reject(w, r, domain.ERATELIMIT, "Too many requests")
}

func respondTooLarge(w http.ResponseWriter, r *http.Request) {
	reject(w, r, domain.ETOOLARGE, "Request body too large")
}

// respondTimeout uses 503 rather than the 502 EUNAVAILABLE maps to: the
// API itself ran out of time.
func respondTimeout(w http.ResponseWriter, r *http.Request) {
	GetLogger(r.Context()).Warn("request timed out", "method", r.Method, "path", r.URL.Path)
	WriteError(w, http.StatusServiceUnavailable, ErrorDetail{Code: domain.EUNAVAILABLE, Message: "Request timeout"})
}
