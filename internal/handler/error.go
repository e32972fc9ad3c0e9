// Package handler holds the JSON plumbing shared by the API handlers:
// error mapping, response writing and request decoding.
package handler

import (
	"net/http"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/middleware"
	"github.com/techtrend/emporium/internal/telemetry"
)

// ErrorResponse writes err as {"error": {...}} with the status its code
// maps to. Server-side failures are logged at error level and sent to
// Sentry; client errors only at debug.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := report(r, err)
	middleware.WriteError(w, status, detail)
}

// CountErrorResponse is ErrorResponse for batch operations: the body also
// carries how many rows were written before err.
func CountErrorResponse(w http.ResponseWriter, r *http.Request, count int, err error) {
	status, detail := report(r, err)
	WriteJSON(w, status, struct {
		Count int                    `json:"count"`
		Error middleware.ErrorDetail `json:"error"`
	}{count, detail})
}

func report(r *http.Request, err error) (int, middleware.ErrorDetail) {
	code := domain.ErrorCode(err)
	status := middleware.StatusForCode(code)
	op := domain.ErrorOp(err)

	logger := middleware.GetLogger(r.Context()).With("op", op, "code", code, "error", err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed")
		telemetry.CaptureErrorFromContext(r.Context(), err, map[string]interface{}{"path": r.URL.Path})
	} else {
		logger.Debug("request rejected")
	}

	return status, middleware.ErrorDetail{
		Code:    code,
		Message: domain.ErrorMessage(err),
		Fields:  domain.GetValidationFields(err),
	}
}

// NotFoundResponse is the catch-all for unknown routes.
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.Errorf(domain.ENOTFOUND, "", "The requested resource was not found"))
}
