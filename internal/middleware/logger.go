package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/techtrend/emporium/internal/domain"
)

const loggerKey contextKey = "logger"

// WithRequestLogger stores a logger in the context carrying the request
// id, client IP and, for authenticated callers, user id and username.
// It must run after RequestID, WithClientIP and Authenticate.
func WithRequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			}
			if id := GetRequestID(ctx); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if ip := GetClientIPFromContext(ctx); ip != "" {
				attrs = append(attrs, slog.String("client_ip", ip))
			}
			if p := domain.PrincipalFromContext(ctx); p != nil {
				attrs = append(attrs,
					slog.String("user_id", p.UserID.String()),
					slog.String("username", p.Username),
				)
			}

			ctx = context.WithValue(ctx, loggerKey, base.With(attrs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger returns the request logger, else the first non-nil fallback,
// else slog.Default().
func GetLogger(ctx context.Context, fallback ...*slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	for _, l := range fallback {
		if l != nil {
			return l
		}
	}
	return slog.Default()
}
