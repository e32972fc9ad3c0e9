package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/telemetry"
)

// TokenVerifier turns a bearer token into the principal it was issued to.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}

// Authenticate reads an optional "Authorization: Bearer <token>" header
// and stores the verified principal in the request context. Requests
// without the header continue anonymously; a header that is present but
// malformed or fails verification is rejected with 401.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respondUnauthorized(w, r, "Invalid token format, must be 'Bearer <token>'")
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				GetLogger(r.Context()).Debug("token rejected", "error", err)
				respondUnauthorized(w, r, "Invalid or expired token")
				return
			}

			ctx := domain.NewContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !domain.IsAuthenticated(r.Context()) {
			respondUnauthorized(w, r, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePolicy rejects anonymous requests with 401 and callers holding
// none of the policy's roles with 403.
func RequirePolicy(policy domain.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := domain.PrincipalFromContext(r.Context())
			if p == nil {
				respondUnauthorized(w, r, "Authentication required")
				return
			}
			if !p.Satisfies(policy) {
				GetLogger(r.Context()).Info("policy denied",
					"policy", policy.Name,
					"user_id", p.UserID.String(),
				)
				respondForbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SentryUser reports the authenticated caller to Sentry.
// Pass it to telemetry.SentryUserMiddleware.
func SentryUser(ctx context.Context) *telemetry.UserInfo {
	p := domain.PrincipalFromContext(ctx)
	if p == nil {
		return nil
	}
	return &telemetry.UserInfo{
		ID:       p.UserID.String(),
		Email:    p.Email,
		Username: p.Username,
	}
}
