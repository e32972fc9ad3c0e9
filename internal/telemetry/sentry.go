package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/techtrend/emporium/internal/domain"
)

const flushTimeout = 2 * time.Second

// SentryConfig configures error reporting. Reporting is off unless
// Enabled is set and DSN is non-empty.
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64 // 0 means 1.0
	TracesSampleRate float64
	Debug            bool
}

var sentryOn atomic.Bool

// InitSentry starts the Sentry client and returns a flush func for
// shutdown. With reporting off every helper in this file is a no-op.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	sentryOn.Store(false)
	noop := func() {}

	switch {
	case !cfg.Enabled:
		logger.Info("sentry disabled")
		return noop, nil
	case cfg.DSN == "":
		logger.Warn("sentry enabled without a DSN, error reporting is off")
		return noop, nil
	}

	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       cfg.SampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	sentryOn.Store(true)

	logger.Info("sentry initialized",
		"environment", cfg.Environment,
		"release", cfg.Release,
		"sample_rate", cfg.SampleRate,
	)
	return func() { sentry.Flush(flushTimeout) }, nil
}

// scrubEvent strips credentials and drops client-caused errors that slip
// through to CaptureException.
func scrubEvent(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint != nil && !reportable(hint.OriginalException) {
		return nil
	}
	if event.Request != nil {
		delete(event.Request.Headers, "Authorization")
		delete(event.Request.Headers, "Cookie")
	}
	return event
}

// reportable is true for errors that point at a server fault. A bearer
// token that failed to verify or an out-of-stock cart is not one.
func reportable(err error) bool {
	if err == nil {
		return true
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		return !domain.IsValidationError(err)
	}
	return de.Code == domain.EINTERNAL || de.Code == domain.EUNAVAILABLE
}

func hubFor(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub().Clone()
}

// CaptureErrorFromContext reports err on the request's hub, tagged with
// its domain code and operation.
func CaptureErrorFromContext(ctx context.Context, err error, extras map[string]interface{}) {
	if !sentryOn.Load() || err == nil || !reportable(err) {
		return
	}

	hub := hubFor(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error.code", domain.ErrorCode(err))
		if op := domain.ErrorOp(err); op != "" {
			scope.SetTag("error.op", op)
		}
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		hub.CaptureException(err)
	})
}

// SentryMiddleware gives each request its own hub carrying the request
// and its id. Panics are reported then re-raised for router.Recovery.
func SentryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sentryOn.Load() {
				next.ServeHTTP(w, r)
				return
			}

			hub := hubFor(r.Context())
			hub.Scope().SetRequest(r)
			if id := domain.RequestIDFromContext(r.Context()); id != "" {
				hub.Scope().SetTag("request_id", id)
			}
			ctx := sentry.SetHubOnContext(r.Context(), hub)

			defer func() {
				if rec := recover(); rec != nil {
					hub.RecoverWithContext(ctx, rec)
					hub.Flush(flushTimeout)
					panic(rec)
				}
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserInfo identifies the caller on Sentry events.
type UserInfo struct {
	ID       string
	Email    string
	Username string
}

// UserContextExtractor pulls the caller out of a request context.
type UserContextExtractor func(ctx context.Context) *UserInfo

// SentryUserMiddleware tags the request hub with the authenticated
// caller. It must run after authentication and SentryMiddleware.
func SentryUserMiddleware(extract UserContextExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sentryOn.Load() && extract != nil {
				if user := extract(r.Context()); user != nil {
					hub := hubFor(r.Context())
					hub.Scope().SetUser(sentry.User{ID: user.ID, Email: user.Email, Username: user.Username})
					r = r.WithContext(sentry.SetHubOnContext(r.Context(), hub))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HTTPTransport records an http.client span for each outbound request,
// used for calls to the FakeStore API.
type HTTPTransport struct {
	Transport http.RoundTripper
}

func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if !sentryOn.Load() {
		return base.RoundTrip(req)
	}

	span := sentry.StartSpan(req.Context(), "http.client")
	span.Description = req.Method + " " + req.URL.Host + req.URL.Path
	defer span.Finish()

	resp, err := base.RoundTrip(req)
	switch {
	case err != nil:
		span.Status = sentry.SpanStatusInternalError
	case resp.StatusCode >= http.StatusInternalServerError:
		span.Status = sentry.SpanStatusUnavailable
		span.SetData("http.status_code", resp.StatusCode)
	default:
		span.SetData("http.status_code", resp.StatusCode)
	}
	return resp, err
}
