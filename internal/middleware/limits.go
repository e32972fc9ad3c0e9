package middleware

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"sync"
	"time"
)

const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize covers every JSON body the API accepts.
	DefaultMaxBodySize = 1 * MB
	// SmallMaxBodySize is for register and login.
	SmallMaxBodySize = 64 * KB
)

const (
	DefaultTimeout = 30 * time.Second
	// LongTimeout is for FakeStore sync, which makes one upstream call
	// per category.
	LongTimeout = 2 * time.Minute
)

// MaxBodySize rejects a declared Content-Length over limit with 413 and
// caps the body reader for chunked uploads. Handlers see the cap as a
// read error, which handler.DecodeJSON reports as ETOOLARGE.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				respondTooLarge(w, r)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout cancels the request context after d. If the handler has not
// started its response by then the client gets a 503; a response already
// under way is cut short.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &timeoutWriter{w: w, header: w.Header().Clone()}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.expired = true
				if !tw.started && errors.Is(ctx.Err(), context.DeadlineExceeded) {
					respondTimeout(w, r)
				}
			}
		})
	}
}

// timeoutWriter gives the handler goroutine its own header map so a late
// handler never touches the headers of the timeout response.
type timeoutWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu      sync.Mutex
	started bool
	expired bool
}

func (tw *timeoutWriter) Header() http.Header { return tw.header }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.begin(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if !tw.begin(http.StatusOK) {
		return 0, http.ErrHandlerTimeout
	}
	return tw.w.Write(b)
}

// begin sends the status line once. It reports false after expiry.
// Callers hold mu.
func (tw *timeoutWriter) begin(code int) bool {
	if tw.expired {
		return false
	}
	if !tw.started {
		tw.started = true
		maps.Copy(tw.w.Header(), tw.header)
		tw.w.WriteHeader(code)
	}
	return true
}
