package router

import (
	"net/http"
	"slices"
)

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router registers method-scoped routes on a shared http.ServeMux.
//
// Middleware given to New wraps the mux itself, so it runs for every
// request including ones that match no route. Middleware attached with
// Group or per route only wraps the handlers registered through it.
type Router struct {
	mux    *http.ServeMux
	served http.Handler
	scoped []Middleware
}

// New returns a router whose global middleware runs in the order given.
func New(global ...Middleware) *Router {
	mux := http.NewServeMux()
	return &Router{mux: mux, served: Chain(mux, global...)}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.served.ServeHTTP(w, req)
}

// Chain applies mw around h so that mw[0] sees the request first.
// Nil entries are skipped.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			h = mw[i](h)
		}
	}
	return h
}

func (r *Router) Get(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, mw...)
}

func (r *Router) Post(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, mw...)
}

func (r *Router) Put(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPut, pattern, h, mw...)
}

func (r *Router) Delete(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodDelete, pattern, h, mw...)
}

// Handle registers h for "METHOD pattern". Group middleware runs before
// the per-route middleware.
func (r *Router) Handle(method, pattern string, h http.Handler, mw ...Middleware) {
	stack := append(slices.Clone(r.scoped), mw...)
	r.mux.Handle(method+" "+pattern, Chain(h, stack...))
}

// Group returns a router sharing the same mux whose routes additionally
// run mw. Groups nest.
func (r *Router) Group(mw ...Middleware) *Router {
	return &Router{
		mux:    r.mux,
		served: r.served,
		scoped: append(slices.Clone(r.scoped), mw...),
	}
}

// NotFound answers requests that no registered route matches.
func (r *Router) NotFound(h http.HandlerFunc) {
	r.mux.Handle("/", Chain(h, r.scoped...))
}
