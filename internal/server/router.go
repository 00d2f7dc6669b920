package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"

	"github.com/go-chi/chi"
)

type httpMiddleware func(http.HandlerFunc) http.HandlerFunc

type router struct {
	mux        *chi.Mux
	middleware []httpMiddleware
}

func newRouter(middleware ...httpMiddleware) *router {
	return &router{mux: chi.NewRouter(), middleware: middleware}
}

// register mounts handler under a "METHOD /path" pattern, wrapping it with the
// router-wide middleware followed by the route specific one.
func (r *router) register(pattern string, handler http.HandlerFunc, middleware ...httpMiddleware) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		panic("route pattern must be 'METHOD /path': " + pattern)
	}

	h := handler

	allMiddleware := append(append([]httpMiddleware{}, r.middleware...), middleware...)

	for i := len(allMiddleware) - 1; i >= 0; i-- {
		h = allMiddleware[i](h)
	}

	r.mux.Method(method, path, h)
}

func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func handleHealth(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			core.WriteResponse(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}

		core.WriteOK(w, r, map[string]string{"status": "ok"})
	}
}
