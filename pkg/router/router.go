// Package router wraps chi with named routes and middleware groups.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// Route describes one registered endpoint.
type Route struct {
	Method string
	Path   string
	Name   string
}

type Router struct {
	mux    chi.Router
	routes map[string]string
	table  []Route
	mu     sync.RWMutex
}

type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func New() *Router {
	return &Router{
		mux:    chi.NewRouter(),
		routes: make(map[string]string),
	}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

// Use adds middlewares to every route. Must be called before any route
// is registered.
func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

func (r *Router) NotFound(h http.HandlerFunc)         { r.mux.NotFound(h) }
func (r *Router) MethodNotAllowed(h http.HandlerFunc) { r.mux.MethodNotAllowed(h) }

func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      normalizePath(prefix),
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

func (r *Router) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodGet, path, name, handler, middlewares...)
}

func (r *Router) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodPost, path, name, handler, middlewares...)
}

// Handle mounts an http.Handler for every method on path.
func (r *Router) Handle(path, name string, handler http.Handler) {
	full := normalizePath(path)
	r.mux.Handle(full, handler)
	r.record("*", full, name)
}

func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok := r.routes[name]
	return path, ok
}

func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}

	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}

	if strings.Contains(path, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}

	return path, nil
}

// Routes returns every registered route sorted by path, then method.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]Route(nil), r.table...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) mount(method, path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	fullPath := normalizePath(path)
	r.mux.Method(method, fullPath, chain(handler, middlewares...))
	r.record(method, fullPath, name)
}

func (r *Router) record(method, path, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.table = append(r.table, Route{Method: method, Path: path, Name: name})
	if name != "" {
		r.routes[name] = path
	}
}

func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      g.router,
		prefix:      joinPath(g.prefix, prefix),
		middlewares: append(append([]Middleware(nil), g.middlewares...), middlewares...),
	}
}

func (g *Group) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodGet, path, name, handler, middlewares...)
}

func (g *Group) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodPost, path, name, handler, middlewares...)
}

func (g *Group) Put(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodPut, path, name, handler, middlewares...)
}

func (g *Group) Delete(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodDelete, path, name, handler, middlewares...)
}

func (g *Group) mount(method, path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	fullPath := joinPath(g.prefix, path)
	combined := append(append([]Middleware(nil), g.middlewares...), middlewares...)

	g.router.mux.Method(method, fullPath, chain(handler, combined...))
	g.router.record(method, fullPath, name)
}

func chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func joinPath(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}

	if len(segments) == 0 {
		return "/"
	}

	return "/" + strings.Join(segments, "/")
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return joinPath(path)
}
