package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter is a [Router] over [http.ServeMux] whose errors are JSON like the rest of the API.
//
// Routes registered with [BasicRouter.Handle] are grouped by path, so one path may serve several methods.
// Requests that match no route still pass through the middleware stack.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	methods     map[string]map[string]http.Handler
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:     http.NewServeMux(),
		methods: make(map[string]map[string]http.Handler),
	}
}

// Use appends middleware. The first one added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle serves handler for method on path. Other methods on a registered path get 405 with an Allow header.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)

	byMethod, ok := r.methods[path]
	if !ok {
		byMethod = make(map[string]http.Handler)
		r.methods[path] = byMethod
		r.mux.Handle(path, r.Apply(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.dispatch(byMethod, w, req)
		})))
	}
	byMethod[method] = handler
	if method == http.MethodGet {
		byMethod[http.MethodHead] = handler
	}
}

func (r *BasicRouter) dispatch(byMethod map[string]http.Handler, w http.ResponseWriter, req *http.Request) {
	if h, ok := byMethod[req.Method]; ok {
		h.ServeHTTP(w, req)
		return
	}

	allowed := make([]string, 0, len(byMethod))
	for m := range byMethod {
		allowed = append(allowed, m)
	}
	slices.Sort(allowed)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// Handler registers every route of handler, wrapped in the middleware added so far.
//
// Routes may carry a method prefix ("GET /api/state"), in which case the mux does the method filtering.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)

	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP routes req, answering unknown paths with a JSON 404.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if _, pattern := r.mux.Handler(req); pattern == "" {
		r.Apply(http.HandlerFunc(notFound)).ServeHTTP(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler so that the first middleware added runs first.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

func notFound(w http.ResponseWriter, req *http.Request) {
	writeError(w, http.StatusNotFound, "no route for "+req.URL.Path)
}

// Health reports liveness and the player's active source.
func Health(p Player) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s := p.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"source":  s.Source.Kind,
			"playing": s.Playing,
			"locked":  s.Locked,
		})
	})
}
