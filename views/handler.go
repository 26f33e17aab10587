package views

import (
	"net/http"
	"strings"

	"github.com/expanel/expanel/internal/logging"
	"github.com/go-chi/chi/v5"
)

// Getter handles GET requests. HEAD falls back to it.
type Getter interface {
	Get(w http.ResponseWriter, r *http.Request)
}

// Poster handles POST requests.
type Poster interface {
	Post(w http.ResponseWriter, r *http.Request)
}

// Putter handles PUT requests.
type Putter interface {
	Put(w http.ResponseWriter, r *http.Request)
}

// Deleter handles DELETE requests.
type Deleter interface {
	Delete(w http.ResponseWriter, r *http.Request)
}

// Constructor builds a view for one request. vars holds the named route
// parameters extracted from the router.
type Constructor func(r *http.Request, vars map[string]string) (any, error)

// Handler adapts a view constructor to http.HandlerFunc. The view is built
// fresh per request (running the plugin lifecycle pass), then dispatched by
// method; construction failure aborts the request with a 500.
func Handler(ctor Constructor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := ctor(r, RouteVarsFrom(r))
		if err != nil {
			logging.FromContext(r.Context()).Error("view construction failed",
				"path", r.URL.Path, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		dispatch(view, w, r)
	}
}

func dispatch(view any, w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if g, ok := view.(Getter); ok {
			g.Get(w, r)
			return
		}
	case http.MethodPost:
		if p, ok := view.(Poster); ok {
			p.Post(w, r)
			return
		}
	case http.MethodPut:
		if p, ok := view.(Putter); ok {
			p.Put(w, r)
			return
		}
	case http.MethodDelete:
		if d, ok := view.(Deleter); ok {
			d.Delete(w, r)
			return
		}
	}
	methodNotAllowed(view, w)
}

func methodNotAllowed(view any, w http.ResponseWriter) {
	var allow []string
	if _, ok := view.(Getter); ok {
		allow = append(allow, http.MethodGet, http.MethodHead)
	}
	if _, ok := view.(Poster); ok {
		allow = append(allow, http.MethodPost)
	}
	if _, ok := view.(Putter); ok {
		allow = append(allow, http.MethodPut)
	}
	if _, ok := view.(Deleter); ok {
		allow = append(allow, http.MethodDelete)
	}
	w.Header().Set("Allow", strings.Join(allow, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// RouteVarsFrom extracts the named route parameters from a chi request.
func RouteVarsFrom(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	vars := map[string]string{}
	for i, k := range rctx.URLParams.Keys {
		if k == "*" {
			continue
		}
		vars[k] = rctx.URLParams.Values[i]
	}
	return vars
}
