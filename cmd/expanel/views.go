package main

import (
	"net/http"
	"strconv"

	"github.com/expanel/expanel/internal/logging"
	"github.com/expanel/expanel/views"
)

// dashboardView renders the panel home page: the site context with the
// navigation menu for the acting user.
type dashboardView struct {
	*views.CommView
}

func (v *dashboardView) Get(w http.ResponseWriter, r *http.Request) {
	ctx, err := v.Context()
	if err != nil {
		serverError(w, r, err)
		return
	}
	// The view reference only makes sense to templates, not JSON clients.
	delete(ctx, "admin_view")
	_ = views.RenderJSON(w, ctx)
}

// listView renders one page of a model's records.
type listView struct {
	*views.ModelView
}

func (v *listView) Get(w http.ResponseWriter, r *http.Request) {
	if !v.HasViewPermission() {
		forbidden(w)
		return
	}
	limit := queryInt(r, "limit", 25)
	offset := queryInt(r, "offset", 0)

	records, err := v.Records().List(r.Context(), limit, offset)
	if err != nil {
		serverError(w, r, err)
		return
	}
	total, err := v.Records().Count(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}

	ctx, err := v.Context()
	if err != nil {
		serverError(w, r, err)
		return
	}
	delete(ctx, "admin_view")
	ctx["model"] = v.Model().Label()
	ctx["results"] = records
	ctx["count"] = total
	ctx["limit"] = limit
	ctx["offset"] = offset
	ctx["perms"] = v.ModelPerms()
	_ = views.RenderJSON(w, ctx)
}

// detailView renders a single record.
type detailView struct {
	*views.ModelView
}

func (v *detailView) Get(w http.ResponseWriter, r *http.Request) {
	if !v.HasViewPermission() {
		forbidden(w)
		return
	}
	rec, err := v.Object(r.Context(), v.RouteVars()["pk"])
	if err != nil {
		serverError(w, r, err)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	ctx, err := v.Context()
	if err != nil {
		serverError(w, r, err)
		return
	}
	delete(ctx, "admin_view")
	ctx["model"] = v.Model().Label()
	ctx["object"] = rec
	ctx["perms"] = v.ModelPerms()
	_ = views.RenderJSON(w, ctx)
}

// notFoundView is constructed for URLs naming an unregistered model.
type notFoundView struct{}

func (notFoundView) Get(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func forbidden(w http.ResponseWriter) {
	http.Error(w, "permission denied", http.StatusForbidden)
}
