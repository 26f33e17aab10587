// Package views provides the extensible admin view hierarchy. Every view
// owns a per-request plugin set; the methods documented as hooks run through
// the plugin chain (see the plugin package) so attached plugins can observe,
// transform, or replace their results.
package views

import (
	"net/http"

	"github.com/expanel/expanel"
	"github.com/expanel/expanel/plugin"
)

// Media lists the static assets a page needs.
type Media struct {
	JS  []string `json:"js,omitempty"`
	CSS []string `json:"css,omitempty"`
}

// Merge appends other's assets, skipping duplicates.
func (m Media) Merge(other Media) Media {
	m.JS = appendMissing(m.JS, other.JS)
	m.CSS = appendMissing(m.CSS, other.CSS)
	return m
}

func appendMissing(dst, src []string) []string {
	seen := map[string]bool{}
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

// BaseView holds the request-scoped state shared by all admin views: the
// site, the inbound request, the acting user, route arguments, and the
// active plugin set. It implements plugin.Host.
type BaseView struct {
	site      *expanel.Site
	request   *http.Request
	user      plugin.Principal
	routeArgs []string
	routeVars map[string]string
	factories []plugin.Factory
	plugins   *plugin.Set
	host      any
}

// Option configures view construction.
type Option func(*BaseView)

// WithFactories attaches plugin factories to the view.
func WithFactories(factories ...plugin.Factory) Option {
	return func(v *BaseView) { v.factories = append(v.factories, factories...) }
}

// WithRouteArgs sets the positional route arguments.
func WithRouteArgs(args ...string) Option {
	return func(v *BaseView) { v.routeArgs = args }
}

// WithRouteVars sets the named route parameters.
func WithRouteVars(vars map[string]string) Option {
	return func(v *BaseView) { v.routeVars = vars }
}

// WithUser overrides the principal taken from the request context.
func WithUser(u plugin.Principal) Option {
	return func(v *BaseView) { v.user = u }
}

// NewBase constructs a BaseView and runs the plugin lifecycle pass.
func NewBase(site *expanel.Site, r *http.Request, opts ...Option) (*BaseView, error) {
	v := &BaseView{}
	v.init(site, r, opts)
	if err := v.bindPlugins(v); err != nil {
		return nil, err
	}
	return v, nil
}

// init fills the request-scoped fields. Plugin binding is separate so
// embedding views can pass themselves as the plugin host.
func (v *BaseView) init(site *expanel.Site, r *http.Request, opts []Option) {
	v.site = site
	v.request = r
	v.user = PrincipalFrom(r.Context())
	v.routeVars = map[string]string{}
	for _, o := range opts {
		o(v)
	}
}

// bindPlugins runs the plugin lifecycle pass exactly once, with host as the
// object plugins are bound to. The opt-in check receives the view's route
// arguments followed by the named route parameters.
func (v *BaseView) bindPlugins(host plugin.Host) error {
	initArgs := make([]any, 0, len(v.routeArgs)+1)
	for _, a := range v.routeArgs {
		initArgs = append(initArgs, a)
	}
	if len(v.routeVars) > 0 {
		initArgs = append(initArgs, v.routeVars)
	}
	set, err := plugin.NewSet(host, v.factories, initArgs...)
	if err != nil {
		return err
	}
	v.plugins = set
	v.host = host
	return nil
}

// Request returns the inbound request.
func (v *BaseView) Request() *http.Request { return v.request }

// User returns the acting principal.
func (v *BaseView) User() plugin.Principal { return v.user }

// RouteArgs returns the positional route arguments.
func (v *BaseView) RouteArgs() []string { return v.routeArgs }

// RouteVars returns the named route parameters.
func (v *BaseView) RouteVars() map[string]string { return v.routeVars }

// Site returns the owning site registry.
func (v *BaseView) Site() *expanel.Site { return v.site }

// Plugins returns the view's active plugin set.
func (v *BaseView) Plugins() *plugin.Set { return v.plugins }

// Context is the get_context hook: the template/JSON context of the page.
// The base value carries the view itself and its media.
func (v *BaseView) Context() (map[string]any, error) {
	return plugin.Through(v.plugins, "get_context", func() (map[string]any, error) {
		media, err := v.Media()
		if err != nil {
			return nil, err
		}
		return map[string]any{"admin_view": v.host, "media": media}, nil
	})
}

// Media is the get_media hook: the static assets of the page.
func (v *BaseView) Media() (Media, error) {
	return plugin.Through(v.plugins, "get_media", func() (Media, error) {
		return Media{}, nil
	})
}
