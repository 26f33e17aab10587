// Package expanel provides an extensible admin-panel toolkit built around a
// plugin hook engine.
//
// The Site type is the process-wide registry: create one with NewSite,
// register model panels with Register, and wire it into views from the
// views package. Site state is assembled once at startup and read-only
// afterwards; all per-request extensibility happens through plugins (see the
// plugin package).
//
// A Site can be assembled from a YAML or JSON file using [LoadConfig] and
// [Config.BuildSite].
package expanel

import (
	"fmt"
	"strings"

	"github.com/expanel/expanel/internal/nav"
	"github.com/expanel/expanel/plugin"
)

// Model describes a registered data model.
type Model struct {
	// App is the application label the model belongs to, e.g. "auth".
	App string
	// Name is the lowercase model name, e.g. "user".
	Name string
	// VerbosePlural is the human-readable plural title shown in menus.
	VerbosePlural string
}

// Label returns the "app.name" identifier of the model.
func (m Model) Label() string { return m.App + "." + m.Name }

// Table returns the default database table name for the model.
func (m Model) Table() string { return m.App + "_" + m.Name }

// ModelPerm formats the permission label for an action on a model, e.g.
//
//	ModelPerm(userModel, "view") == "auth.view_user"
func ModelPerm(m Model, action string) string {
	return fmt.Sprintf("%s.%s_%s", m.App, action, m.Name)
}

// HasModelPerm reports whether user holds the given action permission on the
// model. The "view" action is implied by "change".
func HasModelPerm(user plugin.Principal, m Model, action string) bool {
	if user == nil {
		return false
	}
	if user.HasPerm(ModelPerm(m, action)) {
		return true
	}
	return action == "view" && HasModelPerm(user, m, "change")
}

// Panel is the per-model descriptor registered on a Site.
type Panel struct {
	Model Model
	// Icon names the menu icon for the model, optional.
	Icon string
}

// Site is the static registry of an admin panel: its registered model
// panels, the configured site menu, and URL/static settings. Assemble it
// during startup; it must not be mutated once requests are being served.
type Site struct {
	title        string
	appName      string
	staticPrefix string
	panels       []*Panel
	index        map[string]*Panel
	siteMenu     []*nav.Item
}

// NewSite creates a Site with the given title. The URL namespace defaults
// to "admin" and the static prefix to "/static/".
func NewSite(title string) *Site {
	return &Site{
		title:        title,
		appName:      "admin",
		staticPrefix: "/static/",
		index:        map[string]*Panel{},
	}
}

// Title returns the site title.
func (s *Site) Title() string { return s.title }

// AppName returns the URL namespace all admin URLs live under.
func (s *Site) AppName() string { return s.appName }

// SetAppName overrides the URL namespace.
func (s *Site) SetAppName(name string) { s.appName = name }

// SetStaticPrefix overrides the static file URL prefix.
func (s *Site) SetStaticPrefix(prefix string) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	s.staticPrefix = prefix
}

// StaticURL returns the URL of a static asset.
func (s *Site) StaticURL(path string) string {
	return s.staticPrefix + strings.TrimPrefix(path, "/")
}

// Register adds a model panel to the registry. Registering the same model
// label twice replaces the earlier panel.
func (s *Site) Register(p *Panel) {
	label := p.Model.Label()
	if old, ok := s.index[label]; ok {
		for i, existing := range s.panels {
			if existing == old {
				s.panels[i] = p
				break
			}
		}
	} else {
		s.panels = append(s.panels, p)
	}
	s.index[label] = p
}

// Panels returns the registered panels in registration order.
func (s *Site) Panels() []*Panel {
	out := make([]*Panel, len(s.panels))
	copy(out, s.panels)
	return out
}

// Lookup finds a panel by app label and model name.
func (s *Site) Lookup(app, name string) (*Panel, bool) {
	p, ok := s.index[app+"."+name]
	return p, ok
}

// SetSiteMenu sets the hand-configured part of the navigation menu; model
// menus built from the registry are appended after it.
func (s *Site) SetSiteMenu(items []*nav.Item) { s.siteMenu = items }

// SiteMenu returns the configured site menu.
func (s *Site) SiteMenu() []*nav.Item { return s.siteMenu }

// AdminURL returns the path of a named admin page inside the site's URL
// namespace, e.g. AdminURL("login") == "/admin/login".
func (s *Site) AdminURL(name string, args ...string) string {
	parts := append([]string{"", s.appName, name}, args...)
	return strings.Join(parts, "/")
}

// ModelURL returns the path of a model action page. The "changelist" action
// (or an empty action) maps to the model's list page; other actions append
// their arguments and the action name, e.g.
//
//	ModelURL(m, "change", "42") == "/admin/auth/user/42/change"
func (s *Site) ModelURL(m Model, action string, args ...string) string {
	parts := []string{"", s.appName, m.App, m.Name}
	if action == "" || action == "changelist" {
		return strings.Join(parts, "/") + "/"
	}
	parts = append(parts, args...)
	parts = append(parts, action)
	return strings.Join(parts, "/")
}
