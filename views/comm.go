package views

import (
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/expanel/expanel"
	"github.com/expanel/expanel/internal/logging"
	"github.com/expanel/expanel/internal/metrics"
	"github.com/expanel/expanel/internal/nav"
	"github.com/expanel/expanel/plugin"
)

// Messenger delivers user-facing messages. The storage and presentation of
// messages belong to the surrounding application.
type Messenger interface {
	Message(level, message string)
}

// logMessenger is the default Messenger: structured log output only.
type logMessenger struct{ r *http.Request }

func (m logMessenger) Message(level, message string) {
	logging.FromContext(m.r.Context()).Info("user message", "level", level, "message", message)
	metrics.UserMessages.WithLabelValues(level).Inc()
}

// CommView extends BaseView with the common page chrome: site title,
// navigation menu, model icons, and user messaging.
type CommView struct {
	BaseView

	siteTitle  string
	modelIcons map[string]string
	navCache   nav.Cache
	messenger  Messenger
}

// NewComm constructs a CommView and runs the plugin lifecycle pass.
func NewComm(site *expanel.Site, r *http.Request, opts ...Option) (*CommView, error) {
	v := &CommView{}
	v.init(site, r, opts)
	if err := v.bindPlugins(v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetSiteTitle overrides the site title for this view.
func (v *CommView) SetSiteTitle(title string) { v.siteTitle = title }

// SiteTitle returns the effective site title.
func (v *CommView) SiteTitle() string {
	if v.siteTitle != "" {
		return v.siteTitle
	}
	return v.site.Title()
}

// SetModelIcons overrides menu icons per model label ("app.name").
func (v *CommView) SetModelIcons(icons map[string]string) { v.modelIcons = icons }

// SetNavCache injects the menu cache consulted by Context. Without a cache
// the menu is rebuilt on every request.
func (v *CommView) SetNavCache(c nav.Cache) { v.navCache = c }

// SetMessenger overrides the message delivery collaborator.
func (v *CommView) SetMessenger(m Messenger) { v.messenger = m }

// Messenger returns the effective message collaborator.
func (v *CommView) Messenger() Messenger {
	if v.messenger != nil {
		return v.messenger
	}
	return logMessenger{r: v.request}
}

// NavMenu is the get_nav_menu hook: the full, unfiltered navigation menu.
// The base value is the configured site menu followed by per-app groups
// built from the registry, both sorted by title. Models whose list URL
// already appears in the site menu are skipped.
func (v *CommView) NavMenu() ([]*nav.Item, error) {
	return plugin.Through(v.plugins, "get_nav_menu", func() ([]*nav.Item, error) {
		siteMenu := nav.Clone(v.site.SiteMenu())
		had := nav.URLs(siteMenu)

		groups := map[string]*nav.Item{}
		var order []string
		for _, p := range v.site.Panels() {
			m := p.Model
			url := v.site.ModelURL(m, "changelist")
			if had[url] {
				continue
			}
			icon, err := v.ModelIcon(m)
			if err != nil {
				return nil, err
			}
			item := &nav.Item{
				Title: capfirst(m.VerbosePlural),
				URL:   url,
				Icon:  icon,
				Perm:  expanel.ModelPerm(m, "view"),
			}
			group, ok := groups[m.App]
			if !ok {
				group = &nav.Item{Title: capfirst(m.App)}
				groups[m.App] = group
				order = append(order, m.App)
			}
			group.Menus = append(group.Menus, item)
		}

		appMenus := make([]*nav.Item, 0, len(order))
		for _, app := range order {
			appMenus = append(appMenus, groups[app])
		}
		nav.SortByTitle(appMenus)

		return append(siteMenu, appMenus...), nil
	})
}

// Context is the get_context hook. On top of the BaseView context it adds
// the navigation menu (permission-filtered, selection-marked, served through
// the injected nav cache when one is set) and the site title.
func (v *CommView) Context() (map[string]any, error) {
	return plugin.Through(v.plugins, "get_context", func() (map[string]any, error) {
		ctx, err := v.BaseView.Context()
		if err != nil {
			return nil, err
		}

		var menu []*nav.Item
		cacheKey := ""
		if v.navCache != nil && v.user != nil {
			cacheKey = "nav_menu:" + v.user.Name()
			if cached, ok := v.navCache.Get(cacheKey); ok {
				metrics.NavMenuCache.WithLabelValues("hit").Inc()
				menu = nav.Clone(cached)
			} else {
				metrics.NavMenuCache.WithLabelValues("miss").Inc()
			}
		}
		if menu == nil {
			full, err := v.NavMenu()
			if err != nil {
				return nil, err
			}
			menu = nav.FilterByPerm(nav.Clone(full), v.user)
			if cacheKey != "" {
				v.navCache.Set(cacheKey, nav.Clone(menu))
			}
		}
		nav.MarkSelected(menu, v.request.URL.Path)

		ctx["nav_menu"] = menu
		ctx["site_title"] = v.SiteTitle()
		return ctx, nil
	})
}

// ModelIcon is the get_model_icon hook. The base value checks the view's
// icon overrides, then the registered panel.
func (v *CommView) ModelIcon(m expanel.Model) (string, error) {
	return plugin.Through(v.plugins, "get_model_icon", func() (string, error) {
		if icon, ok := v.modelIcons[m.Label()]; ok {
			return icon, nil
		}
		if p, ok := v.site.Lookup(m.App, m.Name); ok {
			return p.Icon, nil
		}
		return "", nil
	}, m)
}

// MessageUser is the message_user hook: sends a message to the acting user
// through the Messenger collaborator. Level defaults to "info". The base
// computation yields nothing, so observe-mode plugins may attach here.
func (v *CommView) MessageUser(message, level string) error {
	if level == "" {
		level = "info"
	}
	_, err := v.plugins.Apply("message_user", func() (any, error) {
		v.Messenger().Message(level, message)
		return nil, nil
	}, message, level)
	return err
}

func capfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
