package expanel

import "github.com/expanel/expanel/internal/nav"

// Config holds the configuration for an admin panel site.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`
	// SiteTitle is shown in page contexts and menus.
	SiteTitle string `json:"site_title" yaml:"site_title"`
	// AppName is the URL namespace, defaulting to "admin".
	AppName string `json:"app_name,omitempty" yaml:"app_name,omitempty"`
	// StaticPrefix is the static asset URL prefix, defaulting to "/static/".
	StaticPrefix string `json:"static_prefix,omitempty" yaml:"static_prefix,omitempty"`
	// Database configures the records backend.
	Database DatabaseConfig `json:"database" yaml:"database"`
	// Apps lists the applications and models served by the panel.
	Apps []AppConfig `json:"apps" yaml:"apps"`
	// Plugins configuration (optional).
	Plugins []PluginConfig `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	// SiteMenu is the hand-configured part of the navigation menu.
	SiteMenu []MenuItemConfig `json:"site_menu,omitempty" yaml:"site_menu,omitempty"`
}

// DatabaseConfig selects and configures the records backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

// AppConfig declares one application with its models.
type AppConfig struct {
	Label  string        `json:"label" yaml:"label"`
	Models []ModelConfig `json:"models" yaml:"models"`
}

// ModelConfig declares one model inside an app.
type ModelConfig struct {
	Name          string `json:"name" yaml:"name"`
	VerbosePlural string `json:"verbose_plural,omitempty" yaml:"verbose_plural,omitempty"`
	Icon          string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// PluginConfig holds plugin configuration.
type PluginConfig struct {
	Name    string         `json:"name" yaml:"name"`
	Enabled bool           `json:"enabled" yaml:"enabled"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// MenuItemConfig declares one entry of the configured site menu.
type MenuItemConfig struct {
	Title string           `json:"title" yaml:"title"`
	URL   string           `json:"url,omitempty" yaml:"url,omitempty"`
	Icon  string           `json:"icon,omitempty" yaml:"icon,omitempty"`
	Perm  string           `json:"perm,omitempty" yaml:"perm,omitempty"`
	Menus []MenuItemConfig `json:"menus,omitempty" yaml:"menus,omitempty"`
}

// BuildSite assembles a Site from the configuration.
func (c Config) BuildSite() *Site {
	title := c.SiteTitle
	if title == "" {
		title = "Expanel"
	}
	site := NewSite(title)
	if c.AppName != "" {
		site.SetAppName(c.AppName)
	}
	if c.StaticPrefix != "" {
		site.SetStaticPrefix(c.StaticPrefix)
	}
	for _, app := range c.Apps {
		for _, m := range app.Models {
			verbose := m.VerbosePlural
			if verbose == "" {
				verbose = m.Name + "s"
			}
			site.Register(&Panel{
				Model: Model{App: app.Label, Name: m.Name, VerbosePlural: verbose},
				Icon:  m.Icon,
			})
		}
	}
	site.SetSiteMenu(buildMenuItems(c.SiteMenu))
	return site
}

func buildMenuItems(items []MenuItemConfig) []*nav.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]*nav.Item, 0, len(items))
	for _, it := range items {
		out = append(out, &nav.Item{
			Title: it.Title,
			URL:   it.URL,
			Icon:  it.Icon,
			Perm:  it.Perm,
			Menus: buildMenuItems(it.Menus),
		})
	}
	return out
}
