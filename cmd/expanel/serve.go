package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/expanel/expanel"
	"github.com/expanel/expanel/internal/logging"
	"github.com/expanel/expanel/internal/nav"
	"github.com/expanel/expanel/internal/store"
	"github.com/expanel/expanel/internal/version"
	"github.com/expanel/expanel/plugin"
	"github.com/expanel/expanel/views"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	// Register built-in plugins so they can be enabled from config.
	_ "github.com/expanel/expanel/internal/plugins/ajax"
	_ "github.com/expanel/expanel/internal/plugins/auditor"
	_ "github.com/expanel/expanel/internal/plugins/guard"
)

var (
	configPath  string
	navCacheTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin panel server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "expanel.yaml", "path to the config file")
	serveCmd.Flags().DurationVar(&navCacheTTL, "nav-cache-ttl", time.Minute, "how long rendered nav menus are cached per user")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := expanel.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := expanel.ValidateConfig(*cfg); err != nil {
		return err
	}

	logger := logging.Logger
	site := cfg.BuildSite()

	var db *store.SQLStore
	switch cfg.Database.Driver {
	case "postgres":
		db, err = store.NewPostgresStore(cfg.Database.DSN)
	default:
		db, err = store.NewSQLiteStore(cfg.Database.DSN)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	for _, p := range site.Panels() {
		if err := db.EnsureTable(p.Model.Table()); err != nil {
			return err
		}
	}

	factories, err := configuredFactories(cfg.Plugins)
	if err != nil {
		return err
	}
	logger.Info("plugins loaded", "count", len(factories), "registered", plugin.RegisteredPlugins())

	panel := &panelServer{
		site:      site,
		db:        db,
		factories: factories,
		navCache:  nav.NewMemoryCache(navCacheTTL),
	}

	addr := cfg.Listen
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      panel.router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("expanel listening", "addr", addr, "version", version.Short(),
			"panels", len(site.Panels()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// configuredFactories resolves the enabled plugins from config against the
// factory registry and binds their configuration.
func configuredFactories(configs []expanel.PluginConfig) ([]plugin.Factory, error) {
	var factories []plugin.Factory
	for _, pc := range configs {
		if !pc.Enabled {
			continue
		}
		factory, ok := plugin.GetFactory(pc.Name)
		if !ok {
			return nil, fmt.Errorf("unknown plugin %q (registered: %s)",
				pc.Name, strings.Join(plugin.RegisteredPlugins(), ", "))
		}
		factories = append(factories, configuredFactory(factory, pc.Config))
	}
	return factories, nil
}

func configuredFactory(factory plugin.Factory, conf map[string]any) plugin.Factory {
	if len(conf) == 0 {
		return factory
	}
	return func(host plugin.Host) plugin.Plugin {
		pl := factory(host)
		if c, ok := pl.(plugin.Configurable); ok {
			if err := c.Configure(conf); err != nil {
				logging.Logger.Error("plugin configuration failed",
					"plugin", pl.Name(), "error", err)
			}
		}
		return pl
	}
}

// principalMiddleware derives the acting principal from trusted proxy
// headers. An auth layer in front of the panel is expected to set them;
// without X-Admin-User the request runs as Anonymous.
func principalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("X-Admin-User")
		if name == "" {
			next.ServeHTTP(w, r)
			return
		}
		p := &views.StaticPrincipal{
			UserName: name,
			Super:    r.Header.Get("X-Admin-Super") == "1",
		}
		if perms := r.Header.Get("X-Admin-Perms"); perms != "" {
			for _, perm := range strings.Split(perms, ",") {
				if perm = strings.TrimSpace(perm); perm != "" {
					p.Perms = append(p.Perms, perm)
				}
			}
		}
		next.ServeHTTP(w, r.WithContext(views.WithPrincipal(r.Context(), p)))
	})
}

// panelServer holds the request-independent pieces views are built from.
type panelServer struct {
	site      *expanel.Site
	db        *store.SQLStore
	factories []plugin.Factory
	navCache  nav.Cache
}

func (s *panelServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(principalMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/"+s.site.AppName(), func(r chi.Router) {
		r.Get("/", views.Handler(s.dashboardView))
		r.Get("/{app}/{model}/", views.Handler(s.listView))
		r.Get("/{app}/{model}/{pk}/change", views.Handler(s.detailView))
	})

	return r
}

// modelIcons maps model labels to configured icons for the nav menu.
func (s *panelServer) modelIcons() map[string]string {
	icons := map[string]string{}
	for _, p := range s.site.Panels() {
		if p.Icon != "" {
			icons[p.Model.Label()] = p.Icon
		}
	}
	return icons
}

func (s *panelServer) viewOptions(r *http.Request, vars map[string]string) []views.Option {
	return []views.Option{
		views.WithUser(views.PrincipalFrom(r.Context())),
		views.WithFactories(s.factories...),
		views.WithRouteVars(vars),
	}
}

func (s *panelServer) commView(r *http.Request, vars map[string]string) (*views.CommView, error) {
	v, err := views.NewComm(s.site, r, s.viewOptions(r, vars)...)
	if err != nil {
		return nil, err
	}
	v.SetModelIcons(s.modelIcons())
	v.SetNavCache(s.navCache)
	return v, nil
}

func (s *panelServer) dashboardView(r *http.Request, vars map[string]string) (any, error) {
	v, err := s.commView(r, vars)
	if err != nil {
		return nil, err
	}
	return &dashboardView{CommView: v}, nil
}

// modelView builds a ModelView for the routed model, or nil when the URL
// names a model no panel is registered for.
func (s *panelServer) modelView(r *http.Request, vars map[string]string) (*views.ModelView, error) {
	panel, ok := s.site.Lookup(vars["app"], vars["model"])
	if !ok {
		return nil, nil
	}
	records, err := s.db.Records(panel.Model.Table())
	if err != nil {
		return nil, err
	}
	v, err := views.NewModel(s.site, r, panel, records, s.viewOptions(r, vars)...)
	if err != nil {
		return nil, err
	}
	v.SetModelIcons(s.modelIcons())
	v.SetNavCache(s.navCache)
	return v, nil
}

func (s *panelServer) listView(r *http.Request, vars map[string]string) (any, error) {
	v, err := s.modelView(r, vars)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return notFoundView{}, nil
	}
	return &listView{ModelView: v}, nil
}

func (s *panelServer) detailView(r *http.Request, vars map[string]string) (any, error) {
	v, err := s.modelView(r, vars)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return notFoundView{}, nil
	}
	return &detailView{ModelView: v}, nil
}
