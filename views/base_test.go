package views

import (
	"net/http/httptest"
	"testing"

	"github.com/expanel/expanel"
	"github.com/expanel/expanel/plugin"
)

// hookPlugin implements a configurable set of hooks for view tests.
type hookPlugin struct {
	plugin.Base
	name  string
	hooks map[string]plugin.Impl
	skip  bool
}

func (p *hookPlugin) Name() string { return p.name }

func (p *hookPlugin) InitRequest(_ ...any) (bool, error) { return !p.skip, nil }

func (p *hookPlugin) Hooks() map[string]plugin.Impl { return p.hooks }

func factoryFor(p *hookPlugin) plugin.Factory {
	return func(_ plugin.Host) plugin.Plugin { return p }
}

func testSite() *expanel.Site {
	site := expanel.NewSite("Test Admin")
	site.Register(&expanel.Panel{
		Model: expanel.Model{App: "auth", Name: "user", VerbosePlural: "users"},
		Icon:  "icon-user",
	})
	site.Register(&expanel.Panel{
		Model: expanel.Model{App: "auth", Name: "group", VerbosePlural: "groups"},
	})
	site.Register(&expanel.Panel{
		Model: expanel.Model{App: "blog", Name: "post", VerbosePlural: "posts"},
	})
	return site
}

func TestBaseView_ContextWithoutPlugins(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/", nil)
	v, err := NewBase(testSite(), r)
	if err != nil {
		t.Fatal(err)
	}

	ctx, err := v.Context()
	if err != nil {
		t.Fatal(err)
	}
	if ctx["admin_view"] != any(v) {
		t.Error("context must carry the view under admin_view")
	}
	if _, ok := ctx["media"].(Media); !ok {
		t.Errorf("context must carry media, got %T", ctx["media"])
	}
}

func TestBaseView_ContextThroughPlugins(t *testing.T) {
	p := &hookPlugin{name: "extend", hooks: map[string]plugin.Impl{
		"get_context": plugin.Filter(func(result any, _ ...any) (any, error) {
			ctx := result.(map[string]any)
			ctx["extra"] = 1
			return ctx, nil
		}),
	}}
	r := httptest.NewRequest("GET", "/admin/", nil)
	v, err := NewBase(testSite(), r, WithFactories(factoryFor(p)))
	if err != nil {
		t.Fatal(err)
	}

	ctx, err := v.Context()
	if err != nil {
		t.Fatal(err)
	}
	if ctx["extra"] != 1 {
		t.Errorf("plugin transformation missing: %v", ctx)
	}
}

func TestBaseView_MediaMergedByPlugin(t *testing.T) {
	p := &hookPlugin{name: "assets", hooks: map[string]plugin.Impl{
		"get_media": plugin.Filter(func(result any, _ ...any) (any, error) {
			m := result.(Media)
			return m.Merge(Media{JS: []string{"app.js"}, CSS: []string{"app.css"}}), nil
		}),
	}}
	r := httptest.NewRequest("GET", "/admin/", nil)
	v, err := NewBase(testSite(), r, WithFactories(factoryFor(p)))
	if err != nil {
		t.Fatal(err)
	}

	media, err := v.Media()
	if err != nil {
		t.Fatal(err)
	}
	if len(media.JS) != 1 || media.JS[0] != "app.js" {
		t.Errorf("got %v", media)
	}
}

func TestBaseView_PluginHostIsOuterView(t *testing.T) {
	var seen plugin.Host
	factory := func(h plugin.Host) plugin.Plugin {
		seen = h
		return &hookPlugin{name: "probe"}
	}
	r := httptest.NewRequest("GET", "/admin/", nil)
	v, err := NewComm(testSite(), r, WithFactories(factory))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := seen.(*CommView); !ok {
		t.Errorf("plugins must be bound to the concrete view, got %T", seen)
	}
	if v.Plugins().Len() != 1 {
		t.Errorf("got %d active plugins", v.Plugins().Len())
	}
}

func TestBaseView_RouteArgsReachOptInCheck(t *testing.T) {
	var got []any
	p := &recordingPlugin{onInit: func(args ...any) { got = args }}
	factory := func(_ plugin.Host) plugin.Plugin { return p }

	r := httptest.NewRequest("GET", "/admin/auth/user/42", nil)
	_, err := NewBase(testSite(), r,
		WithFactories(factory),
		WithRouteArgs("42"),
		WithRouteVars(map[string]string{"pk": "42"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "42" {
		t.Fatalf("opt-in args %v, want route args then vars", got)
	}
	vars, ok := got[1].(map[string]string)
	if !ok || vars["pk"] != "42" {
		t.Errorf("opt-in vars %v", got[1])
	}
}

type recordingPlugin struct {
	plugin.Base
	onInit func(args ...any)
}

func (p *recordingPlugin) Name() string { return "recording" }

func (p *recordingPlugin) InitRequest(args ...any) (bool, error) {
	p.onInit(args...)
	return true, nil
}

func TestMediaMergeDeduplicates(t *testing.T) {
	a := Media{JS: []string{"a.js", "b.js"}, CSS: []string{"a.css"}}
	b := Media{JS: []string{"b.js", "c.js"}, CSS: []string{"a.css"}}
	m := a.Merge(b)
	if len(m.JS) != 3 || len(m.CSS) != 1 {
		t.Errorf("got %v", m)
	}
}
