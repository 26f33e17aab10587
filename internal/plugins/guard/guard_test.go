package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/expanel/expanel/plugin"
)

// modelHost is a test host with a controllable permission result.
type modelHost struct {
	r       *http.Request
	allowed bool
}

func (h modelHost) Request() *http.Request       { return h.r }
func (h modelHost) User() plugin.Principal       { return nil }
func (h modelHost) RouteArgs() []string          { return nil }
func (h modelHost) RouteVars() map[string]string { return nil }
func (h modelHost) HasViewPermission() bool      { return h.allowed }

// plainHost exposes no permission check.
type plainHost struct{ r *http.Request }

func (h plainHost) Request() *http.Request       { return h.r }
func (h plainHost) User() plugin.Principal       { return nil }
func (h plainHost) RouteArgs() []string          { return nil }
func (h plainHost) RouteVars() map[string]string { return nil }

func guardSet(t *testing.T, host plugin.Host) *plugin.Set {
	t.Helper()
	f, ok := plugin.GetFactory("guard")
	if !ok {
		t.Fatal("guard factory must self-register")
	}
	s, err := plugin.NewSet(host, []plugin.Factory{f})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDeniedUserGetsNoRecord(t *testing.T) {
	host := modelHost{r: httptest.NewRequest("GET", "/admin/auth/user/1", nil), allowed: false}
	s := guardSet(t, host)

	baseRan := false
	out, err := s.Apply("get_object", func() (any, error) {
		baseRan = true
		return map[string]any{"username": "alice"}, nil
	}, "1")
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("got %v, want nil", out)
	}
	if baseRan {
		t.Error("record lookup must be skipped for denied users")
	}
}

func TestAllowedUserPassesThrough(t *testing.T) {
	host := modelHost{r: httptest.NewRequest("GET", "/admin/auth/user/1", nil), allowed: true}
	s := guardSet(t, host)

	out, err := s.Apply("get_object", func() (any, error) {
		return map[string]any{"username": "alice"}, nil
	}, "1")
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := out.(map[string]any)
	if !ok || rec["username"] != "alice" {
		t.Errorf("got %v", out)
	}
}

func TestOptsOutOnHostsWithoutPermissions(t *testing.T) {
	host := plainHost{r: httptest.NewRequest("GET", "/admin/", nil)}
	s := guardSet(t, host)
	if s.Len() != 0 {
		t.Errorf("guard must opt out on hosts without a permission check, got %d active", s.Len())
	}
}
