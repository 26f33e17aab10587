package auditor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/expanel/expanel/plugin"
)

type testHost struct{ r *http.Request }

func (h testHost) Request() *http.Request       { return h.r }
func (h testHost) User() plugin.Principal       { return nil }
func (h testHost) RouteArgs() []string          { return nil }
func (h testHost) RouteVars() map[string]string { return nil }

func newAuditor(t *testing.T, config map[string]any) *Auditor {
	t.Helper()
	a := &Auditor{host: testHost{r: httptest.NewRequest("GET", "/admin/", nil)}}
	if config != nil {
		if err := a.Configure(config); err != nil {
			t.Fatal(err)
		}
	}
	return a
}

func TestObserveAllLevelsByDefault(t *testing.T) {
	a := newAuditor(t, nil)
	out, err := a.observe("saved", "warning")
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("observer must yield nothing, got %v", out)
	}
}

func TestConfigureLevels(t *testing.T) {
	a := newAuditor(t, map[string]any{"levels": []any{"error"}})
	if !a.levels["error"] || a.levels["info"] {
		t.Errorf("got levels %v", a.levels)
	}
}

func TestObserveInChain(t *testing.T) {
	host := testHost{r: httptest.NewRequest("GET", "/admin/", nil)}
	f, ok := plugin.GetFactory("auditor")
	if !ok {
		t.Fatal("auditor factory must self-register")
	}
	s, err := plugin.NewSet(host, []plugin.Factory{f})
	if err != nil {
		t.Fatal(err)
	}

	// message_user's base yields nothing; the observer must not trip the
	// contract violation.
	if _, err := s.Apply("message_user", func() (any, error) { return nil, nil }, "saved", "info"); err != nil {
		t.Fatal(err)
	}
}
