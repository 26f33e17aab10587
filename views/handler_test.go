package views

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// getOnlyView responds to GET only.
type getOnlyView struct{ vars map[string]string }

func (v *getOnlyView) Get(w http.ResponseWriter, _ *http.Request) {
	_ = RenderJSON(w, map[string]any{"pk": v.vars["pk"]})
}

func TestHandler_DispatchAndRouteVars(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/admin/auth/user/{pk}", Handler(func(_ *http.Request, vars map[string]string) (any, error) {
		return &getOnlyView{vars: vars}, nil
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/auth/user/42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"pk":"42"`) {
		t.Errorf("route vars not extracted: %s", rec.Body.String())
	}
}

func TestHandler_HeadFallsBackToGet(t *testing.T) {
	h := Handler(func(_ *http.Request, _ map[string]string) (any, error) {
		return &getOnlyView{}, nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("HEAD", "/admin/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want HEAD served by Get", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := Handler(func(_ *http.Request, _ map[string]string) (any, error) {
		return &getOnlyView{}, nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got status %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, "GET") {
		t.Errorf("got Allow %q", allow)
	}
}

func TestHandler_ConstructionFailure(t *testing.T) {
	h := Handler(func(_ *http.Request, _ map[string]string) (any, error) {
		return nil, errors.New("plugin init failed")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d", rec.Code)
	}
}
