package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/expanel/expanel"
	"github.com/expanel/expanel/internal/nav"
	"github.com/expanel/expanel/internal/store"
	"github.com/expanel/expanel/plugin"
	"github.com/expanel/expanel/views"
)

func testServer(t *testing.T) *panelServer {
	t.Helper()
	site := expanel.NewSite("Test Panel")
	site.Register(&expanel.Panel{
		Model: expanel.Model{App: "auth", Name: "user", VerbosePlural: "users"},
		Icon:  "icon-user",
	})
	site.Register(&expanel.Panel{
		Model: expanel.Model{App: "blog", Name: "post", VerbosePlural: "posts"},
	})

	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "panel.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, p := range site.Panels() {
		if err := db.EnsureTable(p.Model.Table()); err != nil {
			t.Fatalf("ensuring table: %v", err)
		}
	}

	return &panelServer{
		site:     site,
		db:       db,
		navCache: nav.NewMemoryCache(time.Minute),
	}
}

func adminRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("X-Admin-User", "alice")
	req.Header.Set("X-Admin-Super", "1")
	return req
}

func TestHealth(t *testing.T) {
	r := testServer(t).router()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	r := testServer(t).router()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest("GET", "/admin/"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding dashboard response: %v", err)
	}
	if body["site_title"] != "Test Panel" {
		t.Errorf("site_title = %v", body["site_title"])
	}
	if _, ok := body["nav_menu"]; !ok {
		t.Error("dashboard response missing nav_menu")
	}
	if _, ok := body["admin_view"]; ok {
		t.Error("admin_view leaked into JSON response")
	}
}

func TestListRecords(t *testing.T) {
	srv := testServer(t)
	records, err := srv.db.Records("auth_user")
	if err != nil {
		t.Fatal(err)
	}
	for _, pk := range []string{"1", "2", "3"} {
		if err := records.Put(context.Background(), pk, store.Record{"name": "u" + pk}); err != nil {
			t.Fatal(err)
		}
	}

	r := srv.router()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest("GET", "/admin/auth/user/?limit=2"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if body["count"] != float64(3) {
		t.Errorf("count = %v, want 3", body["count"])
	}
	results, _ := body["results"].([]any)
	if len(results) != 2 {
		t.Errorf("got %d results, want limit 2", len(results))
	}
}

func TestListRequiresPermission(t *testing.T) {
	r := testServer(t).router()
	w := httptest.NewRecorder()
	// Authenticated but unprivileged: view permission is missing.
	req := httptest.NewRequest("GET", "/admin/auth/user/", nil)
	req.Header.Set("X-Admin-User", "bob")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestDetailRequiresPermission(t *testing.T) {
	srv := testServer(t)
	records, err := srv.db.Records("auth_user")
	if err != nil {
		t.Fatal(err)
	}
	if err := records.Put(context.Background(), "1", store.Record{"secret": "s3cr3t"}); err != nil {
		t.Fatal(err)
	}

	r := srv.router()
	w := httptest.NewRecorder()
	// Authenticated but unprivileged: must be denied like the list page.
	req := httptest.NewRequest("GET", "/admin/auth/user/1/change", nil)
	req.Header.Set("X-Admin-User", "bob")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if strings.Contains(w.Body.String(), "s3cr3t") {
		t.Error("record content leaked to unprivileged user")
	}
}

func TestDetail(t *testing.T) {
	srv := testServer(t)
	records, err := srv.db.Records("blog_post")
	if err != nil {
		t.Fatal(err)
	}
	if err := records.Put(context.Background(), "7", store.Record{"title": "hello"}); err != nil {
		t.Fatal(err)
	}

	r := srv.router()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest("GET", "/admin/blog/post/7/change"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding detail response: %v", err)
	}
	obj, _ := body["object"].(map[string]any)
	if obj["title"] != "hello" {
		t.Errorf("object = %v", body["object"])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest("GET", "/admin/blog/post/999/change"))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing record: status = %d, want 404", w.Code)
	}
}

func TestUnknownModel(t *testing.T) {
	r := testServer(t).router()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest("GET", "/admin/shop/order/"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPrincipalMiddleware(t *testing.T) {
	var got plugin.Principal
	h := principalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = views.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin/", nil)
	req.Header.Set("X-Admin-User", "carol")
	req.Header.Set("X-Admin-Perms", "auth.view_user, blog.change_post")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.Name() != "carol" || got.IsSuperuser() {
		t.Errorf("got %q super=%v", got.Name(), got.IsSuperuser())
	}
	if !got.HasPerm("auth.view_user") || !got.HasPerm("blog.change_post") {
		t.Error("parsed permissions missing")
	}
	if got.HasPerm("auth.delete_user") {
		t.Error("unexpected permission granted")
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/admin/", nil))
	if got.Name() != "anonymous" {
		t.Errorf("unauthenticated principal = %q, want anonymous", got.Name())
	}
}
