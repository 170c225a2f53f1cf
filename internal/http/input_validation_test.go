package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"greenleaf/internal/domain"
	"greenleaf/internal/http/handlers"
	"greenleaf/internal/repos"
)

// reject malformed inputs early
func TestValidationBadInputs(t *testing.T) {
	env := newTestEnv(t, handlers.Limits{})
	s := newSession(t, env.app)

	cases := []struct {
		path string
		want int
	}{
		{"/products?search=%3Cscript%3E", http.StatusBadRequest},
		{"/api/v1/products?min=abc", http.StatusBadRequest},
		{"/api/v1/products?rating=9", http.StatusBadRequest},
		{"/api/v1/suggestions?q=%3Cb%3E", http.StatusBadRequest},
		{"/api/v1/filter-panel?scrollY=down", http.StatusBadRequest},
		{"/api/v1/products/..%2Fetc", http.StatusNotFound},
		{"/products/no-such-item", http.StatusNotFound},
	}
	for _, c := range cases {
		resp := s.get(c.path)
		if resp.StatusCode != c.want {
			t.Errorf("%s: expected %d, got %d", c.path, c.want, resp.StatusCode)
		}
	}

	if resp := s.form("/cart", "qty=2"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("add without productId expected 400, got %d", resp.StatusCode)
	}
	if resp := s.form("/cart/quantity", "productId=1&delta=lots"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad delta expected 400, got %d", resp.StatusCode)
	}
	if resp := s.postJSON("/api/v1/cart", map[string]any{"qty": 1}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("json add without productId expected 400, got %d", resp.StatusCode)
	}
	if resp := s.postJSON("/api/v1/cart/quantity", map[string]any{"productId": 1}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("quantity without qty or delta expected 400, got %d", resp.StatusCode)
	}
}

// forms and API posts without a matching token are refused
func TestCSRFRequired(t *testing.T) {
	env := newTestEnv(t, handlers.Limits{})

	req := httptest.NewRequest("POST", "/cart", strings.NewReader("productId=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productId":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Csrf-Token", "forged")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: "other"})
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for mismatched token, got %d", resp.StatusCode)
	}
}

// templates auto-escape untrusted text
func TestTemplateAutoEscape(t *testing.T) {
	env := newTestEnv(t, handlers.Limits{})
	err := repos.ReplaceCatalog(env.db, []domain.Product{{
		ID: "xss-1", Title: "<script>alert(1)</script>", Description: "<b>desc</b>",
		Brand: "Acme", Category: "Tests", Price: 9.99, Rating: 4,
	}})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := env.app.Test(httptest.NewRequest("GET", "/products/xss-1", nil))
	if err != nil {
		t.Fatal(err)
	}
	s := readBody(t, resp)
	if strings.Contains(s, "<script>alert(1)</script>") {
		t.Fatalf("found unescaped script tag in output")
	}
	if !strings.Contains(s, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("escaped script not found; output=%s", s)
	}
	if strings.Contains(s, "<b>desc</b>") {
		t.Fatalf("description rendered as markup")
	}
}
