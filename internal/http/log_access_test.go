package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"greenleaf/internal/http/handlers"
)

func TestSecurityEventsLogged(t *testing.T) {
	env := newTestEnv(t, handlers.Limits{})
	app := env.app

	entries := captureLogs(t, func() {
		// missing csrf token
		req := httptest.NewRequest("POST", "/cart", strings.NewReader("productId=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if _, err := app.Test(req); err != nil {
			t.Fatal(err)
		}

		// malformed search
		if _, err := app.Test(httptest.NewRequest("GET", "/products?search=%3Cscript%3E", nil)); err != nil {
			t.Fatal(err)
		}

		// tampered session cookie
		req = httptest.NewRequest("GET", "/api/v1/cart", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})
		if _, err := app.Test(req); err != nil {
			t.Fatal(err)
		}
	})

	for _, action := range []string{"csrf.fail", "validation.fail", "session.invalid"} {
		if !hasAction(entries, action) {
			t.Errorf("expected %s log entry, got %+v", action, entries)
		}
	}
}

func TestAuditCartAdd(t *testing.T) {
	env := newTestEnv(t, handlers.Limits{})
	s := newSession(t, env.app)

	entries := captureLogs(t, func() {
		resp := s.form("/cart", "productId=2&qty=3")
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("expected redirect, got %d", resp.StatusCode)
		}
	})

	var found bool
	for _, e := range entries {
		if e.Action != "cart.add" {
			continue
		}
		found = true
		if e.Fields["product"] != "2" || e.Fields["qty"] != float64(3) {
			t.Fatalf("unexpected audit fields: %+v", e.Fields)
		}
		if e.Session != s.sid[:8] {
			t.Fatalf("expected short session %q, got %q", s.sid[:8], e.Session)
		}
	}
	if !found {
		t.Fatalf("expected cart.add audit entry, got %+v", entries)
	}
}
