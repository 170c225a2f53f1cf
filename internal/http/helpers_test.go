package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"greenleaf/internal/config"
	"greenleaf/internal/domain"
	"greenleaf/internal/http/handlers"
	"greenleaf/internal/notify"
	"greenleaf/internal/repos"
	"greenleaf/web"
)

type testEnv struct {
	app  *fiber.App
	db   *sqlx.DB
	bus  *notify.Bus
	deps *handlers.Deps
}

// newTestEnv wires the app the way main does, minus the access logger and helmet.
func newTestEnv(t *testing.T, lim handlers.Limits) testEnv {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", Pricing: domain.ListPrice, FilterPanelThreshold: 600}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	bus := notify.NewBus()

	app := fiber.New(fiber.Config{Views: web.Engine(), ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB
	app.Use(requestid.New())
	app.Use(handlers.CSRF())

	deps := handlers.NewDeps(db, cfg, bus)
	handlers.Register(app, deps, lim)
	return testEnv{app: app, db: db, bus: bus, deps: deps}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// session is a browser: it carries the sid and csrf cookies between requests.
type session struct {
	t    *testing.T
	app  *fiber.App
	sid  string
	csrf string
}

func newSession(t *testing.T, app *fiber.App) *session {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/about", nil))
	if err != nil {
		t.Fatal(err)
	}
	s := &session{t: t, app: app, sid: extractCookie(resp, "sid"), csrf: extractCookie(resp, "csrf_")}
	if s.sid == "" || s.csrf == "" {
		t.Fatalf("expected sid and csrf cookies, got sid=%q csrf=%q", s.sid, s.csrf)
	}
	return s
}

func (s *session) do(req *http.Request) *http.Response {
	s.t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: s.sid})
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: s.csrf})
	resp, err := s.app.Test(req)
	if err != nil {
		s.t.Fatal(err)
	}
	return resp
}

func (s *session) get(path string) *http.Response {
	return s.do(httptest.NewRequest("GET", path, nil))
}

func (s *session) form(path string, fields string) *http.Response {
	body := "csrf=" + s.csrf
	if fields != "" {
		body += "&" + fields
	}
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *session) postJSON(path string, v any) *http.Response {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrf.HeaderName, s.csrf)
	return s.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

type logEntry struct {
	Level   string         `json:"level"`
	Action  string         `json:"action"`
	Session string         `json:"session"`
	Fields  map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
