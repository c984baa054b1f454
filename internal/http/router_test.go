package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/planforge/render-backend/internal/config"
	"github.com/planforge/render-backend/internal/progress"
	"github.com/planforge/render-backend/internal/repo"
	"github.com/planforge/render-backend/internal/store"
	"github.com/planforge/render-backend/internal/upstream"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestDeps(t *testing.T, name string) Dependencies {
	t.Helper()
	ctx := context.Background()
	kv := repo.NewKVStore(newTestDB(t, name))

	hist, err := store.NewHistoryStore(ctx, kv)
	if err != nil {
		t.Fatalf("history store: %v", err)
	}
	imgs, err := store.NewPublicImageStore(ctx, kv)
	if err != nil {
		t.Fatalf("image store: %v", err)
	}
	vers, err := store.NewVersionStore(ctx, kv)
	if err != nil {
		t.Fatalf("version store: %v", err)
	}

	return Dependencies{
		History:  hist,
		Images:   imgs,
		Versions: vers,
		Gateway:  upstream.New("http://render.invalid", "", time.Second, zerolog.Nop()),
		Progress: progress.New(nil, nil),
		Log:      zerolog.Nop(),
	}
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestDeps(t, "routerdb1"), baseConfig())

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (PATCH /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	RegisterRoutes(r, newTestDeps(t, "routerdb2"), cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_GatewayMountedAtRoot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestDeps(t, "routerdb3"), baseConfig())

	// Preflight is served at the root path regardless of APIBasePath.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/render", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("OPTIONS /api/render = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Fatalf("unexpected preflight methods: %q", got)
	}

	// Invalid render body exercises the fixed error contract end to end.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /api/render {} = %d", w.Code)
	}
}

func TestRegisterRoutes_VersionedAPIMounted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestDeps(t, "routerdb4"), baseConfig())

	for _, path := range []string{
		"/api/v1/progress",
		"/api/v1/history",
		"/api/v1/public-images",
		"/api/v1/versions",
		"/api/v1/library",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "identity")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d (%s)", path, w.Code, w.Body.String())
		}
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// Hit all three
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/one", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "one" {
		t.Fatalf("GET /one got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/two", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "two" {
		t.Fatalf("GET /two got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("GET /api/ping got %d %q", rec.Code, rec.Body.String())
	}
}

func Test_joinBase(t *testing.T) {
	cases := []struct{ base, suffix, want string }{
		{"/api/v1", "/progress", "/api/v1/progress"},
		{"/api/v1/", "/progress", "/api/v1/progress"},
		{"", "/progress", "/progress"},
		{"/", "/progress", "/progress"},
	}
	for _, tc := range cases {
		if got := joinBase(tc.base, tc.suffix); got != tc.want {
			t.Fatalf("joinBase(%q, %q) = %q, want %q", tc.base, tc.suffix, got, tc.want)
		}
	}
}

// Smoke test that a request traverses otel + ratelimit + gzip + security headers pipeline.
func TestPipeline_Smoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour} // enabled (but only set on https)
	RegisterRoutes(r, newTestDeps(t, "routerdb5"), cfg)

	// Any request goes through the middleware stack
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	// simulate https so HSTS could be eligible if middleware checks scheme
	req.URL.Scheme = "https"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	// RequestID header should be present (from RequestID middleware)
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}
