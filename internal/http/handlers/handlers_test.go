package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/planforge/render-backend/internal/domain"
	"github.com/planforge/render-backend/internal/progress"
	"github.com/planforge/render-backend/internal/repo"
	"github.com/planforge/render-backend/internal/services"
	"github.com/planforge/render-backend/internal/store"
)

// memBackend is an in-memory store.Backend for handler tests.
type memBackend struct{ m map[string][]byte }

func newMemBackend() *memBackend { return &memBackend{m: map[string][]byte{}} }

func (b *memBackend) Load(_ context.Context, key string) ([]byte, error) {
	v, okKey := b.m[key]
	if !okKey {
		return nil, repo.ErrNotFound
	}
	return v, nil
}

func (b *memBackend) Save(_ context.Context, key string, value []byte) error {
	b.m[key] = append([]byte(nil), value...)
	return nil
}

// stubGateway cans the upstream reply.
type stubGateway struct {
	reply json.RawMessage
	err   error

	lastPayload any
}

func (g *stubGateway) Render(_ context.Context, payload any) (json.RawMessage, error) {
	g.lastPayload = payload
	return g.reply, g.err
}

func (g *stubGateway) VideoWalkthrough(_ context.Context, payload any) (json.RawMessage, error) {
	g.lastPayload = payload
	return g.reply, g.err
}

// stubSubmitter cans the submission outcome.
type stubSubmitter struct {
	rec     domain.RenderResult
	err     error
	lastReq services.SubmitRequest
}

func (s *stubSubmitter) Submit(_ context.Context, req services.SubmitRequest) (domain.RenderResult, error) {
	s.lastReq = req
	return s.rec, s.err
}

// stubProgress serves a fixed snapshot.
type stubProgress struct{ snap progress.Snapshot }

func (s *stubProgress) Snapshot() progress.Snapshot { return s.snap }

// fixture bundles the handler set with its fakes and stores.
type fixture struct {
	h        *Handlers
	router   *gin.Engine
	gateway  *stubGateway
	submit   *stubSubmitter
	prog     *stubProgress
	history  *store.HistoryStore
	images   *store.PublicImageStore
	versions *store.VersionStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	be := newMemBackend()
	hist, err := store.NewHistoryStore(ctx, be)
	if err != nil {
		t.Fatalf("history store: %v", err)
	}
	imgs, err := store.NewPublicImageStore(ctx, be)
	if err != nil {
		t.Fatalf("image store: %v", err)
	}
	vers, err := store.NewVersionStore(ctx, be)
	if err != nil {
		t.Fatalf("version store: %v", err)
	}

	f := &fixture{
		gateway:  &stubGateway{},
		submit:   &stubSubmitter{},
		prog:     &stubProgress{},
		history:  hist,
		images:   imgs,
		versions: vers,
	}
	f.h = New(f.submit, f.gateway, f.prog, hist, imgs, vers)

	r := gin.New()
	r.POST("/api/render", f.h.Render)
	r.OPTIONS("/api/render", f.h.RenderPreflight)
	r.POST("/api/video-walkthrough", f.h.VideoWalkthrough)
	r.OPTIONS("/api/video-walkthrough", f.h.RenderPreflight)

	v1 := r.Group("/api/v1")
	v1.POST("/submissions", f.h.CreateSubmission)
	v1.GET("/progress", f.h.GetProgress)
	v1.GET("/history", f.h.ListHistory)
	v1.GET("/history/current", f.h.GetCurrentResult)
	v1.GET("/history/:id", f.h.GetHistoryEntry)
	v1.PUT("/history/current/:id", f.h.SetCurrentResult)
	v1.DELETE("/history/:id", f.h.DeleteHistoryEntry)
	v1.DELETE("/history", f.h.ClearHistory)
	v1.GET("/public-images", f.h.ListPublicImages)
	v1.POST("/public-images", f.h.AddPublicImage)
	v1.DELETE("/public-images/:id", f.h.DeletePublicImage)
	v1.GET("/versions", f.h.ListVersions)
	v1.POST("/versions", f.h.CreateVersion)
	v1.DELETE("/versions/:id", f.h.DeleteVersion)
	v1.GET("/versions/current", f.h.GetCurrentVersion)
	v1.PUT("/versions/current/:id", f.h.SetCurrentVersion)
	v1.GET("/library", f.h.ListLibrary)
	f.router = r
	return f
}

// do performs one request against the fixture router.
func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestGetProgress_ServesSnapshot(t *testing.T) {
	f := newFixture(t)
	f.prog.snap = progress.Snapshot{Stage: 2, StageName: "Applying style and materials", Progress: 45, Running: true}

	w := f.do(http.MethodGet, "/api/v1/progress", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var snap progress.Snapshot
	decodeJSON(t, w, &snap)
	if snap.Stage != 2 || snap.Progress != 45 || !snap.Running {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestListLibrary_ServesCatalog(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/library", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp struct {
		Images []domain.LibraryImage `json:"images"`
	}
	decodeJSON(t, w, &resp)
	if len(resp.Images) != len(domain.LibraryImages) {
		t.Fatalf("expected %d catalog entries, got %d", len(domain.LibraryImages), len(resp.Images))
	}
}
