package handlers

import (
	"net/http"
	"testing"

	"github.com/planforge/render-backend/internal/domain"
	"github.com/planforge/render-backend/internal/services"
	"github.com/planforge/render-backend/internal/upstream"
)

func TestCreateSubmission_ReturnsRecord(t *testing.T) {
	f := newFixture(t)
	f.submit.rec = domain.RenderResult{
		ID:          "hist-1",
		Description: "modern kitchen",
		Action:      domain.ActionRender,
	}

	w := f.do(http.MethodPost, "/api/v1/submissions",
		`{"description":"modern kitchen","model":"nano-banana","style":"modern","action":"render","image_url":"https://x/plan.png"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var rec domain.RenderResult
	decodeJSON(t, w, &rec)
	if rec.ID != "hist-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if f.submit.lastReq.Action != domain.ActionRender || f.submit.lastReq.ImageURL != "https://x/plan.png" {
		t.Fatalf("request not forwarded: %+v", f.submit.lastReq)
	}
}

func TestCreateSubmission_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty description", services.ErrEmptyDescription, http.StatusBadRequest},
		{"no image", services.ErrNoImageSelected, http.StatusBadRequest},
		{"two sources", services.ErrMultipleImageSources, http.StatusBadRequest},
		{"ephemeral ref", services.ErrEphemeralImageRef, http.StatusBadRequest},
		{"unknown action", services.ErrUnknownAction, http.StatusBadRequest},
		{"360 view", services.ErrUnsupportedAction, http.StatusUnprocessableEntity},
		{"upstream status", &upstream.ServiceError{Status: 503, Body: "overloaded"}, http.StatusBadGateway},
		{"unreachable", upstream.ErrUnreachable, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.submit.err = tc.err

			w := f.do(http.MethodPost, "/api/v1/submissions",
				`{"description":"d","action":"render","image_url":"https://x/p.png"}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
			var er ErrorResponse
			decodeJSON(t, w, &er)
			if er.Code == "" || er.Message == "" {
				t.Fatalf("envelope incomplete: %+v", er)
			}
		})
	}
}

func TestCreateSubmission_InvalidJSON(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/v1/submissions", `{"description":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}
