package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/planforge/render-backend/internal/domain"
)

// fakeRenderer records the payload it was called with and replies with a
// canned body or error.
type fakeRenderer struct {
	renderCalls int
	videoCalls  int
	lastPayload any
	reply       json.RawMessage
	err         error
}

func (f *fakeRenderer) Render(_ context.Context, payload any) (json.RawMessage, error) {
	f.renderCalls++
	f.lastPayload = payload
	return f.reply, f.err
}

func (f *fakeRenderer) VideoWalkthrough(_ context.Context, payload any) (json.RawMessage, error) {
	f.videoCalls++
	f.lastPayload = payload
	return f.reply, f.err
}

// fakeProgress records the simulator transitions in order.
type fakeProgress struct{ events []string }

func (f *fakeProgress) Start()       { f.events = append(f.events, "start") }
func (f *fakeProgress) SetComplete() { f.events = append(f.events, "complete") }
func (f *fakeProgress) Stop()        { f.events = append(f.events, "stop") }

// fakeHistory stores added records and assigns ids.
type fakeHistory struct {
	added []domain.RenderResult
	err   error
}

func (f *fakeHistory) Add(_ context.Context, r domain.RenderResult) (domain.RenderResult, error) {
	if f.err != nil {
		return domain.RenderResult{}, f.err
	}
	r.ID = "hist-1"
	f.added = append(f.added, r)
	return r, nil
}

func newTestService(r *fakeRenderer, h *fakeHistory, p *fakeProgress) *SubmitService {
	return NewSubmitService(r, h, p, zerolog.Nop())
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Description: "modern scandinavian kitchen",
		Model:       "nano-banana",
		Style:       "modern",
		Action:      domain.ActionRender,
		ImageURL:    "https://cdn.example.com/plan.png",
	}
}

func TestSubmit_Render_Succeeds(t *testing.T) {
	r := &fakeRenderer{reply: json.RawMessage(`{"media":{"absoluteUrl":"https://cdn/out.png","width":1024,"height":768,"filesize":2048,"filename":"out.png"}}`)}
	h := &fakeHistory{}
	p := &fakeProgress{}
	svc := newTestService(r, h, p)

	rec, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.ID != "hist-1" || rec.Action != domain.ActionRender {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Media == nil || rec.Media.AbsoluteURL != "https://cdn/out.png" || rec.Video != nil {
		t.Fatalf("expected image outcome, got %+v", rec)
	}
	if rec.RenderedImageURL != "https://cdn/out.png" {
		t.Fatalf("rendered URL not set: %+v", rec)
	}

	pl, ok := r.lastPayload.(RenderPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", r.lastPayload)
	}
	if pl.Version != 1 || pl.Prompt != "modern scandinavian kitchen" {
		t.Fatalf("unexpected payload: %+v", pl)
	}
	if len(pl.Assets) != 1 || pl.Assets[0].URL != "https://cdn.example.com/plan.png" || pl.Assets[0].ID != "" {
		t.Fatalf("unexpected assets: %+v", pl.Assets)
	}

	// Success leaves the simulator draining, never resetting it.
	if len(p.events) != 2 || p.events[0] != "start" || p.events[1] != "complete" {
		t.Fatalf("unexpected progress events: %v", p.events)
	}
}

func TestSubmit_Render_FallsBackToBareImageURL(t *testing.T) {
	r := &fakeRenderer{reply: json.RawMessage(`{"imageUrl":"https://cdn/raw.png"}`)}
	svc := newTestService(r, &fakeHistory{}, &fakeProgress{})

	rec, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Media == nil || rec.Media.AbsoluteURL != "https://cdn/raw.png" {
		t.Fatalf("expected fallback media, got %+v", rec)
	}
}

func TestSubmit_Validation(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*SubmitRequest)
		want error
	}{
		{"empty description", func(r *SubmitRequest) { r.Description = "  \n\t " }, ErrEmptyDescription},
		{"no image", func(r *SubmitRequest) { r.ImageURL = "" }, ErrNoImageSelected},
		{"two sources", func(r *SubmitRequest) { r.UploadedFileURL = "https://up/x.png" }, ErrMultipleImageSources},
		{"blob scheme", func(r *SubmitRequest) { r.ImageURL = "blob:https://app/123" }, ErrEphemeralImageRef},
		{"data scheme", func(r *SubmitRequest) { r.ImageURL = "data:image/png;base64,AAAA" }, ErrEphemeralImageRef},
		{"unknown action", func(r *SubmitRequest) { r.Action = "hologram" }, ErrUnknownAction},
		{"360 view", func(r *SubmitRequest) { r.Action = domain.Action360View }, ErrUnsupportedAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &fakeRenderer{}
			h := &fakeHistory{}
			p := &fakeProgress{}
			svc := newTestService(r, h, p)

			req := validRequest()
			tc.mod(&req)

			_, err := svc.Submit(context.Background(), req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			// Zero side effects on validation failure.
			if r.renderCalls != 0 || r.videoCalls != 0 || len(h.added) != 0 {
				t.Fatalf("validation failure must not reach the gateway or history")
			}
		})
	}
}

func TestSubmit_UpstreamFailure_StopsProgressCommitsNothing(t *testing.T) {
	r := &fakeRenderer{err: errors.New("Failed to connect")}
	h := &fakeHistory{}
	p := &fakeProgress{}
	svc := newTestService(r, h, p)

	_, err := svc.Submit(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected upstream error")
	}
	if len(h.added) != 0 {
		t.Fatalf("failed submission must not be recorded")
	}
	if len(p.events) != 2 || p.events[0] != "start" || p.events[1] != "stop" {
		t.Fatalf("expected start then stop, got %v", p.events)
	}
}

func TestSubmit_HistoryFailure_PropagatesAndStops(t *testing.T) {
	r := &fakeRenderer{reply: json.RawMessage(`{"imageUrl":"https://cdn/out.png"}`)}
	h := &fakeHistory{err: errors.New("disk full")}
	p := &fakeProgress{}
	svc := newTestService(r, h, p)

	_, err := svc.Submit(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if p.events[len(p.events)-1] != "stop" {
		t.Fatalf("failed persistence must reset the simulator: %v", p.events)
	}
}

func TestSubmit_VideoWalkthrough(t *testing.T) {
	r := &fakeRenderer{reply: json.RawMessage(`{"url":"https://cdn/tour.mp4","file_name":"tour.mp4","file_size":900,"content_type":"video/mp4"}`)}
	h := &fakeHistory{}
	svc := newTestService(r, h, &fakeProgress{})

	req := validRequest()
	req.Action = domain.ActionVideoWalkthrough

	rec, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.videoCalls != 1 || r.renderCalls != 0 {
		t.Fatalf("expected video dispatch, got render=%d video=%d", r.renderCalls, r.videoCalls)
	}
	if rec.Video == nil || rec.Video.URL != "https://cdn/tour.mp4" || rec.Media != nil {
		t.Fatalf("expected video outcome, got %+v", rec)
	}
	if rec.RenderedImageURL != "https://cdn/tour.mp4" {
		t.Fatalf("thumbnail URL must point at the video: %+v", rec)
	}

	pl, ok := r.lastPayload.(VideoPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", r.lastPayload)
	}
	if len(pl.Assets) != 1 || pl.Prompt == "" {
		t.Fatalf("unexpected payload: %+v", pl)
	}
}

func TestSubmit_Video_NoArtifactIsError(t *testing.T) {
	r := &fakeRenderer{reply: json.RawMessage(`{}`)}
	svc := newTestService(r, &fakeHistory{}, &fakeProgress{})

	req := validRequest()
	req.Action = domain.ActionVideoWalkthrough
	if _, err := svc.Submit(context.Background(), req); err == nil {
		t.Fatal("expected error for empty video reply")
	}
}

func TestSubmit_NormalizesDescription(t *testing.T) {
	r := &fakeRenderer{reply: json.RawMessage(`{"imageUrl":"https://cdn/out.png"}`)}
	svc := newTestService(r, &fakeHistory{}, &fakeProgress{})

	req := validRequest()
	// NFD "é" (e + combining acute) must be stored composed.
	req.Description = "  café corner  "

	rec, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Description != "café corner" {
		t.Fatalf("description not normalized: %q", rec.Description)
	}
}

func TestSubmit_UploadedFileURL_IsAccepted(t *testing.T) {
	r := &fakeRenderer{reply: json.RawMessage(`{"imageUrl":"https://cdn/out.png"}`)}
	svc := newTestService(r, &fakeHistory{}, &fakeProgress{})

	req := validRequest()
	req.ImageURL = ""
	req.UploadedFileURL = "https://uploads.example.com/plan.png"

	rec, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.ImageURL != "https://uploads.example.com/plan.png" {
		t.Fatalf("uploaded URL must become the source: %+v", rec)
	}
}

func TestParseRenderReply_NoImage(t *testing.T) {
	if _, err := parseRenderReply(json.RawMessage(`{"status":"ok"}`)); err == nil {
		t.Fatal("expected error when reply carries no image")
	}
}
