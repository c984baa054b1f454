// Package services – SubmitService
//
// This file implements the SubmitService, which runs the full submission
// workflow for a render request: it validates the prompt and the image
// selection, drives the perceived-progress simulator around the external
// call, dispatches to the rendering gateway by action kind, and on success
// records the outcome in render history (where it becomes the current
// result).
//
// Service-level errors (e.g., ErrEmptyDescription) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
// A failed submission commits nothing: history is only appended after the
// gateway call succeeded.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/planforge/render-backend/internal/domain"
)

// Renderer defines the gateway contract required by SubmitService.
type Renderer interface {
	// Render posts a still-image render request and returns the gateway's
	// JSON response verbatim.
	Render(ctx context.Context, payload any) (json.RawMessage, error)

	// VideoWalkthrough posts a walkthrough video request.
	VideoWalkthrough(ctx context.Context, payload any) (json.RawMessage, error)
}

// ProgressController is the simulator surface the submitter drives.
type ProgressController interface {
	// Start (re)starts the simulation from stage zero.
	Start()
	// SetComplete signals the real call concluded so remaining stages drain.
	SetComplete()
	// Stop cancels the simulation and resets display state.
	Stop()
}

// HistoryRecorder appends completed submissions to render history.
type HistoryRecorder interface {
	Add(ctx context.Context, r domain.RenderResult) (domain.RenderResult, error)
}

// RenderAsset is one input image reference forwarded to the gateway.
type RenderAsset struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// RenderPayload is the gateway request body for still-image renders.
type RenderPayload struct {
	Style   string        `json:"style"`
	Model   string        `json:"model"`
	Assets  []RenderAsset `json:"assets"`
	Prompt  string        `json:"prompt"`
	Version int           `json:"version"`
}

// VideoPayload is the gateway request body for walkthrough videos.
type VideoPayload struct {
	Assets []RenderAsset `json:"assets"`
	Prompt string        `json:"prompt"`
}

// SubmitRequest carries one user submission. Exactly one of ImageURL /
// UploadedFileURL must be set; the caller resolves last-selection-wins
// before calling Submit.
type SubmitRequest struct {
	// Description is the free-text prompt.
	Description string
	// Model and Style are the selected option identifiers.
	Model string
	Style string
	// Action selects the generation kind.
	Action domain.Action
	// ImageURL is a library or public-image source URL.
	ImageURL string
	// UploadedFileURL is the URL of an uploaded floor plan. Uploads are not
	// stored server-side yet, so durable URLs are required here too.
	UploadedFileURL string
}

// SubmitService coordinates validation, progress simulation, the gateway
// call, and history reconciliation for render submissions.
type SubmitService struct {
	// Upstream is the rendering gateway client.
	Upstream Renderer
	// History receives the record of every successful submission.
	History HistoryRecorder
	// Progress is the simulator driven around the gateway call.
	Progress ProgressController
	// Log is used for submission diagnostics.
	Log zerolog.Logger
}

// NewSubmitService constructs a SubmitService.
func NewSubmitService(up Renderer, hist HistoryRecorder, prog ProgressController, log zerolog.Logger) *SubmitService {
	return &SubmitService{Upstream: up, History: hist, Progress: prog, Log: log}
}

// renderResponse is the subset of the gateway's render reply the submitter
// reads back. Unknown fields are ignored.
type renderResponse struct {
	Media            *domain.MediaInfo `json:"media"`
	ImageURL         string            `json:"imageUrl"`
	RenderedImageURL string            `json:"renderedImageUrl"`
}

// Submit runs one submission end to end and returns the stored history
// record. Validation failures and unsupported actions return sentinel
// errors with no side effects; gateway failures stop the simulator and
// commit nothing.
func (s *SubmitService) Submit(ctx context.Context, req SubmitRequest) (domain.RenderResult, error) {
	desc := strings.TrimSpace(norm.NFC.String(req.Description))
	if desc == "" {
		return domain.RenderResult{}, ErrEmptyDescription
	}

	src, err := s.resolveSource(req)
	if err != nil {
		return domain.RenderResult{}, err
	}

	if !req.Action.Valid() {
		return domain.RenderResult{}, ErrUnknownAction
	}
	if req.Action == domain.Action360View {
		return domain.RenderResult{}, ErrUnsupportedAction
	}

	s.Progress.Start()
	committed := false
	defer func() {
		// A failed run resets the simulator; a successful one is left to
		// drain its remaining stages after SetComplete.
		if !committed {
			s.Progress.Stop()
		}
	}()

	assets := []RenderAsset{{ID: "", URL: src}}

	var outcome domain.RenderOutcome
	var renderedURL string
	switch req.Action {
	case domain.ActionRender:
		raw, err := s.Upstream.Render(ctx, RenderPayload{
			Style:   req.Style,
			Model:   req.Model,
			Assets:  assets,
			Prompt:  desc,
			Version: 1,
		})
		if err != nil {
			s.Log.Error().Err(err).Str("action", string(req.Action)).Msg("render submission failed")
			return domain.RenderResult{}, err
		}
		media, err := parseRenderReply(raw)
		if err != nil {
			return domain.RenderResult{}, err
		}
		outcome = domain.ImageOutcome(media)
		renderedURL = media.AbsoluteURL

	case domain.ActionVideoWalkthrough:
		raw, err := s.Upstream.VideoWalkthrough(ctx, VideoPayload{Assets: assets, Prompt: desc})
		if err != nil {
			s.Log.Error().Err(err).Str("action", string(req.Action)).Msg("walkthrough submission failed")
			return domain.RenderResult{}, err
		}
		var video domain.VideoInfo
		if err := json.Unmarshal(raw, &video); err != nil {
			return domain.RenderResult{}, fmt.Errorf("decode video response: %w", err)
		}
		if video.URL == "" {
			return domain.RenderResult{}, fmt.Errorf("video service returned no artifact")
		}
		outcome = domain.VideoOutcome(video)
		renderedURL = video.URL
	}

	s.Progress.SetComplete()

	rec, err := s.History.Add(ctx, domain.RenderResult{
		Description:      desc,
		Model:            req.Model,
		Style:            req.Style,
		Action:           req.Action,
		ImageURL:         src,
		RenderedImageURL: renderedURL,
		Media:            outcome.Media,
		Video:            outcome.Video,
	})
	if err != nil {
		return domain.RenderResult{}, err
	}
	committed = true

	s.Log.Info().Str("id", rec.ID).Str("action", string(rec.Action)).Msg("submission recorded")
	return rec, nil
}

// resolveSource enforces the exactly-one-image rule and returns the source
// URL the gateway will fetch.
func (s *SubmitService) resolveSource(req SubmitRequest) (string, error) {
	img := strings.TrimSpace(req.ImageURL)
	up := strings.TrimSpace(req.UploadedFileURL)

	switch {
	case img == "" && up == "":
		return "", ErrNoImageSelected
	case img != "" && up != "":
		return "", ErrMultipleImageSources
	}

	src := img
	if up != "" {
		// Uploads are forwarded by URL only; there is no server-side blob
		// store behind this path yet.
		s.Log.Warn().Msg("uploaded file submitted as URL; uploads are not stored server-side")
		src = up
	}

	// blob:/data: references live in the submitting client and cannot be
	// fetched by the gateway.
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "blob:") || strings.HasPrefix(lower, "data:") {
		return "", ErrEphemeralImageRef
	}
	return src, nil
}

// parseRenderReply extracts the image artifact from a gateway render reply,
// falling back to bare URL fields when no media block is present.
func parseRenderReply(raw json.RawMessage) (domain.MediaInfo, error) {
	var rr renderResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return domain.MediaInfo{}, fmt.Errorf("decode render response: %w", err)
	}
	if rr.Media != nil && rr.Media.AbsoluteURL != "" {
		return *rr.Media, nil
	}
	if rr.RenderedImageURL != "" {
		return domain.MediaInfo{AbsoluteURL: rr.RenderedImageURL}, nil
	}
	if rr.ImageURL != "" {
		return domain.MediaInfo{AbsoluteURL: rr.ImageURL}, nil
	}
	return domain.MediaInfo{}, fmt.Errorf("rendering service returned no image")
}
