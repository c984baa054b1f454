// Submission and progress HTTP handlers.
//
// This file exposes the JSON API around the submission workflow:
//   - POST /submissions  (run one render submission end to end)
//   - GET  /progress     (current simulator snapshot for polling)
//
// Validation errors map to 400, the not-yet-supported 360-view action to
// 422, and gateway failures to 502 so clients can distinguish "fix your
// input" from "try again later".
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planforge/render-backend/internal/domain"
	"github.com/planforge/render-backend/internal/services"
	"github.com/planforge/render-backend/internal/upstream"
)

// SubmitRequest is the JSON payload for creating a submission.
type SubmitRequest struct {
	// Description is the free-text prompt.
	Description string `json:"description"`
	// Model and Style select the generation options.
	Model string `json:"model"`
	Style string `json:"style"`
	// Action is one of render, video-walkthrough, 360-view.
	Action string `json:"action"`
	// ImageURL is a library or public-image source URL.
	ImageURL string `json:"image_url"`
	// UploadedFileURL is the URL of an uploaded floor plan.
	UploadedFileURL string `json:"uploaded_file_url"`
}

// CreateSubmission runs the submission workflow and returns the history
// record it produced.
func (h *Handlers) CreateSubmission(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	rec, err := h.submit.Submit(c.Request.Context(), services.SubmitRequest{
		Description:     req.Description,
		Model:           strings.TrimSpace(req.Model),
		Style:           strings.TrimSpace(req.Style),
		Action:          domain.Action(req.Action),
		ImageURL:        req.ImageURL,
		UploadedFileURL: req.UploadedFileURL,
	})
	if err != nil {
		h.failSubmission(c, err)
		return
	}
	ok(c, http.StatusCreated, rec)
}

// failSubmission maps submission errors to HTTP results.
func (h *Handlers) failSubmission(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyDescription),
		errors.Is(err, services.ErrNoImageSelected),
		errors.Is(err, services.ErrMultipleImageSources),
		errors.Is(err, services.ErrEphemeralImageRef),
		errors.Is(err, services.ErrUnknownAction):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrUnsupportedAction):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnprocessable, err.Error())
	default:
		if se, isService := upstream.AsServiceError(err); isService {
			fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, se.Error())
			return
		}
		if errors.Is(err, upstream.ErrUnreachable) {
			fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, "Failed to connect to rendering service")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
	}
}

// GetProgress returns the current progress simulator snapshot.
func (h *Handlers) GetProgress(c *gin.Context) {
	ok(c, http.StatusOK, h.progress.Snapshot())
}
