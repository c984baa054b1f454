// Rendering gateway HTTP handlers.
//
// This file exposes the proxy endpoints consumed directly by browser
// clients:
//   - POST    /api/render             (forward a render request upstream)
//   - OPTIONS /api/render             (CORS preflight)
//   - POST    /api/video-walkthrough  (forward a walkthrough request)
//   - OPTIONS /api/video-walkthrough  (CORS preflight)
//
// Unlike the rest of the API these endpoints carry a FIXED external
// contract: the error bodies are bare `{error, details?, message?}` objects
// with exact message strings, and a successful upstream reply is relayed
// byte-for-byte. Do not route their failures through the standard envelope.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planforge/render-backend/internal/http/middleware"
	"github.com/planforge/render-backend/internal/services"
	"github.com/planforge/render-backend/internal/upstream"
)

// Gateway defines the upstream calls the proxy endpoints forward to.
type Gateway interface {
	// Render posts a still-image render request upstream.
	Render(ctx context.Context, payload any) (json.RawMessage, error)
	// VideoWalkthrough posts a walkthrough video request upstream.
	VideoWalkthrough(ctx context.Context, payload any) (json.RawMessage, error)
}

// Fixed gateway error messages. These are part of the public contract;
// clients match on them.
const (
	msgMissingFields   = "Missing required fields: style, model, assets, prompt"
	msgEmptyAssets     = "Assets must be a non-empty array"
	msgAssetNeedsURL   = "Each asset must have a url field"
	msgInvalidJSON     = "Invalid JSON in request body"
	msgConnectFailed   = "Failed to connect to rendering service"
	msgUpstreamError   = "Rendering service error"
	msgInternalFailure = "Internal server error"
)

// gatewayError is the bare error body of the proxy endpoints.
type gatewayError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// renderRequest is the inbound proxy payload. Version is a pointer so an
// absent field can be defaulted without conflating it with zero.
type renderRequest struct {
	Style   string                 `json:"style"`
	Model   string                 `json:"model"`
	Assets  []services.RenderAsset `json:"assets"`
	Prompt  string                 `json:"prompt"`
	Version *int                   `json:"version"`
}

// videoRequest is the inbound walkthrough payload.
type videoRequest struct {
	Assets []services.RenderAsset `json:"assets"`
	Prompt string                 `json:"prompt"`
}

// RenderPreflight answers the CORS preflight for the gateway endpoints.
func (h *Handlers) RenderPreflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Status(http.StatusOK)
}

// Render proxies a validated render request to the rendering service.
func (h *Handlers) Render(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gatewayError{Error: msgInternalFailure})
		return
	}

	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gatewayError{Error: msgInvalidJSON})
		return
	}

	if req.Style == "" || req.Model == "" || req.Assets == nil || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gatewayError{Error: msgMissingFields})
		return
	}
	if len(req.Assets) == 0 {
		c.JSON(http.StatusBadRequest, gatewayError{Error: msgEmptyAssets})
		return
	}
	for _, a := range req.Assets {
		if a.URL == "" {
			c.JSON(http.StatusBadRequest, gatewayError{Error: msgAssetNeedsURL})
			return
		}
	}

	version := 1
	if req.Version != nil {
		version = *req.Version
	}
	payload := services.RenderPayload{
		Style:   req.Style,
		Model:   req.Model,
		Assets:  req.Assets,
		Prompt:  req.Prompt,
		Version: version,
	}

	raw, err := h.gateway.Render(c.Request.Context(), payload)
	if err != nil {
		h.relayGatewayError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// VideoWalkthrough proxies a walkthrough request to the video service.
func (h *Handlers) VideoWalkthrough(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gatewayError{Error: msgInternalFailure})
		return
	}

	var req videoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gatewayError{Error: msgInvalidJSON})
		return
	}
	if len(req.Assets) == 0 {
		c.JSON(http.StatusBadRequest, gatewayError{Error: msgEmptyAssets})
		return
	}
	for _, a := range req.Assets {
		if a.URL == "" {
			c.JSON(http.StatusBadRequest, gatewayError{Error: msgAssetNeedsURL})
			return
		}
	}

	raw, err := h.gateway.VideoWalkthrough(c.Request.Context(), videoRequest{Assets: req.Assets, Prompt: req.Prompt})
	if err != nil {
		h.relayGatewayError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// relayGatewayError maps an upstream failure onto the fixed contract: a
// non-2xx upstream reply keeps its status and surfaces its body, any
// transport failure becomes a 502.
func (h *Handlers) relayGatewayError(c *gin.Context, err error) {
	if se, ok := upstream.AsServiceError(err); ok {
		middleware.LoggerFrom(c).Warn().
			Int("upstream_status", se.Status).
			Str("upstream_body", se.Body).
			Msg("rendering service error")
		c.JSON(se.Status, gatewayError{
			Error:   msgUpstreamError,
			Details: "Service returned " + strconv.Itoa(se.Status),
			Message: se.Body,
		})
		return
	}
	middleware.LoggerFrom(c).Error().Err(err).Msg("rendering service unreachable")
	c.JSON(http.StatusBadGateway, gatewayError{Error: msgConnectFailed})
}
