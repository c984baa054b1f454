// Package upstream implements the HTTP client for the external rendering
// gateway. Renders routinely run for minutes, so the client is built around
// a single long-timeout http.Client; per-call deadlines can still be
// tightened through the request context.
//
// Error discrimination matters to callers: a transport failure (DNS,
// refused connection, timeout) is returned as a wrapped error, whereas a
// non-2xx reply from the gateway becomes a *ServiceError carrying the
// status code and the verbatim response body so handlers can relay it.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var (
	// upstreamCalls counts gateway calls by target and outcome
	// ("ok", "service_error", "transport_error").
	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_calls_total",
			Help: "Total number of calls to the rendering gateway.",
		},
		[]string{"target", "outcome"},
	)

	// upstreamLat records call duration in seconds by target. Buckets are
	// wide: renders run for minutes.
	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_duration_seconds",
			Help:    "Duration of rendering gateway calls in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(upstreamCalls, upstreamLat)
}

// ErrUnreachable wraps transport-level failures (DNS, refused connection,
// timeout) so callers can distinguish "could not reach the gateway" from a
// gateway-reported error.
var ErrUnreachable = errors.New("rendering service unreachable")

// ServiceError is a non-2xx reply from the rendering gateway. Status is the
// HTTP status code; Body is the response body verbatim (may be empty).
type ServiceError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("Service returned %d", e.Status)
}

// AsServiceError unwraps err into a *ServiceError when it is one.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Client calls the rendering gateway. The zero value is not usable;
// construct with New.
type Client struct {
	// RenderURL is the still-image rendering endpoint.
	RenderURL string
	// VideoURL is the video walkthrough endpoint; empty when the
	// deployment has no video backend.
	VideoURL string

	// HTTP is the underlying client. Its timeout bounds the whole call.
	HTTP *http.Client

	// Log is used for per-call diagnostics.
	Log zerolog.Logger
}

// New constructs a Client with the given endpoints and call timeout.
func New(renderURL, videoURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		RenderURL: renderURL,
		VideoURL:  videoURL,
		HTTP:      &http.Client{Timeout: timeout},
		Log:       log,
	}
}

// Render posts the payload to the rendering endpoint and returns the
// gateway's JSON response verbatim.
func (c *Client) Render(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.post(ctx, "render", c.RenderURL, payload)
}

// VideoWalkthrough posts the payload to the video endpoint. Returns an
// error when no video endpoint is configured.
func (c *Client) VideoWalkthrough(ctx context.Context, payload any) (json.RawMessage, error) {
	if c.VideoURL == "" {
		return nil, errors.New("video endpoint not configured")
	}
	return c.post(ctx, "video", c.VideoURL, payload)
}

// post performs one JSON-in/JSON-out call and records metrics for it.
func (c *Client) post(ctx context.Context, target, url string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	dur := time.Since(start)
	upstreamLat.WithLabelValues(target).Observe(dur.Seconds())
	if err != nil {
		upstreamCalls.WithLabelValues(target, "transport_error").Inc()
		c.Log.Error().Err(err).Str("target", target).Dur("duration", dur).Msg("gateway call failed")
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		upstreamCalls.WithLabelValues(target, "transport_error").Inc()
		return nil, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamCalls.WithLabelValues(target, "service_error").Inc()
		c.Log.Warn().Int("status", resp.StatusCode).Str("target", target).Dur("duration", dur).Msg("gateway returned error status")
		return nil, &ServiceError{Status: resp.StatusCode, Body: string(raw)}
	}

	upstreamCalls.WithLabelValues(target, "ok").Inc()
	c.Log.Info().Int("status", resp.StatusCode).Str("target", target).Dur("duration", dur).Msg("gateway call succeeded")
	return json.RawMessage(raw), nil
}
