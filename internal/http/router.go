// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
//
// Two route families coexist:
//   - /api/render and /api/video-walkthrough: the rendering gateway, a fixed
//     external contract mounted at the root regardless of APIBasePath
//   - the versioned JSON API under cfg.APIBasePath (submissions, progress,
//     history, public images, versions, library)
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/planforge/render-backend/internal/config"
	"github.com/planforge/render-backend/internal/http/handlers"
	"github.com/planforge/render-backend/internal/http/middleware"
	"github.com/planforge/render-backend/internal/progress"
	"github.com/planforge/render-backend/internal/services"
	"github.com/planforge/render-backend/internal/store"
	"github.com/planforge/render-backend/internal/upstream"
)

// Dependencies carries the long-lived collaborators the router binds the
// HTTP endpoints to. All fields are required.
type Dependencies struct {
	// History, Images, Versions are the persisted collections.
	History  *store.HistoryStore
	Images   *store.PublicImageStore
	Versions *store.VersionStore

	// Gateway is the rendering service client.
	Gateway *upstream.Client

	// Progress is the perceived-progress simulator shared between the
	// submission workflow and the progress feed.
	Progress *progress.Simulator

	// Log is the base logger for the service layer.
	Log zerolog.Logger
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression and
// rate limiting, CORS and security headers, health and metrics endpoints,
// then mounts the gateway endpoints at the root and the versioned public API
// under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per user/IP; progress polling is marked for bypass)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps Dependencies, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses; history pages and the library catalog are
	// repetitive JSON.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP. The progress feed is polled
	// several times a second, so it bypasses the bucket.
	r.Use(middleware.MarkRateBypass(joinBase(cfg.APIBasePath, "/progress")))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← stores/gateway/simulator
	submitSvc := services.NewSubmitService(deps.Gateway, deps.History, deps.Progress, deps.Log)
	h := handlers.New(submitSvc, deps.Gateway, deps.Progress, deps.History, deps.Images, deps.Versions)

	// Rendering gateway (fixed contract, mounted at the root)
	r.POST("/api/render", h.Render)
	r.OPTIONS("/api/render", h.RenderPreflight)
	r.POST("/api/video-walkthrough", h.VideoWalkthrough)
	r.OPTIONS("/api/video-walkthrough", h.RenderPreflight)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Submissions and progress
		api.POST("/submissions", h.CreateSubmission)
		api.GET("/progress", h.GetProgress)

		// Render history
		api.GET("/history", h.ListHistory)
		api.GET("/history/current", h.GetCurrentResult)
		api.GET("/history/:id", h.GetHistoryEntry)
		api.PUT("/history/current/:id", h.SetCurrentResult)
		api.DELETE("/history/:id", h.DeleteHistoryEntry)
		api.DELETE("/history", h.ClearHistory)

		// Public images
		api.GET("/public-images", h.ListPublicImages)
		api.POST("/public-images", h.AddPublicImage)
		api.DELETE("/public-images/:id", h.DeletePublicImage)

		// Versions
		api.GET("/versions", h.ListVersions)
		api.POST("/versions", h.CreateVersion)
		api.DELETE("/versions/:id", h.DeleteVersion)
		api.GET("/versions/current", h.GetCurrentVersion)
		api.PUT("/versions/current/:id", h.SetCurrentVersion)

		// Library catalog
		api.GET("/library", h.ListLibrary)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinBase joins the API base path and a route suffix into the registered
// route form ("/api/v1" + "/progress" → "/api/v1/progress").
func joinBase(base, suffix string) string {
	if base == "" || base == "/" {
		return suffix
	}
	return strings.TrimSuffix(base, "/") + suffix
}
