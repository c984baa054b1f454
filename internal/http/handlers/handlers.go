// Package handlers provides HTTP handler implementations for the public API.
//
// This file wires the handler set: it declares the service contracts the
// transport layer consumes and groups all endpoints behind one Handlers
// value so the router receives a single dependency.
//
// Handlers are transport-thin: they validate input, call application
// services or stores, and translate results into HTTP responses.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/planforge/render-backend/internal/domain"
	"github.com/planforge/render-backend/internal/progress"
	"github.com/planforge/render-backend/internal/services"
	"github.com/planforge/render-backend/internal/store"
	"github.com/planforge/render-backend/internal/utils"
)

// Submitter defines the submission workflow consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type Submitter interface {
	// Submit runs one render submission end to end and returns the stored
	// history record.
	Submit(ctx context.Context, req services.SubmitRequest) (domain.RenderResult, error)
}

// ProgressSource exposes the progress simulator's display state.
type ProgressSource interface {
	Snapshot() progress.Snapshot
}

// Handlers groups the HTTP endpoints for submissions, the rendering
// gateway, the persisted collections, and the library catalog.
type Handlers struct {
	submit   Submitter
	gateway  Gateway
	progress ProgressSource

	history  *store.HistoryStore
	images   *store.PublicImageStore
	versions *store.VersionStore
}

// New constructs a Handlers instance bound to the given collaborators.
func New(
	submit Submitter,
	gateway Gateway,
	prog ProgressSource,
	history *store.HistoryStore,
	images *store.PublicImageStore,
	versions *store.VersionStore,
) *Handlers {
	return &Handlers{
		submit:   submit,
		gateway:  gateway,
		progress: prog,
		history:  history,
		images:   images,
		versions: versions,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
