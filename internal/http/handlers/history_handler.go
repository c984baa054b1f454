// Render history HTTP handlers.
//
// This file exposes REST endpoints for the render history collection:
//   - GET    /history              (list, newest first, paginated)
//   - GET    /history/current      (the current result)
//   - GET    /history/:id          (one record)
//   - PUT    /history/current/:id  (move the current-result cursor)
//   - DELETE /history/:id          (remove one record)
//   - DELETE /history              (clear the collection)
//
// The store itself enforces the cursor rules (removing the current record
// clears the cursor, unknown ids are no-ops); handlers only translate.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planforge/render-backend/internal/domain"
)

// ListHistoryResponse wraps a page of history records and pagination
// information.
type ListHistoryResponse struct {
	History    []domain.RenderResult `json:"history"`
	Pagination Pagination            `json:"pagination"`
}

// ListHistory returns a page of render history, newest first.
func (h *Handlers) ListHistory(c *gin.Context) {
	page, pageSize := clampPagination(c)

	all := h.history.List()
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	ok(c, http.StatusOK, ListHistoryResponse{
		History: all[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetCurrentResult returns the current render result, or 404 when the
// cursor is unset.
func (h *Handlers) GetCurrentResult(c *gin.Context) {
	cur, found := h.history.Current()
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no current result")
		return
	}
	ok(c, http.StatusOK, cur)
}

// GetHistoryEntry returns one history record by id.
func (h *Handlers) GetHistoryEntry(c *gin.Context) {
	rec, found := h.history.GetByID(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "history entry not found")
		return
	}
	ok(c, http.StatusOK, rec)
}

// SetCurrentResult moves the current-result cursor to the given id. An
// unknown id is rejected so clients learn their view is stale.
func (h *Handlers) SetCurrentResult(c *gin.Context) {
	id := c.Param("id")
	if _, found := h.history.GetByID(id); !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "history entry not found")
		return
	}
	if err := h.history.SetCurrent(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// DeleteHistoryEntry removes one history record. Removing the current
// record clears the cursor; unknown ids succeed (the record is gone either
// way).
func (h *Handlers) DeleteHistoryEntry(c *gin.Context) {
	if err := h.history.Remove(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ClearHistory empties the history collection and clears its cursor.
func (h *Handlers) ClearHistory(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
