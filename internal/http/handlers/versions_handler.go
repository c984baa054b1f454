// Design version HTTP handlers.
//
// This file exposes REST endpoints for the named version collection:
//   - GET    /versions              (list, oldest first)
//   - POST   /versions              (create; becomes current)
//   - DELETE /versions/:id          (remove; cursor falls back to last)
//   - GET    /versions/current      (the current version)
//   - PUT    /versions/current/:id  (move the current-version cursor)
//
// The versions list is oldest-first on purpose, unlike history and public
// images; clients render it as a forward timeline.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CreateVersionRequest is the JSON payload for creating a version.
type CreateVersionRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListVersions returns the version collection and the current cursor.
func (h *Handlers) ListVersions(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"versions":         h.versions.List(),
		"currentVersionId": h.versions.CurrentID(),
	})
}

// CreateVersion appends a new named version; it becomes current.
func (h *Handlers) CreateVersion(c *gin.Context) {
	var req CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}

	v, err := h.versions.Add(c.Request.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, v)
}

// DeleteVersion removes one version; if it was current the cursor falls
// back to the last remaining version. Unknown ids succeed.
func (h *Handlers) DeleteVersion(c *gin.Context) {
	if err := h.versions.Remove(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// GetCurrentVersion returns the current version, or 404 when the cursor is
// unset.
func (h *Handlers) GetCurrentVersion(c *gin.Context) {
	id := h.versions.CurrentID()
	if id == "" {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no current version")
		return
	}
	v, found := h.versions.GetByID(id)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no current version")
		return
	}
	ok(c, http.StatusOK, v)
}

// SetCurrentVersion moves the current-version cursor. An unknown id is
// rejected with 404; the cursor is left unchanged.
func (h *Handlers) SetCurrentVersion(c *gin.Context) {
	id := c.Param("id")
	if _, found := h.versions.GetByID(id); !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "version not found")
		return
	}
	if err := h.versions.SetCurrent(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
