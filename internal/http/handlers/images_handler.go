// Public image HTTP handlers.
//
// This file exposes REST endpoints for the user's reusable image list:
//   - GET    /public-images      (list, newest first)
//   - POST   /public-images      (add a URL; idempotent per URL)
//   - DELETE /public-images/:id  (remove)
//
// Also here: GET /library, the curated read-only floor-plan catalog.
package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planforge/render-backend/internal/domain"
)

// AddPublicImageRequest is the JSON payload for adding a public image.
type AddPublicImageRequest struct {
	URL string `json:"url" binding:"required"`
}

// ListPublicImages returns the public image collection, newest first.
func (h *Handlers) ListPublicImages(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"publicImages": h.images.List()})
}

// AddPublicImage stores a new image URL. Adding an already-present URL is a
// no-op that returns the existing record with 200 instead of 201.
func (h *Handlers) AddPublicImage(c *gin.Context) {
	var req AddPublicImageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "url required")
		return
	}
	raw := strings.TrimSpace(req.URL)
	if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "url must be absolute http(s)")
		return
	}

	existing := findImageByURL(h.images.List(), raw)

	img, err := h.images.Add(c.Request.Context(), raw)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	if existing != nil {
		ok(c, http.StatusOK, img)
		return
	}
	ok(c, http.StatusCreated, img)
}

// DeletePublicImage removes one image. Unknown ids succeed.
func (h *Handlers) DeletePublicImage(c *gin.Context) {
	if err := h.images.Remove(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ListLibrary returns the curated floor-plan catalog.
func (h *Handlers) ListLibrary(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"images": domain.LibraryImages})
}

func findImageByURL(imgs []domain.PublicImage, url string) *domain.PublicImage {
	for i := range imgs {
		if imgs[i].URL == url {
			return &imgs[i]
		}
	}
	return nil
}
