package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planforge/render-backend/internal/domain"
	"github.com/planforge/render-backend/internal/repo"
)

// publicImagesState is the persisted envelope for the public images
// collection. No cursor: the set is a plain newest-first list.
type publicImagesState struct {
	PublicImages []domain.PublicImage `json:"publicImages"`
}

// PublicImageStore holds user-supplied image URLs, newest first. URLs are
// unique within the collection; adding an existing URL is a no-op.
// Safe for concurrent use.
type PublicImageStore struct {
	backend Backend

	mu    sync.Mutex
	state publicImagesState

	now func() time.Time
}

// NewPublicImageStore constructs the store and restores any previously
// persisted state.
func NewPublicImageStore(ctx context.Context, b Backend) (*PublicImageStore, error) {
	s := &PublicImageStore{backend: b, now: time.Now}
	raw, err := b.Load(ctx, PublicImagesKey)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// first use
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(raw, &s.state); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add prepends a new image for url and persists. If the URL is already
// present the existing record is returned unchanged (idempotent add).
func (s *PublicImageStore) Add(ctx context.Context, url string) (domain.PublicImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, img := range s.state.PublicImages {
		if img.URL == url {
			return img, nil
		}
	}

	img := domain.PublicImage{
		ID:        uuid.NewString(),
		URL:       url,
		Timestamp: s.now().UTC(),
	}
	next := publicImagesState{
		PublicImages: append([]domain.PublicImage{img}, s.state.PublicImages...),
	}
	if err := s.persist(ctx, next); err != nil {
		return domain.PublicImage{}, err
	}
	s.state = next
	return img, nil
}

// Remove filters out the image with the given id. Unknown ids are a no-op.
func (s *PublicImageStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next publicImagesState
	found := false
	for _, img := range s.state.PublicImages {
		if img.ID == id {
			found = true
			continue
		}
		next.PublicImages = append(next.PublicImages, img)
	}
	if !found {
		return nil
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// List returns a copy of the collection, newest first.
func (s *PublicImageStore) List() []domain.PublicImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PublicImage, len(s.state.PublicImages))
	copy(out, s.state.PublicImages)
	return out
}

// Clear empties the collection.
func (s *PublicImageStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := publicImagesState{}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *PublicImageStore) persist(ctx context.Context, st publicImagesState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, PublicImagesKey, raw)
}
