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

// versionsState is the persisted envelope for the versions collection: the
// ordered list (oldest first, unlike the other two collections) plus the
// current-version cursor. The cursor, when non-empty, always resolves to an
// existing record.
type versionsState struct {
	Versions         []domain.Version `json:"versions"`
	CurrentVersionID string           `json:"currentVersionId"`
}

// VersionStore holds named design versions, oldest first. Adding a version
// makes it current; removing the current version falls back to the new last
// element, or clears the cursor when none remain. Safe for concurrent use.
type VersionStore struct {
	backend Backend

	mu    sync.Mutex
	state versionsState

	now func() time.Time
}

// NewVersionStore constructs the store and restores any previously
// persisted state.
func NewVersionStore(ctx context.Context, b Backend) (*VersionStore, error) {
	s := &VersionStore{backend: b, now: time.Now}
	raw, err := b.Load(ctx, VersionsKey)
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

// Add appends a new version with the given name, makes it current, and
// persists. The stored record is returned.
func (s *VersionStore) Add(ctx context.Context, name string) (domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := domain.Version{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	next := versionsState{
		Versions:         append(append([]domain.Version{}, s.state.Versions...), v),
		CurrentVersionID: v.ID,
	}
	if err := s.persist(ctx, next); err != nil {
		return domain.Version{}, err
	}
	s.state = next
	return v, nil
}

// Remove filters out the version with the given id. If it was current, the
// cursor falls back to the new last remaining version, or is cleared when
// none remain. Unknown ids are a no-op.
func (s *VersionStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := versionsState{CurrentVersionID: s.state.CurrentVersionID}
	found := false
	for _, v := range s.state.Versions {
		if v.ID == id {
			found = true
			continue
		}
		next.Versions = append(next.Versions, v)
	}
	if !found {
		return nil
	}
	if next.CurrentVersionID == id {
		if n := len(next.Versions); n > 0 {
			next.CurrentVersionID = next.Versions[n-1].ID
		} else {
			next.CurrentVersionID = ""
		}
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// SetCurrent points the cursor at the version with the given id. An id that
// does not resolve to an existing record is silently ignored.
func (s *VersionStore) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists := false
	for _, v := range s.state.Versions {
		if v.ID == id {
			exists = true
			break
		}
	}
	if !exists {
		return nil
	}

	next := s.state
	next.CurrentVersionID = id
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// GetByID returns the version with the given id, or ok=false if absent.
func (s *VersionStore) GetByID(id string) (domain.Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.state.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return domain.Version{}, false
}

// List returns a copy of the collection, oldest first.
func (s *VersionStore) List() []domain.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Version, len(s.state.Versions))
	copy(out, s.state.Versions)
	return out
}

// CurrentID returns the current version id, or "" when the cursor is unset.
func (s *VersionStore) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentVersionID
}

// Clear empties the collection and clears its cursor.
func (s *VersionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := versionsState{}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *VersionStore) persist(ctx context.Context, st versionsState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, VersionsKey, raw)
}
