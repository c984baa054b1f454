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

// historyState is the persisted envelope for the render history collection:
// the ordered list (newest first) plus the current-result cursor.
type historyState struct {
	History       []domain.RenderResult `json:"history"`
	CurrentResult *domain.RenderResult  `json:"currentResult"`
}

// HistoryStore holds render results, newest first. Adding a result makes it
// the current one; removing the current result clears the cursor.
// Safe for concurrent use.
type HistoryStore struct {
	backend Backend

	mu    sync.Mutex
	state historyState

	// now is the clock used for timestamps; overridable in tests.
	now func() time.Time
}

// NewHistoryStore constructs the store and restores any previously
// persisted state. A backend that has never seen the namespace key yields
// an empty collection.
func NewHistoryStore(ctx context.Context, b Backend) (*HistoryStore, error) {
	s := &HistoryStore{backend: b, now: time.Now}
	raw, err := b.Load(ctx, HistoryKey)
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

// Add assigns a fresh id and timestamp to r, prepends it to the history,
// makes it the current result, and persists. The stored record is returned.
func (s *HistoryStore) Add(ctx context.Context, r domain.RenderResult) (domain.RenderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.NewString()
	r.Timestamp = s.now().UTC()

	next := historyState{
		History:       append([]domain.RenderResult{r}, s.state.History...),
		CurrentResult: &r,
	}
	if err := s.persist(ctx, next); err != nil {
		return domain.RenderResult{}, err
	}
	s.state = next
	return r, nil
}

// Remove filters out the record with the given id. If it was the current
// result, the cursor is cleared. Unknown ids are a no-op.
func (s *HistoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := historyState{CurrentResult: s.state.CurrentResult}
	found := false
	for _, r := range s.state.History {
		if r.ID == id {
			found = true
			continue
		}
		next.History = append(next.History, r)
	}
	if !found {
		return nil
	}
	if next.CurrentResult != nil && next.CurrentResult.ID == id {
		next.CurrentResult = nil
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// SetCurrent points the cursor at the record with the given id. An empty id
// clears the cursor; an unknown id is a no-op.
func (s *HistoryStore) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	if id == "" {
		next.CurrentResult = nil
	} else {
		var match *domain.RenderResult
		for i := range s.state.History {
			if s.state.History[i].ID == id {
				match = &s.state.History[i]
				break
			}
		}
		if match == nil {
			return nil
		}
		r := *match
		next.CurrentResult = &r
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// GetByID returns the record with the given id, or ok=false if absent.
func (s *HistoryStore) GetByID(id string) (domain.RenderResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.state.History {
		if r.ID == id {
			return r, true
		}
	}
	return domain.RenderResult{}, false
}

// List returns a copy of the history, newest first.
func (s *HistoryStore) List() []domain.RenderResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RenderResult, len(s.state.History))
	copy(out, s.state.History)
	return out
}

// Current returns the current result, or ok=false when the cursor is unset.
func (s *HistoryStore) Current() (domain.RenderResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentResult == nil {
		return domain.RenderResult{}, false
	}
	return *s.state.CurrentResult, true
}

// Clear empties the history and clears the cursor.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := historyState{}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *HistoryStore) persist(ctx context.Context, st historyState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, HistoryKey, raw)
}
