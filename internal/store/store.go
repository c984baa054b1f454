// Package store implements the persisted collections store: durable,
// namespaced, ordered lists of records (render history, public images,
// design versions) that survive process restarts.
//
// Each collection keeps its full state in memory and writes it whole as one
// JSON document to an injected persistence backend on every mutation. The
// write completes before the mutating call returns, so a reload of the
// process always observes the latest state. Mutations are atomic from the
// caller's perspective: the new state is persisted first and only then
// swapped in, so a failed write leaves both memory and disk untouched.
//
// All operations are total over valid inputs. Unknown or malformed ids on
// Remove/GetByID/SetCurrent find nothing and are treated as no-ops or
// "not found", never errors.
//
// The three collections deliberately differ in insertion order: history and
// public images prepend (newest first) while versions append (oldest
// first). This mirrors the observed behavior of the system this replaces
// and is pinned by tests.
package store

import "context"

// Namespace keys, one per collection. The names are retained from the
// original client-side storage layout so existing exported documents stay
// readable.
const (
	HistoryKey      = "render-history-storage"
	PublicImagesKey = "public-images-storage"
	VersionsKey     = "version-storage"
)

// Backend is the durable key-value persistence contract the collections
// are built on. Implementations must make Save durable before returning.
type Backend interface {
	// Load returns the document stored under key, or an error for which
	// IsNotFound-style handling applies when the key was never written.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the document under key.
	Save(ctx context.Context, key string, value []byte) error
}
