// Package repo implements the durable key-value layer backing the persisted
// collections store. Each logical collection (render history, public images,
// versions) is stored whole as one JSON document under a fixed namespace
// key, mirroring the browser localStorage layout this service replaced.
//
// Error semantics:
//   - Load returns ErrNotFound when the key has never been written.
//   - Save upserts and is durable before it returns: a reload of the
//     process observes the updated document.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested key does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the store layer.
var ErrNotFound = gorm.ErrRecordNotFound

// KVEntry is one persisted collection document.
//
// Fields:
//   - Key: the collection namespace key (primary key).
//   - Value: the JSON document holding the collection list plus any cursor.
//   - UpdatedAt: last write time, managed by GORM.
type KVEntry struct {
	Key       string    `json:"key"        gorm:"type:varchar(128);primaryKey"`
	Value     []byte    `json:"value"      gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for KVEntry.
func (KVEntry) TableName() string { return "kv_entries" }

// KVStore is the GORM-backed implementation of the persistence backend
// consumed by the store package. It is safe for concurrent use; SQLite
// serializes writers underneath.
type KVStore struct {
	DB *gorm.DB
}

// NewKVStore constructs a KVStore over an opened GORM handle.
func NewKVStore(db *gorm.DB) *KVStore { return &KVStore{DB: db} }

// Load returns the document stored under key, or ErrNotFound if the key
// has never been written. On other DB errors, the raw error is returned.
func (s *KVStore) Load(ctx context.Context, key string) ([]byte, error) {
	var e KVEntry
	err := s.DB.WithContext(ctx).First(&e, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

// Save upserts the document under key. The write is fully applied before
// Save returns; there are no partially written documents observable.
func (s *KVStore) Save(ctx context.Context, key string, value []byte) error {
	e := KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}
