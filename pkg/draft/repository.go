// Package draft persists unsubmitted form state so it can be recovered after
// the user navigates away.
package draft

import (
	"context"
	"errors"
	"sync"

	"github.com/mwantia/tomodb/pkg/db/models"
	"github.com/mwantia/tomodb/pkg/db/store"
)

// DefaultKey is the key under which the add-dataset form is saved.
const DefaultKey = "addDatasetFormDraft"

// Repository stores one opaque value per key.
type Repository interface {
	Save(ctx context.Context, key string, value []byte) error
	// Load returns false when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Clear(ctx context.Context, key string) error
}

type MemoryRepository struct {
	mutex  sync.RWMutex
	values map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		values: make(map[string][]byte),
	}
}

func (m *MemoryRepository) Save(ctx context.Context, key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryRepository) Clear(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.values, key)
	return nil
}

// DraftStore is the part of the metadata store holding drafts.
type DraftStore interface {
	SaveDraft(ctx context.Context, key, value string) error
	LoadDraft(ctx context.Context, key string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, key string) error
}

// StoreRepository keeps drafts in the metadata database.
type StoreRepository struct {
	store DraftStore
}

func NewStoreRepository(s DraftStore) *StoreRepository {
	return &StoreRepository{store: s}
}

func (r *StoreRepository) Save(ctx context.Context, key string, value []byte) error {
	return r.store.SaveDraft(ctx, key, string(value))
}

func (r *StoreRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	d, err := r.store.LoadDraft(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(d.Value), true, nil
}

func (r *StoreRepository) Clear(ctx context.Context, key string) error {
	return r.store.DeleteDraft(ctx, key)
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*StoreRepository)(nil)
)
