package store

import (
	"context"
	"errors"

	"github.com/mwantia/tomodb/pkg/db/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when a primary key or unique name is already taken
	ErrDuplicateID = errors.New("identifier already exists")
)

// MetadataStore defines the interface for database operations
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Dataset operations
	CreateDataset(ctx context.Context, dataset *models.Dataset) error
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	ListDatasets(ctx context.Context) ([]models.Dataset, error)
	ListDatasetIDs(ctx context.Context) ([]string, error)
	DatasetExists(ctx context.Context, id string) (bool, error)

	// Draft operations
	SaveDraft(ctx context.Context, key, value string) error
	LoadDraft(ctx context.Context, key string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, key string) error

	// Saved filter operations
	CreateSavedFilter(ctx context.Context, filter *models.SavedFilter) error
	GetSavedFilter(ctx context.Context, name string) (*models.SavedFilter, error)
	ListSavedFilters(ctx context.Context) ([]models.SavedFilter, error)
	DeleteSavedFilter(ctx context.Context, name string) error
}
