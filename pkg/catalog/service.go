// Package catalog combines the dataset store, identifier allocation and the
// filter engine into the operations offered by the API and the CLI.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/tomodb/pkg/catalog/filter"
	"github.com/mwantia/tomodb/pkg/catalog/ids"
	"github.com/mwantia/tomodb/pkg/dataset"
	"github.com/mwantia/tomodb/pkg/db/models"
	"github.com/mwantia/tomodb/pkg/db/store"
	"github.com/mwantia/tomodb/pkg/log"
)

var (
	// ErrInvalidID is returned for identifiers that do not have the configured prefix and width
	ErrInvalidID = errors.New("invalid dataset identifier")
	// ErrNotFound is returned when a dataset or saved filter does not exist
	ErrNotFound = store.ErrNotFound
)

// Repository is the part of the metadata store used by the catalog.
type Repository interface {
	ids.Source

	CreateDataset(ctx context.Context, dataset *models.Dataset) error
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	ListDatasets(ctx context.Context) ([]models.Dataset, error)

	CreateSavedFilter(ctx context.Context, filter *models.SavedFilter) error
	GetSavedFilter(ctx context.Context, name string) (*models.SavedFilter, error)
	ListSavedFilters(ctx context.Context) ([]models.SavedFilter, error)
	DeleteSavedFilter(ctx context.Context, name string) error
}

type Config struct {
	Pattern       ids.Pattern
	CreateRetries int
}

type Service struct {
	cfg       Config
	repo      Repository
	allocator *ids.Allocator
	log       log.LoggerService
	now       func() time.Time
}

func NewService(repo Repository, cfg Config, logger log.LoggerService) *Service {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.Pattern.Prefix == "" {
		cfg.Pattern = ids.DefaultPattern()
	}
	if cfg.CreateRetries < 0 {
		cfg.CreateRetries = 0
	}

	return &Service{
		cfg:       cfg,
		repo:      repo,
		allocator: ids.NewAllocator(cfg.Pattern, repo, logger.Named("ids")),
		log:       logger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Allocator exposes the identifier allocator, e.g. to attach failure observers.
func (s *Service) Allocator() *ids.Allocator {
	return s.allocator
}

func (s *Service) Pattern() ids.Pattern {
	return s.cfg.Pattern
}

// List loads every dataset, most recent first, and applies spec.
func (s *Service) List(ctx context.Context, spec filter.Spec) ([]dataset.Record, error) {
	records, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(records, spec), nil
}

func (s *Service) all(ctx context.Context) ([]dataset.Record, error) {
	rows, err := s.repo.ListDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return dataset.FromModels(rows), nil
}

// Options returns the distinct organisms, instruments and file types.
func (s *Service) Options(ctx context.Context) (filter.Options, error) {
	records, err := s.all(ctx)
	if err != nil {
		return filter.Options{}, err
	}
	return filter.CollectOptions(records), nil
}

func (s *Service) Get(ctx context.Context, id string) (dataset.Record, error) {
	if !s.cfg.Pattern.Accepts(id) {
		return dataset.Record{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	row, err := s.repo.GetDataset(ctx, id)
	if err != nil {
		return dataset.Record{}, fmt.Errorf("failed to get dataset %s: %w", id, err)
	}
	return dataset.FromModel(row), nil
}

// NextID returns the identifier the next Create would try first.
func (s *Service) NextID(ctx context.Context) string {
	return s.allocator.Next(ctx)
}

// Create stores a new dataset under a freshly allocated identifier. When the
// identifier was taken in the meantime a new one is allocated, up to
// CreateRetries more times.
func (s *Service) Create(ctx context.Context, record dataset.Record) (dataset.Record, error) {
	record.ApplyDefaults()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.CreateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return dataset.Record{}, err
		}

		if lastErr == nil {
			record.AssignID(s.allocator.Next(ctx))
		} else {
			record.AssignID(s.allocator.NextAfter(ctx, record.ID))
		}

		err := s.repo.CreateDataset(ctx, dataset.ToModel(record))
		if err == nil {
			s.log.Info("Dataset %s created", record.ID)
			return record, nil
		}
		if !errors.Is(err, store.ErrDuplicateID) {
			return dataset.Record{}, fmt.Errorf("failed to create dataset %s: %w", record.ID, err)
		}

		s.log.Warn("Identifier %s already taken (attempt %d), allocating again", record.ID, attempt+1)
		lastErr = err
	}

	return dataset.Record{}, fmt.Errorf("failed to create dataset after %d attempts: %w", s.cfg.CreateRetries+1, lastErr)
}

// Insert stores a record under its existing identifier, e.g. during import.
func (s *Service) Insert(ctx context.Context, record dataset.Record) error {
	if !s.cfg.Pattern.Accepts(record.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, record.ID)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}

	if err := s.repo.CreateDataset(ctx, dataset.ToModel(record)); err != nil {
		return fmt.Errorf("failed to insert dataset %s: %w", record.ID, err)
	}
	return nil
}

// All returns every dataset, most recent first.
func (s *Service) All(ctx context.Context) ([]dataset.Record, error) {
	return s.all(ctx)
}
