package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/tomodb/pkg/db/migrations"
	"github.com/mwantia/tomodb/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

var _ MetadataStore = (*SQLiteStore)(nil)

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// ParseLogLevel maps a configured name onto a GORM log level
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn", "warning":
		return logger.Warn
	case "info", "debug":
		return logger.Info
	default:
		return logger.Silent
	}
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg.Path)), &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_pragma=foreign_keys(1)"
	}
	return path + "?_pragma=foreign_keys(1)"
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs pending versioned migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.Migrator().Migrate(ctx)
	return err
}

// Migrator gives access to schema status and rollback.
func (s *SQLiteStore) Migrator() *migrations.Migrator {
	return migrations.NewMigrator(s.db)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// translate maps driver errors onto the store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"),
		strings.Contains(err.Error(), "PRIMARY KEY constraint"):
		return fmt.Errorf("%w: %v", ErrDuplicateID, err)
	default:
		return err
	}
}

// Dataset operations

// CreateDataset inserts a dataset together with its file types. Identifiers of
// soft-deleted datasets remain taken.
func (s *SQLiteStore) CreateDataset(ctx context.Context, dataset *models.Dataset) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&models.Dataset{}).Where("id = ?", dataset.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, dataset.ID)
		}

		for i := range dataset.FileTypes {
			dataset.FileTypes[i].Position = i
		}
		return tx.Create(dataset).Error
	})
	if errors.Is(err, ErrDuplicateID) {
		return err
	}
	return translate(err)
}

func (s *SQLiteStore) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := s.db.WithContext(ctx).
		Preload("FileTypes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&dataset).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dataset, nil
}

// ListDatasets returns all datasets, most recent first
func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	var datasets []models.Dataset
	err := s.db.WithContext(ctx).
		Preload("FileTypes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Find(&datasets).Error
	return datasets, err
}

// ListDatasetIDs returns every identifier ever assigned, including soft-deleted rows
func (s *SQLiteStore) ListDatasetIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Unscoped().
		Model(&models.Dataset{}).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *SQLiteStore) DatasetExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Dataset{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// Draft operations

func (s *SQLiteStore) SaveDraft(ctx context.Context, key, value string) error {
	draft := models.Draft{Key: key, Value: value}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&draft).Error
}

func (s *SQLiteStore) LoadDraft(ctx context.Context, key string) (*models.Draft, error) {
	var draft models.Draft
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&draft).Error
	if err != nil {
		return nil, translate(err)
	}
	return &draft, nil
}

func (s *SQLiteStore) DeleteDraft(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Draft{}).Error
}

// Saved filter operations

func (s *SQLiteStore) CreateSavedFilter(ctx context.Context, filter *models.SavedFilter) error {
	return translate(s.db.WithContext(ctx).Create(filter).Error)
}

func (s *SQLiteStore) GetSavedFilter(ctx context.Context, name string) (*models.SavedFilter, error) {
	var filter models.SavedFilter
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&filter).Error
	if err != nil {
		return nil, translate(err)
	}
	return &filter, nil
}

func (s *SQLiteStore) ListSavedFilters(ctx context.Context) ([]models.SavedFilter, error) {
	var filters []models.SavedFilter
	err := s.db.WithContext(ctx).Order("name ASC").Find(&filters).Error
	return filters, err
}

// DeleteSavedFilter removes the filter permanently so the name can be reused
func (s *SQLiteStore) DeleteSavedFilter(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).Unscoped().Where("name = ?", name).Delete(&models.SavedFilter{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
