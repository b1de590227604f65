// Package migrations versions the catalog schema.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/tomodb/pkg/db/models"
	"gorm.io/gorm"
)

// ErrNothingApplied is returned by Rollback on a schema without history.
var ErrNothingApplied = errors.New("no applied migrations")

// Migration is one schema step. Down must undo exactly what Up created.
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

type migrationHistory struct {
	ID          uint      `gorm:"primaryKey"`
	Version     int       `gorm:"uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	AppliedAt   time.Time `gorm:"autoCreateTime"`
}

// Status describes a known migration. AppliedAt is zero while it is pending.
type Status struct {
	Version     int       `json:"version"     yaml:"version"`
	Description string    `json:"description" yaml:"description"`
	AppliedAt   time.Time `json:"applied_at"  yaml:"applied_at"`
}

func (s Status) Applied() bool {
	return !s.AppliedAt.IsZero()
}

type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: allMigrations(),
	}
}

func (m *Migrator) history(ctx context.Context) (map[int]migrationHistory, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&migrationHistory{}); err != nil {
		return nil, fmt.Errorf("failed to create migration history table: %w", err)
	}

	var rows []migrationHistory
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}

	applied := make(map[int]migrationHistory, len(rows))
	for _, row := range rows {
		applied[row.Version] = row
	}
	return applied, nil
}

// Migrate applies every pending migration in version order and returns how
// many were applied. Each migration runs in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	applied, err := m.history(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, migration := range m.migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationHistory{
				Version:     migration.Version,
				Description: migration.Description,
			}).Error
		})
		if err != nil {
			return count, fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
		count++
	}
	return count, nil
}

// Rollback reverts the most recently applied migration and returns it.
func (m *Migrator) Rollback(ctx context.Context) (Status, error) {
	applied, err := m.history(ctx)
	if err != nil {
		return Status{}, err
	}

	var last *migrationHistory
	for version, row := range applied {
		if last == nil || version > last.Version {
			last = &row
		}
	}
	if last == nil {
		return Status{}, ErrNothingApplied
	}

	idx := -1
	for i := range m.migrations {
		if m.migrations[i].Version == last.Version {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Status{}, fmt.Errorf("applied migration %d is unknown to this build", last.Version)
	}
	migration := m.migrations[idx]

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Down(tx); err != nil {
			return err
		}
		return tx.Delete(last).Error
	})
	if err != nil {
		return Status{}, fmt.Errorf("rollback of migration %d failed: %w", migration.Version, err)
	}

	return Status{
		Version:     migration.Version,
		Description: migration.Description,
		AppliedAt:   last.AppliedAt,
	}, nil
}

// Status lists every known migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	applied, err := m.history(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(m.migrations))
	for _, migration := range m.migrations {
		statuses = append(statuses, Status{
			Version:     migration.Version,
			Description: migration.Description,
			AppliedAt:   applied[migration.Version].AppliedAt,
		})
	}
	return statuses, nil
}

// allMigrations returns all migrations in order
func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Initial catalog schema",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.Dataset{},
					&models.FileType{},
					&models.Draft{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.Draft{},
					&models.FileType{},
					&models.Dataset{},
				)
			},
		},
		{
			Version:     2,
			Description: "Saved catalog filters",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.SavedFilter{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.SavedFilter{})
			},
		},
	}
}
