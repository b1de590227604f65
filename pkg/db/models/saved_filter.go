package models

import (
	"time"

	"gorm.io/gorm"
)

// SavedFilter represents a named catalog search
type SavedFilter struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:text;not null;uniqueIndex"`
	Query       string `gorm:"type:text;not null"` // e.g., "q=cholerae&organism=Vibrio+cholerae&tags=.mrc"
	Description string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
