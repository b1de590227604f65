package models

import "time"

// Draft holds an unsubmitted form state, encoded as JSON
type Draft struct {
	Key   string `gorm:"primaryKey;type:text"`
	Value string `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
