package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetFileAssignment pins one user to one specific revision of a version
// group, overriding the default latest-version resolution. At most one
// active row may exist per (user, version group) pair; reverting deletes
// the row instead of archiving it.
type AssetFileAssignment struct {
	ID             string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID         string         `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_user_group" json:"userId" validate:"required,uuid"`
	User           *User          `json:"user,omitempty"`
	AssetFileID    string         `gorm:"type:uuid;not null" json:"assetFileId" validate:"required,uuid"`
	AssetFile      *AssetFile     `json:"assetFile,omitempty"`
	VersionGroupID VersionGroupID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_user_group" json:"versionGroupId" validate:"required,uuid"`
	AssignedBy     string         `gorm:"type:uuid" json:"assignedBy"`
	AssignedAt     time.Time      `json:"assignedAt"`
}

func (a *AssetFileAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	return nil
}
