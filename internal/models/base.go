package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool      `json:"isDeleted" default:"false"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// AudienceLevel is the visibility tier on a file, independent of the
// CRUD permission model.
type AudienceLevel string

const (
	AudienceInternal AudienceLevel = "INTERNAL"
	AudiencePartner  AudienceLevel = "PARTNER"
	AudienceEndUser  AudienceLevel = "END_USER"
)

// IsValidAudienceLevel checks if a given audience level is valid
func IsValidAudienceLevel(level AudienceLevel) bool {
	switch level {
	case AudienceInternal, AudiencePartner, AudienceEndUser:
		return true
	default:
		return false
	}
}

// RoleAdmin is the distinguished role that bypasses every permission
// check. It is matched by name, not by a stored permission set.
const RoleAdmin = "ADMIN"

// ResourceType identifies which level of the asset hierarchy an asset
// permission applies to.
type ResourceType string

const (
	ResourceBusinessUnit ResourceType = "BUSINESS_UNIT"
	ResourceProduct      ResourceType = "PRODUCT"
	ResourceFolder       ResourceType = "FOLDER"
	ResourceFile         ResourceType = "FILE"
)

// AssetAction is a CRUD action on an asset resource. READ is never stored
// as a grant because every authenticated user may read.
type AssetAction string

const (
	ActionCreate AssetAction = "CREATE"
	ActionRead   AssetAction = "READ"
	ActionUpdate AssetAction = "UPDATE"
	ActionDelete AssetAction = "DELETE"
)

// IsValidResourceType checks if a given resource type is valid
func IsValidResourceType(rt ResourceType) bool {
	switch rt {
	case ResourceBusinessUnit, ResourceProduct, ResourceFolder, ResourceFile:
		return true
	default:
		return false
	}
}
