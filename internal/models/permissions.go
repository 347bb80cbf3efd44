package models

import (
	"fmt"
	"time"
)

// Permission is a module-level capability. Role permissions are combined
// into MODULE_ACTION codes and embedded in the session token at login.
type Permission struct {
	Base
	Module string `gorm:"not null;uniqueIndex:idx_permission_module_action" json:"module"`
	Action string `gorm:"not null;uniqueIndex:idx_permission_module_action" json:"action"`
}

// Code returns the permission code carried in token claims, e.g. USERS_MANAGE.
func (p Permission) Code() string {
	return fmt.Sprintf("%s_%s", p.Module, p.Action)
}

type Role struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

// RolePermission links a role to a module permission. A role's effective
// permission set is the union of its rows; the Admin role carries none
// because it bypasses the check entirely.
type RolePermission struct {
	RoleID       string      `gorm:"type:uuid;primaryKey" json:"roleId"`
	PermissionID string      `gorm:"type:uuid;primaryKey" json:"permissionId"`
	Role         *Role       `json:"role,omitempty"`
	Permission   *Permission `json:"permission,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// AssetPermission is the finer-grained second authorization axis: a
// per-resource-type CRUD capability granted directly to users. READ rows
// are never created because reading is implicit for authenticated users.
type AssetPermission struct {
	Base
	ResourceType   ResourceType `gorm:"not null;uniqueIndex:idx_asset_permission_rt_action" json:"resourceType"`
	Action         AssetAction  `gorm:"not null;uniqueIndex:idx_asset_permission_rt_action" json:"action"`
	PermissionCode string       `gorm:"not null" json:"permissionCode"`
}

// UserAssetPermission grants an asset permission to a user independently
// of the role system. Looked up live at request time, never cached in the
// token.
type UserAssetPermission struct {
	Base
	UserID            string           `gorm:"type:uuid;not null;uniqueIndex:idx_user_asset_permission" json:"userId"`
	User              *User            `json:"user,omitempty"`
	AssetPermissionID string           `gorm:"type:uuid;not null;uniqueIndex:idx_user_asset_permission" json:"assetPermissionId"`
	AssetPermission   *AssetPermission `json:"assetPermission,omitempty"`
}
