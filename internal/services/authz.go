package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"assetvault/internal/models"
	"assetvault/internal/utils"
)

// Decision is the outcome of one authorization check. The tagged form
// keeps the evaluation order observable: a deny always names its step,
// though handlers only ever surface a generic message.
type Decision struct {
	allowed bool
	reason  string
}

func Allow() Decision {
	return Decision{allowed: true}
}

func Deny(reason string) Decision {
	return Decision{allowed: false, reason: reason}
}

func (d Decision) Allowed() bool { return d.allowed }

func (d Decision) Reason() string { return d.reason }

// AuthorizationEngine combines the two permission axes: role-derived
// module permissions carried in the token, and per-user asset grants
// looked up live. The Admin role short-circuits both.
type AuthorizationEngine struct {
	db *gorm.DB
}

func NewAuthorizationEngine(db *gorm.DB) *AuthorizationEngine {
	return &AuthorizationEngine{db: db}
}

// CheckModule gates general (non-asset) operations on a MODULE_ACTION
// code embedded in the token at login.
func (e *AuthorizationEngine) CheckModule(claims *utils.Claims, code string) Decision {
	if claims == nil {
		return Deny("no authenticated principal")
	}
	if claims.IsAdmin() {
		return Allow()
	}
	if claims.HasPermission(code) {
		return Allow()
	}
	return Deny(fmt.Sprintf("missing module permission %s", code))
}

// CheckAsset gates asset CRUD. READ is granted to every authenticated
// principal; CREATE/UPDATE/DELETE need a live UserAssetPermission grant,
// which is deliberately not cached in the token because grants are
// revoked more dynamically than roles.
func (e *AuthorizationEngine) CheckAsset(ctx context.Context, claims *utils.Claims, resourceType models.ResourceType, action models.AssetAction) Decision {
	if claims == nil {
		return Deny("no authenticated principal")
	}
	if action == models.ActionRead {
		return Allow()
	}
	if claims.IsAdmin() {
		return Allow()
	}

	var count int64
	err := e.db.WithContext(ctx).
		Table("user_asset_permissions uap").
		Joins("JOIN asset_permissions ap ON ap.id = uap.asset_permission_id").
		Where("uap.user_id = ? AND uap.is_deleted = ? AND ap.resource_type = ? AND ap.action = ?",
			claims.UserID, false, resourceType, action).
		Count(&count).Error
	if err != nil {
		return Deny(fmt.Sprintf("asset permission lookup failed: %v", err))
	}
	if count == 0 {
		return Deny(fmt.Sprintf("missing asset permission %s_%s", resourceType, action))
	}
	return Allow()
}

// ModulePermissionCodes resolves the MODULE_ACTION codes for a role, used
// at login time to build the token's permission set.
func (e *AuthorizationEngine) ModulePermissionCodes(ctx context.Context, roleID string) ([]string, error) {
	var permissions []models.Permission
	err := e.db.WithContext(ctx).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ?", roleID).
		Find(&permissions).Error
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(permissions))
	for _, p := range permissions {
		codes = append(codes, p.Code())
	}
	return codes, nil
}

// ReplaceRolePermissions swaps a role's module permission set atomically:
// delete all rows, then bulk-insert the new set. A partial update is a
// correctness violation, so any failure rolls the whole swap back.
func (e *AuthorizationEngine) ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("id = ? AND is_deleted = ?", roleID, false).First(&role).Error; err != nil {
			return ErrNotFound
		}

		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		if len(permissionIDs) == 0 {
			return nil
		}

		rows := make([]models.RolePermission, 0, len(permissionIDs))
		for _, pid := range permissionIDs {
			var permission models.Permission
			if err := tx.Where("id = ?", pid).First(&permission).Error; err != nil {
				return fmt.Errorf("unknown permission %s: %w", pid, err)
			}
			rows = append(rows, models.RolePermission{RoleID: roleID, PermissionID: pid})
		}
		return tx.Create(&rows).Error
	})
}

// ReplaceUserAssetPermissions swaps a user's direct asset grants in one
// transaction, mirroring the role replace-all semantics.
func (e *AuthorizationEngine) ReplaceUserAssetPermissions(ctx context.Context, userID string, permissionIDs []string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return ErrNotFound
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.UserAssetPermission{}).Error; err != nil {
			return err
		}

		if len(permissionIDs) == 0 {
			return nil
		}

		rows := make([]models.UserAssetPermission, 0, len(permissionIDs))
		for _, pid := range permissionIDs {
			var permission models.AssetPermission
			if err := tx.Where("id = ?", pid).First(&permission).Error; err != nil {
				return fmt.Errorf("unknown asset permission %s: %w", pid, err)
			}
			rows = append(rows, models.UserAssetPermission{UserID: userID, AssetPermissionID: pid})
		}
		return tx.Create(&rows).Error
	})
}

// ListUserAssetPermissions returns a user's direct grants with the
// permission rows preloaded.
func (e *AuthorizationEngine) ListUserAssetPermissions(ctx context.Context, userID string) ([]models.UserAssetPermission, error) {
	var grants []models.UserAssetPermission
	err := e.db.WithContext(ctx).
		Preload("AssetPermission").
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Find(&grants).Error
	return grants, err
}
