package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"assetvault/internal/models"
	"assetvault/internal/utils"
)

func seedModulePermission(t *testing.T, conn *gorm.DB, module, action string) *models.Permission {
	t.Helper()
	p := &models.Permission{Module: module, Action: action}
	require.NoError(t, conn.Create(p).Error)
	return p
}

func seedAssetPermission(t *testing.T, conn *gorm.DB, rt models.ResourceType, action models.AssetAction) *models.AssetPermission {
	t.Helper()
	p := &models.AssetPermission{
		ResourceType:   rt,
		Action:         action,
		PermissionCode: string(rt) + "_" + string(action),
	}
	require.NoError(t, conn.Create(p).Error)
	return p
}

func TestCheckModule(t *testing.T) {
	engine := NewAuthorizationEngine(openTestDB(t))

	tests := []struct {
		name    string
		claims  *utils.Claims
		code    string
		allowed bool
	}{
		{"no principal", nil, "USERS_MANAGE", false},
		{"admin bypasses", &utils.Claims{Role: models.RoleAdmin}, "USERS_MANAGE", true},
		{"code present", &utils.Claims{Role: "Manager", Permissions: []string{"USERS_MANAGE"}}, "USERS_MANAGE", true},
		{"code absent", &utils.Claims{Role: "Manager", Permissions: []string{"USERS_VIEW"}}, "USERS_MANAGE", false},
		{"empty permission set", &utils.Claims{Role: "Manager"}, "USERS_MANAGE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := engine.CheckModule(tt.claims, tt.code)
			assert.Equal(t, tt.allowed, decision.Allowed())
			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason())
			}
		})
	}
}

func TestCheckAssetReadIsImplicit(t *testing.T) {
	conn := openTestDB(t)
	engine := NewAuthorizationEngine(conn)
	user := seedUser(t, conn, "rep@example.com")

	claims := &utils.Claims{UserID: user.ID, Role: "Sales Rep"}
	decision := engine.CheckAsset(context.Background(), claims, models.ResourceFile, models.ActionRead)
	assert.True(t, decision.Allowed(), "authenticated users always read")
}

func TestCheckAssetRequiresLiveGrant(t *testing.T) {
	conn := openTestDB(t)
	engine := NewAuthorizationEngine(conn)
	user := seedUser(t, conn, "rep@example.com")
	ctx := context.Background()

	claims := &utils.Claims{UserID: user.ID, Role: "Sales Rep"}
	decision := engine.CheckAsset(ctx, claims, models.ResourceFile, models.ActionCreate)
	assert.False(t, decision.Allowed())

	grant := seedAssetPermission(t, conn, models.ResourceFile, models.ActionCreate)
	require.NoError(t, conn.Create(&models.UserAssetPermission{
		UserID:            user.ID,
		AssetPermissionID: grant.ID,
	}).Error)

	decision = engine.CheckAsset(ctx, claims, models.ResourceFile, models.ActionCreate)
	assert.True(t, decision.Allowed())

	// The grant is action-scoped, not resource-wide.
	decision = engine.CheckAsset(ctx, claims, models.ResourceFile, models.ActionDelete)
	assert.False(t, decision.Allowed())
	decision = engine.CheckAsset(ctx, claims, models.ResourceFolder, models.ActionCreate)
	assert.False(t, decision.Allowed())
}

func TestCheckAssetAdminBypassesGrants(t *testing.T) {
	conn := openTestDB(t)
	engine := NewAuthorizationEngine(conn)

	claims := &utils.Claims{UserID: uuid.New().String(), Role: models.RoleAdmin}
	decision := engine.CheckAsset(context.Background(), claims, models.ResourceBusinessUnit, models.ActionDelete)
	assert.True(t, decision.Allowed())
}

func TestModulePermissionCodes(t *testing.T) {
	conn := openTestDB(t)
	engine := NewAuthorizationEngine(conn)
	ctx := context.Background()

	role := &models.Role{Name: "Manager"}
	require.NoError(t, conn.Create(role).Error)
	view := seedModulePermission(t, conn, "USERS", "VIEW")
	manage := seedModulePermission(t, conn, "USERS", "MANAGE")

	require.NoError(t, engine.ReplaceRolePermissions(ctx, role.ID, []string{view.ID, manage.ID}))

	codes, err := engine.ModulePermissionCodes(ctx, role.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"USERS_VIEW", "USERS_MANAGE"}, codes)
}

func TestReplaceRolePermissionsIsAtomic(t *testing.T) {
	conn := openTestDB(t)
	engine := NewAuthorizationEngine(conn)
	ctx := context.Background()

	role := &models.Role{Name: "Manager"}
	require.NoError(t, conn.Create(role).Error)
	view := seedModulePermission(t, conn, "USERS", "VIEW")
	manage := seedModulePermission(t, conn, "USERS", "MANAGE")

	require.NoError(t, engine.ReplaceRolePermissions(ctx, role.ID, []string{view.ID}))

	// A bad id in the new set must leave the old set untouched.
	err := engine.ReplaceRolePermissions(ctx, role.ID, []string{manage.ID, uuid.New().String()})
	require.Error(t, err)

	codes, err := engine.ModulePermissionCodes(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"USERS_VIEW"}, codes)

	// Empty set clears the role.
	require.NoError(t, engine.ReplaceRolePermissions(ctx, role.ID, nil))
	codes, err = engine.ModulePermissionCodes(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestReplaceRolePermissionsUnknownRole(t *testing.T) {
	engine := NewAuthorizationEngine(openTestDB(t))
	err := engine.ReplaceRolePermissions(context.Background(), uuid.New().String(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceUserAssetPermissions(t *testing.T) {
	conn := openTestDB(t)
	engine := NewAuthorizationEngine(conn)
	user := seedUser(t, conn, "rep@example.com")
	ctx := context.Background()

	create := seedAssetPermission(t, conn, models.ResourceFile, models.ActionCreate)
	update := seedAssetPermission(t, conn, models.ResourceFile, models.ActionUpdate)

	require.NoError(t, engine.ReplaceUserAssetPermissions(ctx, user.ID, []string{create.ID}))
	require.NoError(t, engine.ReplaceUserAssetPermissions(ctx, user.ID, []string{update.ID}))

	grants, err := engine.ListUserAssetPermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1, "replace-all, not additive")
	require.NotNil(t, grants[0].AssetPermission)
	assert.Equal(t, models.ActionUpdate, grants[0].AssetPermission.Action)

	claims := &utils.Claims{UserID: user.ID, Role: "Sales Rep"}
	assert.False(t, engine.CheckAsset(ctx, claims, models.ResourceFile, models.ActionCreate).Allowed(),
		"revocation takes effect without reissuing the token")
	assert.True(t, engine.CheckAsset(ctx, claims, models.ResourceFile, models.ActionUpdate).Allowed())
}
