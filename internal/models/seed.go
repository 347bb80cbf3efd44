package models

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	console "assetvault/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("SEEDER")

// Default module permissions
var defaultPermissions = []Permission{
	{Module: "USERS", Action: "VIEW"},
	{Module: "USERS", Action: "MANAGE"},
	{Module: "ROLES", Action: "VIEW"},
	{Module: "ROLES", Action: "MANAGE"},
	{Module: "ASSETS", Action: "VIEW"},
	{Module: "ASSETS", Action: "MANAGE"},
	{Module: "AUDIT", Action: "VIEW"},
}

// Asset permissions cover create/update/delete per hierarchy level.
// READ is deliberately absent: every authenticated user may read.
var assetResourceTypes = []ResourceType{
	ResourceBusinessUnit,
	ResourceProduct,
	ResourceFolder,
	ResourceFile,
}

var assetActions = []AssetAction{ActionCreate, ActionUpdate, ActionDelete}

// SeedPermissions creates the default module and asset permissions plus
// the Admin role.
func SeedPermissions(db *gorm.DB) error {
	for _, permission := range defaultPermissions {
		if err := db.FirstOrCreate(&permission, Permission{
			Module: permission.Module,
			Action: permission.Action,
		}).Error; err != nil {
			return fmt.Errorf("failed to create permission %s: %v", permission.Code(), err)
		}
	}

	for _, resourceType := range assetResourceTypes {
		for _, action := range assetActions {
			permission := AssetPermission{
				ResourceType:   resourceType,
				Action:         action,
				PermissionCode: fmt.Sprintf("%s_%s", resourceType, action),
			}
			if err := db.FirstOrCreate(&permission, AssetPermission{
				ResourceType: resourceType,
				Action:       action,
			}).Error; err != nil {
				return fmt.Errorf("failed to create asset permission %s: %v", permission.PermissionCode, err)
			}
		}
	}

	// The Admin role holds no RolePermission rows; it bypasses the check.
	adminRole := Role{Name: RoleAdmin, Description: "Full access"}
	if err := db.FirstOrCreate(&adminRole, Role{Name: RoleAdmin}).Error; err != nil {
		return fmt.Errorf("failed to create admin role: %v", err)
	}

	return nil
}

// CreateAdminFromEnv bootstraps the initial admin account when
// ADMIN_EMAIL and ADMIN_PASSWORD are set.
func CreateAdminFromEnv(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Info("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	var existing User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	}

	var adminRole Role
	if err := db.Where("name = ?", RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("admin role not seeded: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %v", err)
	}

	admin := User{
		Email:     email,
		Password:  string(hashed),
		FirstName: "Admin",
		RoleID:    adminRole.ID,
		UserType:  "INTERNAL",
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %v", err)
	}

	log.Success("Bootstrapped admin user %s", email)
	return nil
}
