package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"assetvault/internal/db"
	"assetvault/internal/models"
)

// openTestDB gives each test an isolated in-memory database with the full
// schema migrated. Foreign keys are switched on so the audit writer's
// constraint handling behaves like production, and the pool is pinned to a
// single connection because every in-memory connection is its own database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))
	return conn
}

func seedFolder(t *testing.T, conn *gorm.DB) *models.Folder {
	t.Helper()

	bu := &models.BusinessUnit{Name: "Enterprise Sales"}
	require.NoError(t, conn.Create(bu).Error)

	product := &models.Product{BusinessUnitID: bu.ID, Name: "CRM Suite"}
	require.NoError(t, conn.Create(product).Error)

	folder := &models.Folder{ProductID: product.ID, Name: "Onboarding"}
	require.NoError(t, conn.Create(folder).Error)

	return folder
}

func seedUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Password: "not-a-real-hash",
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// seedFile inserts one revision directly, preminting the id so a fresh
// group can be identified by its opening row in a single insert.
func seedFile(t *testing.T, conn *gorm.DB, folderID, title string, versionNumber int, groupID models.VersionGroupID, createdAt time.Time) *models.AssetFile {
	t.Helper()

	id := uuid.New().String()
	if groupID.IsZero() {
		groupID = models.VersionGroupID(id)
	}

	file := &models.AssetFile{
		Base: models.Base{
			ID:        id,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		FolderID:         folderID,
		Title:            title,
		OriginalFileName: fmt.Sprintf("%s-v%d.pdf", title, versionNumber),
		StoredFileName:   uuid.New().String() + ".pdf",
		FileType:         "pdf",
		FileSize:         128,
		AudienceLevel:    models.AudienceInternal,
		VersionGroupID:   groupID,
		VersionNumber:    versionNumber,
	}
	require.NoError(t, conn.Create(file).Error)
	return file
}
