package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetvault/internal/models"
)

func TestAuditLogRecordsActor(t *testing.T) {
	conn := openTestDB(t)
	user := seedUser(t, conn, "rep@example.com")
	writer := NewAuditWriter(conn)

	writer.Log(context.Background(), user.ID, "UPLOAD_VERSION", "ASSET_FILE", "file-1", map[string]interface{}{
		"title":   "Spec.pdf",
		"version": 2,
	})

	var entry models.AuditLog
	require.NoError(t, conn.First(&entry).Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, user.ID, *entry.UserID)
	assert.Equal(t, "UPLOAD_VERSION", entry.Action)
	assert.False(t, entry.Timestamp.IsZero())

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Details, &details))
	assert.Equal(t, "Spec.pdf", details["title"])
}

func TestAuditLogSystemActionHasNoActor(t *testing.T) {
	conn := openTestDB(t)
	writer := NewAuditWriter(conn)

	writer.Log(context.Background(), "", "VERSION_REPAIR", "ASSET_FILE", "", nil)

	var entry models.AuditLog
	require.NoError(t, conn.First(&entry).Error)
	assert.Nil(t, entry.UserID)
}

func TestAuditLogDanglingActorFallsBackToNull(t *testing.T) {
	conn := openTestDB(t)
	writer := NewAuditWriter(conn)

	// The actor's user row is gone but the token was still valid; the
	// entry must survive with a weak reference instead of being dropped.
	ghost := uuid.New().String()
	writer.Log(context.Background(), ghost, "DELETE_FILE", "ASSET_FILE", "file-1", map[string]interface{}{
		"title": "Spec.pdf",
	})

	var entries []models.AuditLog
	require.NoError(t, conn.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(entries[0].Details, &details))
	assert.Equal(t, ghost, details["originalUserId"])
	assert.Equal(t, "Spec.pdf", details["title"], "original details survive the retry")
	assert.NotEmpty(t, details["note"])
}

func TestAuditLogDeletedActorKeepsTrail(t *testing.T) {
	conn := openTestDB(t)
	user := seedUser(t, conn, "shortlived@example.com")
	writer := NewAuditWriter(conn)
	ctx := context.Background()

	writer.Log(ctx, user.ID, "LOGIN", "USER", user.ID, nil)
	require.NoError(t, conn.Delete(&models.User{}, "id = ?", user.ID).Error)
	writer.Log(ctx, user.ID, "DELETE_FILE", "ASSET_FILE", "file-1", nil)

	var entries []models.AuditLog
	require.NoError(t, conn.Order("timestamp ASC").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].UserID, "earlier entries drop to a null actor on user deletion")
	assert.Nil(t, entries[1].UserID)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(entries[1].Details, &details))
	assert.Equal(t, user.ID, details["originalUserId"])
}
