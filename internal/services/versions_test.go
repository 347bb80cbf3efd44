package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetvault/internal/models"
)

func TestVersionsOfReturnsOrderedRevisions(t *testing.T) {
	conn := openTestDB(t)
	folder := seedFolder(t, conn)
	resolver := NewVersionResolver(conn)

	base := time.Now().Add(-time.Hour)
	v1 := seedFile(t, conn, folder.ID, "Pricing Guide", 1, "", base)
	group := models.GroupOf(v1)
	seedFile(t, conn, folder.ID, "Pricing Guide", 3, group, base.Add(2*time.Minute))
	seedFile(t, conn, folder.ID, "Pricing Guide", 2, group, base.Add(time.Minute))

	versions, err := resolver.VersionsOf(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.VersionNumber)
		assert.Equal(t, group, v.VersionGroupID)
	}
}

func TestVersionsOfSkipsDeletedRows(t *testing.T) {
	conn := openTestDB(t)
	folder := seedFolder(t, conn)
	resolver := NewVersionResolver(conn)

	base := time.Now().Add(-time.Hour)
	v1 := seedFile(t, conn, folder.ID, "Pricing Guide", 1, "", base)
	group := models.GroupOf(v1)
	v2 := seedFile(t, conn, folder.ID, "Pricing Guide", 2, group, base.Add(time.Minute))

	require.NoError(t, conn.Model(v2).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": time.Now(),
	}).Error)

	versions, err := resolver.VersionsOf(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, v1.ID, versions[0].ID)
}

func TestLatestPrefersHighestVersionNumber(t *testing.T) {
	conn := openTestDB(t)
	folder := seedFolder(t, conn)
	resolver := NewVersionResolver(conn)

	base := time.Now().Add(-time.Hour)
	v1 := seedFile(t, conn, folder.ID, "Battle Card", 1, "", base)
	group := models.GroupOf(v1)
	v2 := seedFile(t, conn, folder.ID, "Battle Card", 2, group, base.Add(time.Minute))

	latest, err := resolver.Latest(context.Background(), group, false)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)
}

func TestLatestSkipsArchivedUnlessAsked(t *testing.T) {
	conn := openTestDB(t)
	folder := seedFolder(t, conn)
	resolver := NewVersionResolver(conn)

	base := time.Now().Add(-time.Hour)
	v1 := seedFile(t, conn, folder.ID, "Battle Card", 1, "", base)
	group := models.GroupOf(v1)
	v2 := seedFile(t, conn, folder.ID, "Battle Card", 2, group, base.Add(time.Minute))
	require.NoError(t, conn.Model(v2).Update("is_archived", true).Error)

	latest, err := resolver.Latest(context.Background(), group, false)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, latest.ID)

	latest, err = resolver.Latest(context.Background(), group, true)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)
}

func TestLatestUnknownGroup(t *testing.T) {
	conn := openTestDB(t)
	resolver := NewVersionResolver(conn)

	_, err := resolver.Latest(context.Background(), "00000000-0000-0000-0000-000000000000", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVersionsByTitleSpansSplitGroups(t *testing.T) {
	conn := openTestDB(t)
	folder := seedFolder(t, conn)
	resolver := NewVersionResolver(conn)

	base := time.Now().Add(-time.Hour)
	seedFile(t, conn, folder.ID, "Syllabus", 1, "", base)
	seedFile(t, conn, folder.ID, "Syllabus", 1, "", base.Add(time.Minute))

	files, err := resolver.VersionsByTitle(context.Background(), folder.ID, "Syllabus")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
