package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"assetvault/internal/models"
)

// VersionResolver answers which revisions make up a logical document and
// which one is current. Read-only; it never mutates catalog state.
type VersionResolver struct {
	db *gorm.DB
}

func NewVersionResolver(db *gorm.DB) *VersionResolver {
	return &VersionResolver{db: db}
}

// VersionsOf returns the group's non-deleted revisions ordered by version
// number ascending.
func (r *VersionResolver) VersionsOf(ctx context.Context, groupID models.VersionGroupID) ([]models.AssetFile, error) {
	var files []models.AssetFile
	err := r.db.WithContext(ctx).
		Where("version_group_id = ? AND is_deleted = ?", groupID, false).
		Order("version_number ASC").
		Find(&files).Error
	return files, err
}

// VersionsByTitle returns the ordered revisions of the logical document
// identified by (folder, title).
func (r *VersionResolver) VersionsByTitle(ctx context.Context, folderID, title string) ([]models.AssetFile, error) {
	var files []models.AssetFile
	err := r.db.WithContext(ctx).
		Where("folder_id = ? AND title = ? AND is_deleted = ?", folderID, title, false).
		Order("version_number ASC").
		Find(&files).Error
	return files, err
}

// Latest returns the highest-numbered non-archived revision of the group.
// With includeArchived, archived rows compete too and ties break toward
// the highest version number regardless of archive state.
func (r *VersionResolver) Latest(ctx context.Context, groupID models.VersionGroupID, includeArchived bool) (*models.AssetFile, error) {
	query := r.db.WithContext(ctx).
		Where("version_group_id = ? AND is_deleted = ?", groupID, false)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var file models.AssetFile
	err := query.Order("version_number DESC").First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}
