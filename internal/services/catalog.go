package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"assetvault/internal/config"
	"assetvault/internal/models"
	"assetvault/internal/utils/logger"
)

// CatalogService owns the BusinessUnit -> Product -> Folder -> AssetFile
// hierarchy. File content is immutable per revision: uploads append new
// version rows, metadata edits mutate in place.
type CatalogService struct {
	db      *gorm.DB
	storage Storage
	upload  config.UploadConfig
	log     *logger.Logger
}

func NewCatalogService(db *gorm.DB, storage Storage, upload config.UploadConfig) *CatalogService {
	return &CatalogService{
		db:      db,
		storage: storage,
		upload:  upload,
		log:     logger.New("catalog_service"),
	}
}

// FileUpload carries everything createFileVersion needs besides the
// target folder.
type FileUpload struct {
	Title                string
	Description          string
	AudienceLevel        models.AudienceLevel
	OriginalFileName     string
	ContentType          string
	Content              []byte
	UpdateVersionGroupID models.VersionGroupID
	Tags                 datatypes.JSON
	UploadedBy           string
}

// MetadataPatch updates an AssetFile row in place. Nil fields are left
// untouched. Content is never patched this way.
type MetadataPatch struct {
	Title         *string
	Description   *string
	AudienceLevel *models.AudienceLevel
	Tags          datatypes.JSON
}

func (s *CatalogService) CreateBusinessUnit(ctx context.Context, bu *models.BusinessUnit) error {
	return s.db.WithContext(ctx).Create(bu).Error
}

func (s *CatalogService) GetBusinessUnit(ctx context.Context, id string) (*models.BusinessUnit, error) {
	var bu models.BusinessUnit
	err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&bu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &bu, err
}

func (s *CatalogService) ListBusinessUnits(ctx context.Context) ([]models.BusinessUnit, error) {
	var units []models.BusinessUnit
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("name ASC").Find(&units).Error
	return units, err
}

func (s *CatalogService) UpdateBusinessUnit(ctx context.Context, id string, name, description string) (*models.BusinessUnit, error) {
	bu, err := s.GetBusinessUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	bu.Name = name
	bu.Description = description
	if err := s.db.WithContext(ctx).Save(bu).Error; err != nil {
		return nil, err
	}
	return bu, nil
}

func (s *CatalogService) DeleteBusinessUnit(ctx context.Context, id string) error {
	return s.softDelete(ctx, &models.BusinessUnit{}, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if _, err := s.GetBusinessUnit(ctx, product.BusinessUnitID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &product, err
}

func (s *CatalogService) ListProducts(ctx context.Context, businessUnitID string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("business_unit_id = ? AND is_deleted = ?", businessUnitID, false).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, name, description string) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = name
	product.Description = description
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.softDelete(ctx, &models.Product{}, id)
}

func (s *CatalogService) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if _, err := s.GetProduct(ctx, folder.ProductID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(folder).Error
}

func (s *CatalogService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &folder, err
}

func (s *CatalogService) ListFolders(ctx context.Context, productID string) ([]models.Folder, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND is_deleted = ?", productID, false).
		Order("name ASC").
		Find(&folders).Error
	return folders, err
}

func (s *CatalogService) UpdateFolder(ctx context.Context, id string, name, description string) (*models.Folder, error) {
	folder, err := s.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	folder.Name = name
	folder.Description = description
	if err := s.db.WithContext(ctx).Save(folder).Error; err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *CatalogService) DeleteFolder(ctx context.Context, id string) error {
	return s.softDelete(ctx, &models.Folder{}, id)
}

// CreateFileVersion validates and stores the binary, then appends the
// catalog row. When UpdateVersionGroupID is set the new row joins that
// group at max(versionNumber)+1; otherwise the row opens a fresh group
// whose id is the row's own id. The storage copy and the row insert are
// two steps: an orphaned stored blob after a failed insert is an accepted
// leak, never a dangling catalog row.
func (s *CatalogService) CreateFileVersion(ctx context.Context, folderID string, upload FileUpload) (*models.AssetFile, error) {
	if err := s.validateUpload(upload); err != nil {
		return nil, err
	}

	folder, err := s.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	versionNumber := 1
	groupID := upload.UpdateVersionGroupID
	if !groupID.IsZero() {
		resolver := NewVersionResolver(s.db)
		versions, err := resolver.VersionsOf(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			return nil, ErrInvalidVersionGroup
		}
		if versions[0].FolderID != folder.ID {
			return nil, ErrInvalidVersionGroup
		}
		for _, v := range versions {
			if v.VersionNumber >= versionNumber {
				versionNumber = v.VersionNumber + 1
			}
		}
	}

	key, err := s.storage.Upload(ctx, upload.Content, upload.OriginalFileName, upload.ContentType)
	if err != nil {
		return nil, err
	}

	file := &models.AssetFile{
		Base:             models.Base{ID: uuid.New().String()},
		FolderID:         folder.ID,
		Title:            upload.Title,
		OriginalFileName: upload.OriginalFileName,
		StoredFileName:   key,
		FileType:         fileExtension(upload.OriginalFileName),
		FileSize:         int64(len(upload.Content)),
		Description:      upload.Description,
		UploadedBy:       upload.UploadedBy,
		AudienceLevel:    upload.AudienceLevel,
		VersionGroupID:   groupID,
		VersionNumber:    versionNumber,
		Tags:             upload.Tags,
	}
	if file.VersionGroupID.IsZero() {
		file.VersionGroupID = models.VersionGroupID(file.ID)
	}
	if file.AudienceLevel == "" {
		file.AudienceLevel = models.AudienceInternal
	}

	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, err
	}

	s.log.Info("Stored %s v%d in folder %s (group %s)", file.Title, file.VersionNumber, folder.Name, file.VersionGroupID)
	return file, nil
}

func (s *CatalogService) GetFile(ctx context.Context, id string) (*models.AssetFile, error) {
	var file models.AssetFile
	err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &file, err
}

// UpdateFileMetadata mutates metadata in place; content edits always go
// through CreateFileVersion instead.
func (s *CatalogService) UpdateFileMetadata(ctx context.Context, id string, patch MetadataPatch) (*models.AssetFile, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.AudienceLevel != nil {
		if !models.IsValidAudienceLevel(*patch.AudienceLevel) {
			return nil, errors.New("invalid audience level")
		}
		updates["audience_level"] = *patch.AudienceLevel
	}
	if patch.Tags != nil {
		updates["tags"] = patch.Tags
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(file).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return file, nil
}

func (s *CatalogService) ArchiveFile(ctx context.Context, id string) (*models.AssetFile, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(file).Update("is_archived", true).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// DeleteFile soft-deletes: the row drops out of version resolution but
// the stored binary is kept.
func (s *CatalogService) DeleteFile(ctx context.Context, id string) error {
	return s.softDelete(ctx, &models.AssetFile{}, id)
}

// ListFiles returns a folder's files sorted by upload time. Archived rows
// are hidden unless requested.
func (s *CatalogService) ListFiles(ctx context.Context, folderID, sort string, includeArchived bool) ([]models.AssetFile, error) {
	query := s.db.WithContext(ctx).
		Where("folder_id = ? AND is_deleted = ?", folderID, false)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	order := "created_at DESC"
	if sort == "oldest" {
		order = "created_at ASC"
	}

	var files []models.AssetFile
	err := query.Order(order).Find(&files).Error
	return files, err
}

func (s *CatalogService) softDelete(ctx context.Context, model interface{}, id string) error {
	result := s.db.WithContext(ctx).Model(model).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": s.db.NowFunc()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogService) validateUpload(upload FileUpload) error {
	if int64(len(upload.Content)) > s.upload.MaxFileSize {
		return ErrFileTooLarge
	}

	ext := fileExtension(upload.OriginalFileName)
	for _, allowed := range s.upload.AllowedTypes {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return ErrFileTypeNotAllowed
}

func fileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
