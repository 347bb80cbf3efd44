package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"assetvault/internal/api/middleware"
	"assetvault/internal/models"
	"assetvault/internal/services"
	"assetvault/internal/utils/logger"
)

// FileHandler serves the AssetFile leaf: version uploads, metadata edits,
// archive/delete, version listing and binary download.
type FileHandler struct {
	catalog  *services.CatalogService
	resolver *services.VersionResolver
	storage  services.Storage
	audit    *services.AuditWriter
	log      *logger.Logger
}

func NewFileHandler(catalog *services.CatalogService, resolver *services.VersionResolver, storage services.Storage, audit *services.AuditWriter) *FileHandler {
	return &FileHandler{
		catalog:  catalog,
		resolver: resolver,
		storage:  storage,
		audit:    audit,
		log:      logger.New("file_handler"),
	}
}

// ListFiles returns a folder's files.
// Query: sort=newest|oldest, showArchived=bool.
func (h *FileHandler) ListFiles(c echo.Context) error {
	sort := c.QueryParam("sort")
	if sort != "" && sort != "newest" && sort != "oldest" {
		return echo.NewHTTPError(http.StatusBadRequest, "sort must be newest or oldest")
	}
	showArchived := c.QueryParam("showArchived") == "true"

	files, err := h.catalog.ListFiles(c.Request().Context(), c.Param("id"), sort, showArchived)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, files)
}

// UploadFileVersion accepts a multipart upload into a folder. When the
// updateVersionGroupId field is present the upload becomes the next
// revision of that group; otherwise it opens a fresh group at version 1.
func (h *FileHandler) UploadFileVersion(c echo.Context) error {
	contentType := c.Request().Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return echo.NewHTTPError(http.StatusBadRequest, "Content-Type must be multipart/form-data")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	audienceLevel := models.AudienceLevel(c.FormValue("audienceLevel"))
	if audienceLevel == "" {
		audienceLevel = models.AudienceInternal
	}
	if !models.IsValidAudienceLevel(audienceLevel) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid audience level")
	}

	var tags datatypes.JSON
	if raw := c.FormValue("tags"); raw != "" {
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "tags must be a JSON array of strings")
		}
		tags = datatypes.JSON(raw)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}

	upload := services.FileUpload{
		Title:                title,
		Description:          c.FormValue("description"),
		AudienceLevel:        audienceLevel,
		OriginalFileName:     file.Filename,
		ContentType:          file.Header.Get("Content-Type"),
		Content:              content,
		UpdateVersionGroupID: models.VersionGroupID(c.FormValue("updateVersionGroupId")),
		Tags:                 tags,
		UploadedBy:           middleware.GetUserID(c),
	}

	created, err := h.catalog.CreateFileVersion(c.Request().Context(), c.Param("id"), upload)
	if err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "UPLOAD_VERSION", "AssetFile", created.ID,
		map[string]interface{}{
			"title":          created.Title,
			"versionGroupId": created.VersionGroupID,
			"versionNumber":  created.VersionNumber,
		})
	return c.JSON(http.StatusCreated, created)
}

type metadataRequest struct {
	Title         *string               `json:"title" validate:"omitempty,min=1"`
	Description   *string               `json:"description"`
	AudienceLevel *models.AudienceLevel `json:"audienceLevel" validate:"omitempty,audience_level"`
	Tags          datatypes.JSON        `json:"tags"`
}

func (h *FileHandler) UpdateFileMetadata(c echo.Context) error {
	var req metadataRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	file, err := h.catalog.UpdateFileMetadata(c.Request().Context(), c.Param("id"), services.MetadataPatch{
		Title:         req.Title,
		Description:   req.Description,
		AudienceLevel: req.AudienceLevel,
		Tags:          req.Tags,
	})
	if err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "UPDATE_METADATA", "AssetFile", file.ID, nil)
	return c.JSON(http.StatusOK, file)
}

func (h *FileHandler) ArchiveFile(c echo.Context) error {
	file, err := h.catalog.ArchiveFile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "ARCHIVE", "AssetFile", file.ID, nil)
	return c.JSON(http.StatusOK, file)
}

func (h *FileHandler) DeleteFile(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalog.DeleteFile(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "DELETE", "AssetFile", id, nil)
	return c.NoContent(http.StatusNoContent)
}

// ListVersions returns the ordered revision list of the file's group.
func (h *FileHandler) ListVersions(c echo.Context) error {
	file, err := h.catalog.GetFile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}

	versions, err := h.resolver.VersionsOf(c.Request().Context(), models.GroupOf(file))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, versions)
}

// DownloadFile streams the stored binary under its original filename.
func (h *FileHandler) DownloadFile(c echo.Context) error {
	file, err := h.catalog.GetFile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}

	reader, err := h.storage.Download(c.Request().Context(), file.StoredFileName)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch file content")
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(file.OriginalFileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, file.OriginalFileName))
	return c.Stream(http.StatusOK, contentType, reader)
}
