package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assetvault/internal/api/middleware"
	"assetvault/internal/models"
	"assetvault/internal/services"
	"assetvault/internal/utils/logger"
)

// CatalogHandler serves the BusinessUnit/Product/Folder levels of the
// hierarchy. Every mutation writes an audit entry as a side effect.
type CatalogHandler struct {
	catalog *services.CatalogService
	audit   *services.AuditWriter
	log     *logger.Logger
}

func NewCatalogHandler(catalog *services.CatalogService, audit *services.AuditWriter) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		audit:   audit,
		log:     logger.New("catalog_handler"),
	}
}

type namedEntityRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description"`
}

func (h *CatalogHandler) ListBusinessUnits(c echo.Context) error {
	units, err := h.catalog.ListBusinessUnits(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, units)
}

func (h *CatalogHandler) CreateBusinessUnit(c echo.Context) error {
	var req namedEntityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	bu := &models.BusinessUnit{Name: req.Name, Description: req.Description}
	if err := h.catalog.CreateBusinessUnit(c.Request().Context(), bu); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "CREATE", "BusinessUnit", bu.ID,
		map[string]interface{}{"name": bu.Name})
	return c.JSON(http.StatusCreated, bu)
}

func (h *CatalogHandler) GetBusinessUnit(c echo.Context) error {
	bu, err := h.catalog.GetBusinessUnit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, bu)
}

func (h *CatalogHandler) UpdateBusinessUnit(c echo.Context) error {
	var req namedEntityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	bu, err := h.catalog.UpdateBusinessUnit(c.Request().Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "UPDATE", "BusinessUnit", bu.ID,
		map[string]interface{}{"name": bu.Name})
	return c.JSON(http.StatusOK, bu)
}

func (h *CatalogHandler) DeleteBusinessUnit(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalog.DeleteBusinessUnit(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "DELETE", "BusinessUnit", id, nil)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalog.ListProducts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

type productRequest struct {
	namedEntityRequest
	BusinessUnitID string `json:"businessUnitId" validate:"required,uuid"`
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product := &models.Product{
		BusinessUnitID: req.BusinessUnitID,
		Name:           req.Name,
		Description:    req.Description,
	}
	if err := h.catalog.CreateProduct(c.Request().Context(), product); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "CREATE", "Product", product.ID,
		map[string]interface{}{"name": product.Name, "businessUnitId": product.BusinessUnitID})
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	product, err := h.catalog.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	var req namedEntityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.catalog.UpdateProduct(c.Request().Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "UPDATE", "Product", product.ID,
		map[string]interface{}{"name": product.Name})
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "DELETE", "Product", id, nil)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) ListFolders(c echo.Context) error {
	folders, err := h.catalog.ListFolders(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, folders)
}

type folderRequest struct {
	namedEntityRequest
	ProductID string `json:"productId" validate:"required,uuid"`
}

func (h *CatalogHandler) CreateFolder(c echo.Context) error {
	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	folder := &models.Folder{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.catalog.CreateFolder(c.Request().Context(), folder); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "CREATE", "Folder", folder.ID,
		map[string]interface{}{"name": folder.Name, "productId": folder.ProductID})
	return c.JSON(http.StatusCreated, folder)
}

func (h *CatalogHandler) GetFolder(c echo.Context) error {
	folder, err := h.catalog.GetFolder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, folder)
}

func (h *CatalogHandler) UpdateFolder(c echo.Context) error {
	var req namedEntityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	folder, err := h.catalog.UpdateFolder(c.Request().Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "UPDATE", "Folder", folder.ID,
		map[string]interface{}{"name": folder.Name})
	return c.JSON(http.StatusOK, folder)
}

func (h *CatalogHandler) DeleteFolder(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalog.DeleteFolder(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}

	h.audit.Log(c.Request().Context(), middleware.GetUserID(c), "DELETE", "Folder", id, nil)
	return c.NoContent(http.StatusNoContent)
}
