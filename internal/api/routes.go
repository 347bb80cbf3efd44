package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assetvault/internal/api/middleware"
	"assetvault/internal/handlers"
	"assetvault/internal/models"
	"assetvault/internal/services"
	"assetvault/internal/tasks"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.healthCheck)

	engine := services.NewAuthorizationEngine(s.db)
	audit := services.NewAuditWriter(s.db)
	resolver := services.NewVersionResolver(s.db)
	catalog := services.NewCatalogService(s.db, s.storage, s.config.Upload)
	assignments := services.NewAssignmentService(s.db, resolver)

	authHandler := handlers.NewAuthHandler(s.db, engine, audit, s.config.JWT)
	catalogHandler := handlers.NewCatalogHandler(catalog, audit)
	fileHandler := handlers.NewFileHandler(catalog, resolver, s.storage, audit)
	assignmentHandler := handlers.NewAssignmentHandler(assignments, audit)
	permissionHandler := handlers.NewPermissionHandler(engine, audit)
	auditHandler := handlers.NewAuditHandler(s.db)
	taskClient := tasks.NewTaskClient(s.config.Redis.Addr, s.config.Redis.Username, s.config.Redis.Password, s.config.Redis.DB)
	maintenanceHandler := handlers.NewMaintenanceHandler(taskClient, audit)

	api := s.echo.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	auth := middleware.NewAuthMiddleware(s.config.JWT)
	protected := api.Group("", auth.Middleware())

	assets := protected.Group("/assets")

	// READ on the catalog is implicit for every authenticated user; only
	// mutations go through the asset-permission axis.
	assets.GET("/business-units", catalogHandler.ListBusinessUnits)
	assets.GET("/business-units/:id", catalogHandler.GetBusinessUnit)
	assets.POST("/business-units", catalogHandler.CreateBusinessUnit,
		middleware.RequireAssetPermission(engine, models.ResourceBusinessUnit, models.ActionCreate))
	assets.PUT("/business-units/:id", catalogHandler.UpdateBusinessUnit,
		middleware.RequireAssetPermission(engine, models.ResourceBusinessUnit, models.ActionUpdate))
	assets.DELETE("/business-units/:id", catalogHandler.DeleteBusinessUnit,
		middleware.RequireAssetPermission(engine, models.ResourceBusinessUnit, models.ActionDelete))
	assets.GET("/business-units/:id/products", catalogHandler.ListProducts)

	assets.GET("/products/:id", catalogHandler.GetProduct)
	assets.POST("/products", catalogHandler.CreateProduct,
		middleware.RequireAssetPermission(engine, models.ResourceProduct, models.ActionCreate))
	assets.PUT("/products/:id", catalogHandler.UpdateProduct,
		middleware.RequireAssetPermission(engine, models.ResourceProduct, models.ActionUpdate))
	assets.DELETE("/products/:id", catalogHandler.DeleteProduct,
		middleware.RequireAssetPermission(engine, models.ResourceProduct, models.ActionDelete))
	assets.GET("/products/:id/folders", catalogHandler.ListFolders)

	assets.GET("/folders/:id", catalogHandler.GetFolder)
	assets.POST("/folders", catalogHandler.CreateFolder,
		middleware.RequireAssetPermission(engine, models.ResourceFolder, models.ActionCreate))
	assets.PUT("/folders/:id", catalogHandler.UpdateFolder,
		middleware.RequireAssetPermission(engine, models.ResourceFolder, models.ActionUpdate))
	assets.DELETE("/folders/:id", catalogHandler.DeleteFolder,
		middleware.RequireAssetPermission(engine, models.ResourceFolder, models.ActionDelete))

	assets.GET("/folders/:id/files", fileHandler.ListFiles)
	assets.POST("/folders/:id/files", fileHandler.UploadFileVersion,
		middleware.RequireAssetPermission(engine, models.ResourceFile, models.ActionCreate))
	assets.PUT("/files/:id", fileHandler.UpdateFileMetadata,
		middleware.RequireAssetPermission(engine, models.ResourceFile, models.ActionUpdate))
	assets.POST("/files/:id/archive", fileHandler.ArchiveFile,
		middleware.RequireAssetPermission(engine, models.ResourceFile, models.ActionUpdate))
	assets.DELETE("/files/:id", fileHandler.DeleteFile,
		middleware.RequireAssetPermission(engine, models.ResourceFile, models.ActionDelete))
	assets.GET("/files/:id/versions", fileHandler.ListVersions)
	assets.GET("/files/:id/download", fileHandler.DownloadFile)

	// Pinning and grant management need user-management authority.
	admin := assets.Group("/admin", middleware.RequireModulePermission(engine, "USERS_MANAGE"))
	admin.POST("/assign-version", assignmentHandler.AssignVersion)
	admin.GET("/users/:id/assignments", assignmentHandler.ListAssignments)
	admin.GET("/users/:id/asset-permissions", permissionHandler.GetUserAssetPermissions)
	admin.POST("/users/:id/asset-permissions", permissionHandler.SetUserAssetPermissions)
	admin.POST("/version-repair", maintenanceHandler.TriggerVersionRepair)

	protected.PUT("/roles/:id/permissions", permissionHandler.SetRolePermissions,
		middleware.RequireModulePermission(engine, "ROLES_MANAGE"))
	protected.GET("/audit", auditHandler.ListAuditLogs,
		middleware.RequireModulePermission(engine, "AUDIT_VIEW"))

	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "assetvault")
	})
}
