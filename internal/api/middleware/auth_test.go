package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"assetvault/internal/config"
	"assetvault/internal/db"
	"assetvault/internal/models"
	"assetvault/internal/services"
	"assetvault/internal/utils"
)

var testJWT = config.JWTConfig{
	Secret:   "test-secret",
	Issuer:   "assetvault",
	Audience: "assetvault-api",
}

func newTestEngine(t *testing.T) (*services.AuthorizationEngine, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))

	return services.NewAuthorizationEngine(conn), conn
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, setup func(echo.Context)) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return httpErr.Code
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	auth := NewAuthMiddleware(testJWT)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := invoke(t, auth.Middleware(), req, nil)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	auth := NewAuthMiddleware(testJWT)

	for _, header := range []string{"token-without-scheme", "Basic dXNlcjpwYXNz", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		_, err := invoke(t, auth.Middleware(), req, nil)
		assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err), "header %q", header)
	}
}

func TestAuthMiddlewareRejectsForgedToken(t *testing.T) {
	auth := NewAuthMiddleware(testJWT)

	forged := testJWT
	forged.Secret = "attacker-secret"
	token, err := utils.GenerateJWT(models.User{Base: models.Base{ID: "u-1"}}, nil, forged)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = invoke(t, auth.Middleware(), req, nil)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestAuthMiddlewareEstablishesIdentity(t *testing.T) {
	auth := NewAuthMiddleware(testJWT)

	user := models.User{
		Base: models.Base{ID: "11111111-1111-1111-1111-111111111111"},
		Role: &models.Role{Name: "Sales Rep"},
	}
	token, err := utils.GenerateJWT(user, []string{"ASSETS_VIEW"}, testJWT)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := auth.Middleware()(func(c echo.Context) error {
		claims := GetClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.ID, GetUserID(c))
		assert.Equal(t, "Sales Rep", claims.Role)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireModulePermission(t *testing.T) {
	engine, _ := newTestEngine(t)

	tests := []struct {
		name   string
		claims *utils.Claims
		status int
	}{
		{"unauthenticated", nil, http.StatusUnauthorized},
		{"missing code", &utils.Claims{Role: "Sales Rep"}, http.StatusForbidden},
		{"code present", &utils.Claims{Role: "Sales Rep", Permissions: []string{"USERS_MANAGE"}}, http.StatusOK},
		{"admin", &utils.Claims{Role: models.RoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec, err := invoke(t, RequireModulePermission(engine, "USERS_MANAGE"), req, func(c echo.Context) {
				if tt.claims != nil {
					c.Set("claims", tt.claims)
				}
			})
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, tt.status, httpStatus(t, err))
		})
	}
}

func TestRequireAssetPermission(t *testing.T) {
	engine, conn := newTestEngine(t)

	user := &models.User{Email: "rep@example.com", Password: "x"}
	require.NoError(t, conn.Create(user).Error)
	claims := &utils.Claims{UserID: user.ID, Role: "Sales Rep"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, err := invoke(t, RequireAssetPermission(engine, models.ResourceFile, models.ActionRead), req, func(c echo.Context) {
		c.Set("claims", claims)
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code, "read is implicit")

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	_, err = invoke(t, RequireAssetPermission(engine, models.ResourceFile, models.ActionCreate), req, func(c echo.Context) {
		c.Set("claims", claims)
	})
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err), "mutation needs a live grant")

	grant := &models.AssetPermission{ResourceType: models.ResourceFile, Action: models.ActionCreate, PermissionCode: "FILE_CREATE"}
	require.NoError(t, conn.Create(grant).Error)
	require.NoError(t, conn.Create(&models.UserAssetPermission{UserID: user.ID, AssetPermissionID: grant.ID}).Error)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	rec, err = invoke(t, RequireAssetPermission(engine, models.ResourceFile, models.ActionCreate), req, func(c echo.Context) {
		c.Set("claims", claims)
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
