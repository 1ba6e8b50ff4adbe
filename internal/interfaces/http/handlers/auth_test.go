// internal/interfaces/http/handlers/auth_test.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/user"
	"github.com/your-org/pos-backend/internal/pkg/auth"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *user.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:auth_handler_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}))

	cfg := &config.Config{
		App: config.AppConfig{Name: "pos-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough-1",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}

	userSvc := user.NewService(db, auth.NewJWTManager(cfg), auth.NewPasswordManager(cfg), cfg)
	authHandler := NewAuthHandler(userSvc)

	router := gin.New()
	// The auth middleware populates user_id; stand in for it here
	router.GET("/api/v1/auth/profile", func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			var userID uint
			fmt.Sscanf(id, "%d", &userID)
			c.Set("user_id", userID)
		}
		authHandler.GetProfile(c)
	})
	router.GET("/api/v1/users", authHandler.GetUsers)

	return router, userSvc
}

func TestGetProfile(t *testing.T) {
	router, userSvc := setupAuthRouter(t)

	created, err := userSvc.Register(&user.RegisterRequest{
		Username: "cashier1",
		Email:    "cashier1@example.com",
		Password: "Secret123",
	})
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/v1/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", created.ID))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data user.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.Data.ID)
	assert.Equal(t, "cashier1", resp.Data.Username)
	assert.Empty(t, resp.Data.PasswordHash)
}

func TestGetUsers(t *testing.T) {
	router, userSvc := setupAuthRouter(t)

	for i := 0; i < 3; i++ {
		_, err := userSvc.Register(&user.RegisterRequest{
			Username: fmt.Sprintf("cashier%d", i),
			Email:    fmt.Sprintf("cashier%d@example.com", i),
			Password: "Secret123",
		})
		require.NoError(t, err)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []user.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 3)
}
