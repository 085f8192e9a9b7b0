package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/internal/app/repository"
	"github.com/tiendita/tiendita-backend/internal/app/service"
	"github.com/tiendita/tiendita-backend/internal/db"
	"github.com/tiendita/tiendita-backend/pkg/util"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest(t *testing.T) (*gin.Engine, *AuthMiddleware, service.AuthService) {
	router, authMiddleware, authService, _ := setupMiddlewareTestWithRepo(t)
	return router, authMiddleware, authService
}

func setupMiddlewareTestWithRepo(t *testing.T) (*gin.Engine, *AuthMiddleware, service.AuthService, repository.UserRepository) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(
		userRepo,
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)

	router := gin.New()
	authMiddleware := NewAuthMiddleware(authService)
	return router, authMiddleware, authService, userRepo
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware, authService := setupMiddlewareTest(t)

	user, tokens, err := authService.Register("maria@example.com", "password123", "Maria", "Lopez")
	require.NoError(t, err)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		email, _ := GetUserEmail(c)
		role, _ := GetUserRole(c)

		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"email":   email,
			"role":    string(role),
		})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.Email)
}

func TestAuthMiddleware_Authenticate_Failures(t *testing.T) {
	router, authMiddleware, authService := setupMiddlewareTest(t)

	user, tokens, err := authService.Register("maria@example.com", "password123", "Maria", "Lopez")
	require.NoError(t, err)

	// An otherwise valid token whose user has been deactivated
	deactivated, deadTokens, err := authService.Register("gone@example.com", "password123", "Former", "User")
	require.NoError(t, err)
	require.NoError(t, authService.Deactivate(deactivated.ID))

	// Valid signature, but issued with an expiry in the past
	expiredPair, err := util.GenerateTokenPair(user.ID, user.Email, "user", testJWTSecret, -time.Minute, -time.Minute)
	require.NoError(t, err)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "Missing header",
			header: "",
		},
		{
			name:   "Not a bearer token",
			header: "Basic abc123",
		},
		{
			name:   "Garbage token",
			header: "Bearer not-a-jwt",
		},
		{
			name:   "Wrong signing key",
			header: "Bearer " + mustTokenWithSecret(t, user.ID, "other-secret"),
		},
		{
			name:   "Expired token",
			header: "Bearer " + expiredPair.AccessToken,
		},
		{
			name:   "Deactivated user",
			header: "Bearer " + deadTokens.AccessToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// Sanity check: the live user's token still passes
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func mustTokenWithSecret(t *testing.T, userID uint, secret string) string {
	pair, err := util.GenerateTokenPair(userID, "maria@example.com", "user", secret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware, authService, userRepo := setupMiddlewareTestWithRepo(t)

	_, userTokens, err := authService.Register("maria@example.com", "password123", "Maria", "Lopez")
	require.NoError(t, err)

	admin, _, err := authService.Register("admin@example.com", "password123", "Admin", "User")
	require.NoError(t, err)

	// Promote to admin, then log in again so the session reflects the role
	admin.Role = model.RoleAdmin
	require.NoError(t, userRepo.Update(admin))

	_, adminTokens, err := authService.Login("admin@example.com", "password123")
	require.NoError(t, err)

	router.GET("/admin", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	t.Run("Plain user is forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+userTokens.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+adminTokens.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
