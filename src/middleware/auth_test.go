package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"note-app/src/config"
	"note-app/src/logger"
	"note-app/src/middleware"
	"note-app/src/models"
	"note-app/src/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository は repository.UserRepository のモック実装
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id int) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(userID int) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) IsEmailExists(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) IsUsernameExists(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func setupAuthTest(t *testing.T) (service.JWTService, *MockUserRepository, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// ファイルを作らないテスト用ロガー
	logger.Log = logrus.New()
	logger.Log.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 7 * 24 * time.Hour,
		},
	}
	jwtService := service.NewJWTService(cfg)
	mockRepo := new(MockUserRepository)

	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(jwtService, mockRepo), func(c *gin.Context) {
		userID := c.GetInt("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return jwtService, mockRepo, r
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("valid token passes through", func(t *testing.T) {
		jwtService, mockRepo, r := setupAuthTest(t)
		token, _ := jwtService.GenerateAccessToken(1)
		mockRepo.On("GetByID", 1).Return(&models.User{ID: 1, Username: "alice", IsActive: true}, nil)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":1`)
	})

	t.Run("missing header returns 401", func(t *testing.T) {
		_, _, r := setupAuthTest(t)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header returns 401", func(t *testing.T) {
		jwtService, _, r := setupAuthTest(t)
		token, _ := jwtService.GenerateAccessToken(1)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token returns 401", func(t *testing.T) {
		_, _, r := setupAuthTest(t)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token is rejected for API access", func(t *testing.T) {
		jwtService, _, r := setupAuthTest(t)
		refresh, _ := jwtService.GenerateRefreshToken(1)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user returns 401", func(t *testing.T) {
		jwtService, mockRepo, r := setupAuthTest(t)
		token, _ := jwtService.GenerateAccessToken(99)
		mockRepo.On("GetByID", 99).Return(nil, assert.AnError)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated user returns 403", func(t *testing.T) {
		jwtService, mockRepo, r := setupAuthTest(t)
		token, _ := jwtService.GenerateAccessToken(1)
		mockRepo.On("GetByID", 1).Return(&models.User{ID: 1, IsActive: false}, nil)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
