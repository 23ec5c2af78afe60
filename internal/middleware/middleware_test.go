package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/config"
	"github.com/Muntazir86/short-it/internal/middleware"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/Muntazir86/short-it/internal/service/mocks"
	"github.com/Muntazir86/short-it/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var limits = config.RateLimitConfig{
	AnonymousPerHour:     60,
	AuthenticatedPerHour: 1000,
	PremiumPerHour:       5000,
}

func limitedRouter(rl *middleware.RateLimiter, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	for _, h := range pre {
		router.Use(h)
	}
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func get(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)
	return w
}

// The anonymous quota is 60 per hour; the 61st request inside the same
// window must be refused.
func TestRateLimiter_AnonymousWindow(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.NewMemoryCounterStore(), limits, zap.NewNop())
	router := limitedRouter(rl)

	for i := 0; i < 60; i++ {
		w := get(router)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := get(router)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRateLimiter_Headers(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.NewMemoryCounterStore(), limits, zap.NewNop())
	router := limitedRouter(rl)

	w := get(router)

	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

// Authenticated callers get their own key and quota, independent of
// the anonymous IP bucket.
func TestRateLimiter_AuthenticatedQuota(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.NewMemoryCounterStore(), limits, zap.NewNop())

	identity := auth.Identity{ID: "user-1", Email: "user@example.com"}
	router := limitedRouter(rl, func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), identity))
		c.Next()
	})

	// Far past the anonymous quota, still inside the user quota.
	for i := 0; i < 100; i++ {
		w := get(router)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := get(router)
	assert.Equal(t, "1000", w.Header().Get("X-RateLimit-Limit"))
}

// Premium accounts are never counted by the general tiers, no matter
// how tight the configured quotas are.
func TestRateLimiter_PremiumBypassesGeneralTiers(t *testing.T) {
	tight := config.RateLimitConfig{
		AnonymousPerHour:     1,
		AuthenticatedPerHour: 2,
		PremiumPerHour:       5000,
	}
	rl := middleware.NewRateLimiter(middleware.NewMemoryCounterStore(), tight, zap.NewNop())

	identity := auth.Identity{ID: "user-2", Email: "premium@example.com", IsPremium: true}
	router := limitedRouter(rl, func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), identity))
		c.Next()
	})

	for i := 0; i < 50; i++ {
		w := get(router)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"), "bypassed requests carry no quota headers")
	}
}

// The premium tier only meters the routes that carry it.
func TestRateLimiter_PremiumTierQuota(t *testing.T) {
	tight := config.RateLimitConfig{
		AnonymousPerHour:     60,
		AuthenticatedPerHour: 1000,
		PremiumPerHour:       5,
	}
	rl := middleware.NewRateLimiter(middleware.NewMemoryCounterStore(), tight, zap.NewNop())

	identity := auth.Identity{ID: "user-3", Email: "premium@example.com", IsPremium: true}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), identity))
		c.Next()
	})
	router.GET("/test", rl.Premium(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 5; i++ {
		w := get(router)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	}

	w := get(router)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestMemoryCounterStore_WindowExpiry(t *testing.T) {
	store := middleware.NewMemoryCounterStore()

	n, err := store.Incr(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	time.Sleep(20 * time.Millisecond)

	n, err = store.Incr(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "a fresh window starts counting from scratch")
}

func setupAuthenticator(t *testing.T) (*middleware.Authenticator, *token.Manager, *models.User) {
	t.Helper()

	userRepo := mocks.NewMockUserRepository()
	tokens := token.NewManager("test-secret", time.Hour)
	authService := service.NewAuthService(userRepo, tokens)

	user, _, err := authService.Register(context.Background(), &models.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	return middleware.NewAuthenticator(tokens, authService), tokens, user
}

func authRouter(a *middleware.Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", a.Required(), func(c *gin.Context) {
		caller, _ := auth.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": caller.ID})
	})
	router.GET("/premium", a.Required(), middleware.RequirePremium(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAuthenticator_Required(t *testing.T) {
	a, tokens, user := setupAuthenticator(t)
	router := authRouter(a)

	raw, err := tokens.Generate(user.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID)
}

func TestAuthenticator_Required_Failures(t *testing.T) {
	a, tokens, _ := setupAuthenticator(t)
	router := authRouter(a)

	// Token for a user that does not exist anymore.
	orphan, err := tokens.Generate("deleted-user")
	require.NoError(t, err)

	headers := map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"garbage":      "Bearer not-a-token",
		"orphan token": "Bearer " + orphan,
	}

	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/private", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestRequirePremium(t *testing.T) {
	a, tokens, user := setupAuthenticator(t)
	router := authRouter(a)

	raw, err := tokens.Generate(user.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/premium", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PREMIUM_REQUIRED")
}
