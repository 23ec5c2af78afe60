package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Muntazir86/short-it/internal/config"
	"github.com/Muntazir86/short-it/internal/geoip"
	"github.com/Muntazir86/short-it/internal/handler"
	"github.com/Muntazir86/short-it/internal/middleware"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/Muntazir86/short-it/internal/service/mocks"
	"github.com/Muntazir86/short-it/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://short.test"

type testEnv struct {
	router    *gin.Engine
	userRepo  *mocks.MockUserRepository
	urlRepo   *mocks.MockURLRepository
	clickRepo *mocks.MockClickRepository
	processor service.ClickProcessor
	tokens    *token.Manager
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := mocks.NewMockUserRepository()
	urlRepo := mocks.NewMockURLRepository()
	clickRepo := mocks.NewMockClickRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	logger := zap.NewNop()

	tokens := token.NewManager("test-secret", time.Hour)
	authService := service.NewAuthService(userRepo, tokens)
	urlService := service.NewURLService(urlRepo, cacheRepo, config.ShortenerConfig{
		CodeLength:    6,
		DefaultExpiry: 30 * 24 * time.Hour,
		PremiumExpiry: 365 * 24 * time.Hour,
	}, logger)
	analyticsService := service.NewAnalyticsService(urlRepo, clickRepo)

	processor := service.NewClickProcessor(clickRepo, urlRepo, geoip.NewStaticLocator(), logger)
	processor.Start()
	t.Cleanup(processor.Stop)

	authenticator := middleware.NewAuthenticator(tokens, authService)
	rateLimiter := middleware.NewRateLimiter(middleware.NewMemoryCounterStore(), config.RateLimitConfig{
		AnonymousPerHour:     1000,
		AuthenticatedPerHour: 1000,
		PremiumPerHour:       5000,
	}, logger)

	router := handler.NewRouter(
		authService,
		urlService,
		analyticsService,
		processor,
		authenticator,
		rateLimiter,
		testBaseURL,
		logger,
	)

	return &testEnv{
		router:    router,
		userRepo:  userRepo,
		urlRepo:   urlRepo,
		clickRepo: clickRepo,
		processor: processor,
		tokens:    tokens,
	}
}

func (e *testEnv) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Tester",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		Data  struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.Data.ID
}

func TestHealth(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "alice@example.com")

	w := env.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Tester",
		"email":    "alice@example.com",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_EXISTS")
}

func TestLogin_BadCredentials(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "alice@example.com")

	w := env.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthMe(t *testing.T) {
	env := setupEnv(t)
	bearer, userID := env.register(t, "alice@example.com")

	w := env.do(http.MethodGet, "/api/v1/auth/me", bearer, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
	assert.NotContains(t, w.Body.String(), "passwordHash")
}

func TestCreateURL(t *testing.T) {
	env := setupEnv(t)
	bearer, _ := env.register(t, "alice@example.com")

	w := env.do(http.MethodPost, "/api/v1/urls", bearer, gin.H{
		"originalUrl": "https://example.com",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			ShortCode string `json:"shortCode"`
			ShortURL  string `json:"shortUrl"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.ShortCode, 6)
	assert.Equal(t, testBaseURL+"/"+resp.Data.ShortCode, resp.Data.ShortURL)
}

func TestCreateURL_RequiresAuth(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/v1/urls", "", gin.H{
		"originalUrl": "https://example.com",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestCreateURL_CustomCodeNeedsPremium(t *testing.T) {
	env := setupEnv(t)
	bearer, _ := env.register(t, "alice@example.com")

	w := env.do(http.MethodPost, "/api/v1/urls", bearer, gin.H{
		"originalUrl": "https://example.com",
		"customCode":  "promo",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PREMIUM_REQUIRED")
}

func TestRedirect(t *testing.T) {
	env := setupEnv(t)
	bearer, _ := env.register(t, "alice@example.com")

	w := env.do(http.MethodPost, "/api/v1/urls", bearer, gin.H{
		"originalUrl": "https://example.com/landing",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID        string `json:"id"`
			ShortCode string `json:"shortCode"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	r := env.do(http.MethodGet, "/"+resp.Data.ShortCode, "", nil)

	assert.Equal(t, http.StatusFound, r.Code)
	assert.Equal(t, "https://example.com/landing", r.Header().Get("Location"))

	// The click lands asynchronously, after the redirect was answered.
	assert.Eventually(t, func() bool {
		return len(env.clickRepo.Clicks()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		u, err := env.urlRepo.GetByID(context.Background(), resp.Data.ID)
		return err == nil && u.Clicks == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedirect_UnknownCode(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/nosuch", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "URL_NOT_FOUND")
}

func TestRedirect_Expired(t *testing.T) {
	env := setupEnv(t)

	past := time.Now().Add(-time.Hour)
	u := &models.URL{
		UserID:      "user-1",
		OriginalURL: "https://example.com",
		ShortCode:   "oldone",
		ExpiresAt:   &past,
	}
	require.NoError(t, env.urlRepo.Create(context.Background(), u))

	w := env.do(http.MethodGet, "/oldone", "", nil)

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "URL_EXPIRED")

	// Expired hits never record a click.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, env.clickRepo.Clicks())
}

func TestUpdateURL_NonPremiumForbidden(t *testing.T) {
	env := setupEnv(t)
	bearer, _ := env.register(t, "alice@example.com")

	w := env.do(http.MethodPatch, "/api/v1/urls/url-1", bearer, gin.H{
		"isPrivate": true,
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PREMIUM_REQUIRED")
}

func TestDeleteURL_NotOwner(t *testing.T) {
	env := setupEnv(t)
	bearerA, _ := env.register(t, "alice@example.com")
	bearerB, _ := env.register(t, "bob@example.com")

	w := env.do(http.MethodPost, "/api/v1/urls", bearerA, gin.H{
		"originalUrl": "https://example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	d := env.do(http.MethodDelete, "/api/v1/urls/"+resp.Data.ID, bearerB, nil)

	assert.Equal(t, http.StatusUnauthorized, d.Code)
	assert.Contains(t, d.Body.String(), "UNAUTHORIZED")
}

func TestListURLs_Paginated(t *testing.T) {
	env := setupEnv(t)
	bearer, _ := env.register(t, "alice@example.com")

	for i := 0; i < 3; i++ {
		w := env.do(http.MethodPost, "/api/v1/urls", bearer, gin.H{
			"originalUrl": "https://example.com/page",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(http.MethodGet, "/api/v1/urls?page=1&limit=2", bearer, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			URLs       []json.RawMessage `json:"urls"`
			Pagination models.Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.URLs, 2)
	assert.Equal(t, int64(3), resp.Data.Pagination.Total)
	assert.Equal(t, 2, resp.Data.Pagination.Pages)
}

func TestQRCode(t *testing.T) {
	env := setupEnv(t)
	bearer, _ := env.register(t, "alice@example.com")

	w := env.do(http.MethodPost, "/api/v1/urls", bearer, gin.H{
		"originalUrl": "https://example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ShortCode string `json:"shortCode"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	q := env.do(http.MethodGet, "/api/v1/qrcode/"+resp.Data.ShortCode, "", nil)

	assert.Equal(t, http.StatusOK, q.Code)
	assert.Equal(t, "image/png", q.Header().Get("Content-Type"))
	assert.NotEmpty(t, q.Body.Bytes())
}

func TestAnalyticsDashboard(t *testing.T) {
	env := setupEnv(t)
	bearer, userID := env.register(t, "alice@example.com")

	w := env.do(http.MethodPost, "/api/v1/urls", bearer, gin.H{
		"originalUrl": "https://example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	env.clickRepo.SetOwner(created.Data.ID, userID)

	d := env.do(http.MethodGet, "/api/v1/analytics/dashboard", bearer, nil)

	require.Equal(t, http.StatusOK, d.Code, d.Body.String())

	var resp struct {
		Data models.Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(d.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.TotalURLs)
}
