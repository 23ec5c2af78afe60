package handler

import (
	"net/http"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/middleware"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(
	authService service.AuthService,
	urlService service.URLService,
	analyticsService service.AnalyticsService,
	clickProcessor service.ClickProcessor,
	authenticator *middleware.Authenticator,
	rateLimiter *middleware.RateLimiter,
	baseURL string,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())

	router.Use(func(c *gin.Context) {
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	authHandler := NewAuthHandler(authService, logger)
	urlHandler := NewURLHandler(urlService, baseURL, logger)
	analyticsHandler := NewAnalyticsHandler(analyticsService, baseURL, logger)
	redirectHandler := NewRedirectHandler(urlService, clickProcessor, baseURL, logger)

	// Identity must be resolved before the limiter so authenticated
	// callers get their own quota instead of the per-IP one.
	limited := rateLimiter.Middleware()

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authenticator.Optional(), limited, authHandler.Register)
			authGroup.POST("/login", authenticator.Optional(), limited, authHandler.Login)
			authGroup.POST("/logout", authenticator.Required(), limited, authHandler.Logout)
			authGroup.GET("/me", authenticator.Required(), limited, authHandler.Me)
		}

		urls := v1.Group("/urls")
		{
			urls.POST("", authenticator.Required(), limited, urlHandler.Create)
			urls.GET("", authenticator.Required(), limited, urlHandler.List)
			urls.GET("/details/:shortCode", authenticator.Required(), limited, urlHandler.Details)
			urls.GET("/:shortCode", authenticator.Optional(), limited, urlHandler.PublicDetails)
			urls.PATCH("/:id", authenticator.Required(), middleware.RequirePremium(), rateLimiter.Premium(), urlHandler.Update)
			urls.DELETE("/:id", authenticator.Required(), limited, urlHandler.Delete)
		}

		analytics := v1.Group("/analytics", authenticator.Required(), limited)
		{
			analytics.GET("/urls/:id", analyticsHandler.URLAnalytics)
			analytics.GET("/dashboard", analyticsHandler.Dashboard)
		}

		v1.GET("/qrcode/:shortCode", authenticator.Optional(), limited, redirectHandler.QRCode)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/:shortCode", authenticator.Optional(), limited, redirectHandler.Redirect)

	return router
}

func HealthCheck(c *gin.Context) {
	api.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
