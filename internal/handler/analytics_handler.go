package handler

import (
	"net/http"
	"time"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
	baseURL string
	logger  *zap.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, baseURL string, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *AnalyticsHandler) URLAnalytics(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	query := models.AnalyticsQuery{Period: c.Query("period")}
	if t, ok := queryDate(c, "startDate"); ok {
		query.StartDate = &t
	}
	if t, ok := queryDate(c, "endDate"); ok {
		query.EndDate = &t
	}

	analytics, err := h.service.URLAnalytics(c.Request.Context(), caller, c.Param("id"), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	api.Success(c, http.StatusOK, analytics)
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), caller)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	for i := range dashboard.TopURLs {
		dashboard.TopURLs[i].ShortURL = h.baseURL + "/" + dashboard.TopURLs[i].ShortCode
	}

	api.Success(c, http.StatusOK, dashboard)
}

func queryDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
