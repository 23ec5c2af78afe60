package handler

import (
	"net/http"
	"strconv"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type URLHandler struct {
	service service.URLService
	baseURL string
	logger  *zap.Logger
}

func NewURLHandler(service service.URLService, baseURL string, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *URLHandler) Create(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	var input models.CreateURLInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	u, err := h.service.Create(c.Request.Context(), caller, &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("url created",
		zap.String("short_code", u.ShortCode),
		zap.String("user_id", caller.ID),
	)
	api.Success(c, http.StatusCreated, u.Record(h.baseURL))
}

func (h *URLHandler) List(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	input := models.ListURLsInput{
		UserID: caller.ID,
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
		SortBy: c.DefaultQuery("sortBy", "created_at"),
		Order:  c.DefaultQuery("order", "desc"),
	}

	urls, total, err := h.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	records := make([]*models.URLRecord, 0, len(urls))
	for i := range urls {
		records = append(records, urls[i].Record(h.baseURL))
	}

	pages := int(total) / input.Limit
	if int(total)%input.Limit != 0 {
		pages++
	}

	api.Success(c, http.StatusOK, models.URLPage{
		URLs: records,
		Pagination: models.Pagination{
			Total: total,
			Pages: pages,
			Page:  input.Page,
			Limit: input.Limit,
		},
	})
}

// Details serves the authenticated owner view of a URL.
func (h *URLHandler) Details(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	u, err := h.service.GetOwnedByShortCode(c.Request.Context(), caller, c.Param("shortCode"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	api.Success(c, http.StatusOK, u.Record(h.baseURL))
}

// PublicDetails serves the unauthenticated view. Private URLs stay
// visible to their owner only.
func (h *URLHandler) PublicDetails(c *gin.Context) {
	u, err := h.service.GetByShortCode(c.Request.Context(), c.Param("shortCode"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	api.Success(c, http.StatusOK, u.Record(h.baseURL))
}

func (h *URLHandler) Update(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	var input models.UpdateURLInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	u, err := h.service.Update(c.Request.Context(), caller, c.Param("id"), &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	api.Success(c, http.StatusOK, u.Record(h.baseURL))
}

func (h *URLHandler) Delete(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	api.Success(c, http.StatusOK, gin.H{"message": "url deleted"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
