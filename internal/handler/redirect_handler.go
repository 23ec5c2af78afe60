package handler

import (
	"net/http"
	"time"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

type RedirectHandler struct {
	service   service.URLService
	processor service.ClickProcessor
	baseURL   string
	logger    *zap.Logger
}

func NewRedirectHandler(service service.URLService, processor service.ClickProcessor, baseURL string, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		service:   service,
		processor: processor,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Redirect resolves a short code and answers 302. Click recording is
// handed to the processor and never delays or fails the response.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	code := c.Param("shortCode")

	u, err := h.service.Resolve(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if u.Expired(time.Now()) {
		api.Fail(c, http.StatusGone, api.CodeURLExpired, "url has expired")
		return
	}

	event := &models.ClickEvent{
		URLID:      u.ID,
		ShortCode:  code,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Referrer:   c.Request.Referer(),
		OccurredAt: time.Now(),
	}
	if err := h.processor.Enqueue(c.Request.Context(), event); err != nil {
		h.logger.Debug("click not recorded", zap.String("short_code", code), zap.Error(err))
	}

	c.Redirect(http.StatusFound, u.OriginalURL)
}

// QRCode renders the short link as a PNG.
func (h *RedirectHandler) QRCode(c *gin.Context) {
	code := c.Param("shortCode")

	u, err := h.service.GetByShortCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	png, err := qrcode.Encode(h.baseURL+"/"+u.ShortCode, qrcode.Medium, 256)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
