package handler

import (
	"net/http"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID))
	api.SuccessWithToken(c, http.StatusCreated, user.Profile(), token)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	api.SuccessWithToken(c, http.StatusOK, user.Profile(), token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := auth.FromContext(c.Request.Context())
	if !ok {
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	api.Success(c, http.StatusOK, user.Profile())
}

// Logout is stateless: tokens are not tracked server side, the client
// just discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	api.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}
