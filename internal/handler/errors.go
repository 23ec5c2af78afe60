package handler

import (
	"errors"
	"net/http"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/repository"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError is the single place where domain errors become HTTP
// responses. Anything unrecognized is logged and flattened into a 500
// so internals never leak to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrURLNotFound):
		api.Fail(c, http.StatusNotFound, api.CodeURLNotFound, "url not found")
	case errors.Is(err, repository.ErrUserNotFound):
		api.Fail(c, http.StatusNotFound, api.CodeUserNotFound, "user not found")
	case errors.Is(err, repository.ErrEmailExists):
		api.Fail(c, http.StatusConflict, api.CodeEmailExists, "email already registered")
	case errors.Is(err, repository.ErrCodeExists):
		api.Fail(c, http.StatusConflict, api.CodeCodeExists, "short code already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		api.Fail(c, http.StatusUnauthorized, api.CodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, service.ErrNotOwner):
		api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "not authorized for this resource")
	case errors.Is(err, service.ErrPremiumRequired):
		api.Fail(c, http.StatusForbidden, api.CodePremiumRequired, "premium account required")
	case errors.Is(err, service.ErrInvalidURL):
		api.Fail(c, http.StatusBadRequest, api.CodeInvalidURL, "invalid url format")
	case errors.Is(err, service.ErrInvalidCode):
		api.Fail(c, http.StatusBadRequest, api.CodeInvalidURL, "custom code must be 3-20 characters of letters, digits, - or _")
	case errors.Is(err, service.ErrCodeSpaceExhausted):
		logger.Error("short code generation exhausted", zap.Error(err))
		api.Fail(c, http.StatusInternalServerError, api.CodeSpaceExhausted, "could not allocate a short code")
	default:
		logger.Error("unhandled error", zap.Error(err))
		api.Fail(c, http.StatusInternalServerError, api.CodeServerError, "internal server error")
	}
}

// respondBindError reports request-body validation failures.
func respondBindError(c *gin.Context, err error) {
	api.FailWithDetails(c, http.StatusBadRequest, api.CodeInvalidURL, "invalid request body", err.Error())
}
