// Package api defines the response envelope and error codes shared by
// handlers and middleware.
package api

import "github.com/gin-gonic/gin"

// Error codes carried in the error envelope. The HTTP status is picked
// per code by the responder.
const (
	CodeURLNotFound        = "URL_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeURLExpired         = "URL_EXPIRED"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeCodeExists         = "CODE_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodePremiumRequired    = "PREMIUM_REQUIRED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidURL         = "INVALID_URL"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeSpaceExhausted     = "CODE_SPACE_EXHAUSTED"
	CodeServerError        = "SERVER_ERROR"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// Success writes the success envelope.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessWithToken writes the success envelope with a top-level token,
// used by register and login.
func SuccessWithToken(c *gin.Context, status int, data any, token string) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
		"token":   token,
	})
}

// Fail writes the error envelope and aborts the chain.
func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Success: false,
		Error:   ErrorBody{Code: code, Message: message},
	})
}

// FailWithDetails is Fail with a free-form details payload, used for
// request validation.
func FailWithDetails(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, errorResponse{
		Success: false,
		Error:   ErrorBody{Code: code, Message: message, Details: details},
	})
}
