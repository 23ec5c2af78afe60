package middleware

import (
	"net/http"
	"strings"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/Muntazir86/short-it/internal/token"
	"github.com/gin-gonic/gin"
)

// Authenticator verifies bearer tokens and attaches the caller
// identity to the request context. The user is re-fetched on every
// request so deleted accounts stop authenticating even with a live
// token.
type Authenticator struct {
	tokens *token.Manager
	users  service.AuthService
}

func NewAuthenticator(tokens *token.Manager, users service.AuthService) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Required rejects requests without a valid bearer token. Every
// failure mode collapses into the same generic 401.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := a.authenticate(c)
		if !ok {
			api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
			return
		}

		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), identity))
		c.Next()
	}
}

// Optional attaches the identity when a valid token is present and
// passes anonymous requests through untouched.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := a.authenticate(c); ok {
			c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), identity))
		}
		c.Next()
	}
}

// RequirePremium guards premium-only routes. It must run after
// Required.
func RequirePremium() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := auth.FromContext(c.Request.Context())
		if !ok {
			api.Fail(c, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
			return
		}
		if !caller.IsPremium {
			api.Fail(c, http.StatusForbidden, api.CodePremiumRequired, "premium account required")
			return
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (auth.Identity, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Identity{}, false
	}

	userID, err := a.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return auth.Identity{}, false
	}

	user, err := a.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		return auth.Identity{}, false
	}

	return auth.Identity{
		ID:        user.ID,
		Email:     user.Email,
		IsPremium: user.IsPremium,
	}, true
}
