package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/response"
)

// ContextKeyToken is the Gin context key for the caller's bearer token.
const ContextKeyToken = "token"

// RequireBearer extracts the caller's bearer token and attaches it to the
// request context so outbound API calls forward it. The token is not verified
// here: the remote API owns sessions.
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		c.Set(ContextKeyToken, token)
		c.Request = c.Request.WithContext(client.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

// GetToken retrieves the bearer token set by RequireBearer.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// Browsers cannot set headers on a WebSocket handshake.
	return c.Query("token")
}
