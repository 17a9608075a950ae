package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/exstem-paper/internal/client"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxRequestIDLength bounds client-supplied IDs; longer ones are replaced.
const maxRequestIDLength = 128

// RequestIDMiddleware assigns every request an ID, reusing a sane incoming
// X-Request-ID, and forwards it on calls to the remote API.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Request = c.Request.WithContext(client.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}
