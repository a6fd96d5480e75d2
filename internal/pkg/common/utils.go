package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID returns a new random UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}

// WriteError aborts the request with the error's status and code.
func WriteError(c *gin.Context, err *CustomError) {
	c.AbortWithStatusJSON(err.Status, ErrorResponse{
		Code:    err.Code,
		Error:   err.Message,
		Details: err.Detail(),
	})
}

// RequestID returns the request id set by the requestid middleware, or a fresh one.
func RequestID(c *gin.Context) string {
	if id := c.Writer.Header().Get("X-Request-ID"); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}
