package middleware

import (
	"context"
	"errors"
	"time"

	"fridge-recipes/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Timeout bounds the request context. Handlers that return after the
// deadline without writing get a 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.Writer.Header().Get("X-Request-ID")),
				zap.Duration("timeout", d),
			)
			common.WriteError(c, common.ErrRequestTimeout)
		}
	}
}
