package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/workhivehq/workhive/pkg/errors"
	"github.com/workhivehq/workhive/pkg/logger"
	"github.com/workhivehq/workhive/pkg/response"
)

// Recovery converts panics into 500 responses with a logged stack trace.
func Recovery() gin.HandlerFunc {
	log := logger.WithModule("recovery")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				response.Error(c, apperrors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}
