package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/mindwell-care/mindwell-backend-go/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ErrorHandlingMiddleware recovers panics and converts deferred errors
// into the standard error envelope.
func ErrorHandlingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.WithFields(logrus.Fields{
					"panic":       recovered,
					"method":      c.Request.Method,
					"path":        c.Request.URL.Path,
					"stack_trace": string(debug.Stack()),
				}).Error("Panic recovered in API middleware")

				utils.SendError(c, http.StatusInternalServerError, "Internal server error")
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err

			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}).Error("API request error")

			if appErr, ok := err.(*errors.AppError); ok {
				utils.SendErrorWithDetails(c, appErr.Code, appErr.Message, appErr.Details)
				return
			}
			utils.SendError(c, http.StatusInternalServerError, "Internal server error")
		}
	}
}
