package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"projecttracker/internal/pkg/response"
)

// RequestLogger logs every request and recovers from panics.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				entry(log, c, start).WithField("stack", string(debug.Stack())).
					Error(fmt.Sprintf("panic: %v", recovered))
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
				return
			}

			e := entry(log, c, start)
			if len(c.Errors) > 0 {
				e = e.WithField("errors", c.Errors.String())
			}
			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				e.Error("request failed")
			case status >= http.StatusBadRequest:
				e.Warn("request rejected")
			default:
				e.Debug("request")
			}
		}()

		c.Next()
	}
}

func entry(log *logrus.Logger, c *gin.Context, start time.Time) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"role":       c.GetString("role"),
		"request_id": requestID(c),
		"latency":    time.Since(start).String(),
	})
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
