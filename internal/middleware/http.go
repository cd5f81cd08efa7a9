package middleware

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const OperatorHeader = "X-User-Id"

// RequestLogger emits one structured line per HTTP request.
func RequestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if op := auth.GetOperatorID(c.Request.Context()); op != "" {
			fields = append(fields, zap.String("operator_id", op))
		}

		switch {
		case status >= 500:
			log.Error("http_request", fields...)
		case status >= 400:
			log.Warn("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

// Operator copies the X-User-Id header onto the request context so ledger
// entries are attributed to the acting user.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(OperatorHeader); id != "" {
			c.Request = c.Request.WithContext(auth.WithOperatorID(c.Request.Context(), id))
		}
		c.Next()
	}
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AbortWithError writes err as {code, message} with the status mapped from
// its kind.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperror.HTTPStatus(err), ErrorResponse{
		Code:    string(apperror.KindOf(err)),
		Message: apperror.MessageOf(err),
	})
}

// BindJSON decodes the request body into v, aborting with a VALIDATION_ERROR
// on malformed input. It reports whether the handler may continue.
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		AbortWithError(c, apperror.New(apperror.KindValidation, "malformed request body", err))
		return false
	}
	return true
}
