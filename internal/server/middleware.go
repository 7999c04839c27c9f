package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
)

const requestIDContextKey = "request_id"

// RequestID reuses the caller's X-Request-ID or assigns a new one, and makes
// it available to outgoing cart calls and published events.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(clients.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDContextKey, requestID)
		c.Request = c.Request.WithContext(clients.WithRequestID(c.Request.Context(), requestID))
		c.Header(clients.HeaderRequestID, requestID)

		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	logger := logging.NewLoggerV2("http")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("Request handled", logging.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(requestIDContextKey),
		})
	}
}
