package server

import (
	"time"

	"bid-ledger/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
		"client":  c.ClientIP(),
	}
	if c.Writer.Status() >= 500 {
		utils.Error("HTTP Request", fields)
		return
	}
	utils.Info("HTTP Request", fields)
}
