package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONList sends a structured JSON response with a pagination block, so the
// admin view can distinguish an empty result set from a failed load.
func JSONList(c *gin.Context, status int, data any, page, limit, total int, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}
