package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes the standard envelope with a 200 status. data is usually
// a gin.H but any JSON-serializable value works.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}
