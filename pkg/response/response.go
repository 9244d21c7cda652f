package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a success payload as-is.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// List writes a paginated collection as {"data": ..., "pagination": ...}.
func List(c *gin.Context, data any, pagination any) {
	c.JSON(http.StatusOK, gin.H{"data": data, "pagination": pagination})
}

// Data writes a plain collection as {"data": ...}.
func Data(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Error writes the uniform error body {"error": message}.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// AbortError writes the error body and stops the handler chain. For use in
// middleware.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
