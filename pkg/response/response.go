package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
)

// JSON sends a success payload as-is. The booking page and dashboard consume
// flat documents, not an envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Success responds with the `{"success": true}` body used by mutation
// endpoints.
func Success(c *gin.Context) {
	JSON(c, http.StatusOK, gin.H{"success": true})
}

// Error normalises err and sends the flat `{"error": "..."}` shape.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}
