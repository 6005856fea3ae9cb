package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/pkg/logger"
)

// respondError maps service errors onto HTTP statuses.
// Unknown errors are logged and reported as 500 without details.
func respondError(c *gin.Context, err error) {
	if ve, ok := common.AsValidation(err); ok {
		body := gin.H{"error": ve.Message}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, common.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondErrorFor is respondError with a 404 body naming the missing resource.
func respondErrorFor(c *gin.Context, err error, resource string) {
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
		return
	}
	respondError(c, err)
}

// bindJSON decodes the request body and answers 400 on malformed input.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
