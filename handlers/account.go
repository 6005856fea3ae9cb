package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// AccountHandler serves the signed-in user's own account.
type AccountHandler struct {
	usersSvc *users.Service
}

func NewAccountHandler(u *users.Service) *AccountHandler {
	return &AccountHandler{usersSvc: u}
}

// Register routes under /user on an authenticated group.
func (h *AccountHandler) Register(rg *gin.RouterGroup) {
	u := rg.Group("/user")
	u.GET("/profile", h.GetProfile)
	u.PUT("/profile", h.UpdateProfile)
	u.PUT("/password", h.ChangePassword)
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	u, err := h.usersSvc.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondErrorFor(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name           string         `json:"name"`
		ProfilePicture *models.Avatar `json:"profilePicture"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.usersSvc.UpdateProfile(c.Request.Context(), middleware.UserID(c), req.Name, req.ProfilePicture)
	if err != nil {
		respondErrorFor(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u.Public()})
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !bindJSON(c, &req) {
		return
	}
	err := h.usersSvc.ChangePassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword)
	if errors.Is(err, common.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}
	if err != nil {
		respondErrorFor(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
