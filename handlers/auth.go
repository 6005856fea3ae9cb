package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/config"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/sessions"
	"github.com/profilekit/profilekit/internal/tokens"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// LoginRequest is the password login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	blacklist   sessions.Blacklist
}

// NewAuthHandler wires account and session services. bl may be nil, in which
// case logout only drops the refresh session.
func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service, bl sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s, blacklist: bl}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

func (h *AuthHandler) accessTTL() time.Duration {
	if h.cfg.JWT.AccessTokenTTL > 0 {
		return h.cfg.JWT.AccessTokenTTL
	}
	return 15 * time.Minute
}

// issue mints an access token and then a fresh refresh session for u, so a
// minting failure leaves no session behind.
func (h *AuthHandler) issue(c *gin.Context, status int, u *models.User) {
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.accessTTL())
	if err != nil {
		respondError(c, err)
		return
	}
	sess, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.Subject(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondTokens(c, status, u, access, sess)
}

func (h *AuthHandler) respondTokens(c *gin.Context, status int, u *models.User, access string, sess *sessions.Session) {
	c.JSON(status, gin.H{
		"user":         u.Public(),
		"accessToken":  access,
		"refreshToken": sess.RefreshToken,
		"expiresIn":    int(h.accessTTL().Seconds()),
	})
}

// Signup registers an account and logs it in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req users.SignupInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.usersSvc.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Infof("signup: user %s", u.Subject())
	h.issue(c, http.StatusCreated, u)
}

// Login checks email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issue(c, http.StatusOK, u)
}

// Refresh rotates the refresh session and returns a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}
	sess, err := h.sessionsSvc.Rotate(c.Request.Context(), req.RefreshToken, c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	u, err := h.usersSvc.Get(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = h.sessionsSvc.DeleteRefresh(c.Request.Context(), sess.RefreshToken)
			respondError(c, common.ErrInvalidToken)
			return
		}
		respondError(c, err)
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.accessTTL())
	if err != nil {
		_ = h.sessionsSvc.DeleteRefresh(c.Request.Context(), sess.RefreshToken)
		respondError(c, err)
		return
	}
	h.respondTokens(c, http.StatusOK, u, access, sess)
}

// Logout invalidates the refresh token and blacklists the presented access token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	if raw, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok && h.blacklist != nil {
		if claims, err := tokens.ParseAccessToken(h.cfg.JWT.Secret, raw); err == nil {
			if err := h.blacklist.Add(c.Request.Context(), raw, claims.RemainingTTL(time.Now())); err != nil {
				logger.Errorf("blacklist access token: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
				return
			}
		}
	}

	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
