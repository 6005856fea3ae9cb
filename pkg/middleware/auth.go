package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/pkg/logger"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey      = "claims"
	UserIDKey      = "userID"
	AccessTokenKey = "accessToken"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Blacklist reports revoked access tokens.
type Blacklist interface {
	Contains(ctx context.Context, token string) (bool, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier.
// bl may be nil when revocation is not tracked.
func AuthMiddleware(ver Verifier, bl Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		token, ok := BearerToken(auth)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if bl != nil {
			revoked, err := bl.Contains(c.Request.Context(), token)
			if err != nil {
				logger.Errorf("blacklist lookup failed: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debugf("token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, sub)
		c.Set(AccessTokenKey, token)
		c.Next()
	}
}

// UserID returns the authenticated subject, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// subjectKey picks the rate limit key: the authenticated subject when present, else the client IP.
func subjectKey(c *gin.Context) string {
	if sub := UserID(c); sub != "" {
		return "sub:" + sub
	}
	if v, ok := c.Get(ClaimsKey); ok {
		if cm, ok2 := v.(map[string]interface{}); ok2 {
			if sub, ok3 := cm["sub"].(string); ok3 && sub != "" {
				return "sub:" + sub
			}
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
