package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken", "black-token":
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "test@example.com"}}, nil
	case "nosub":
		return &fakeToken{data: map[string]interface{}{"email": "x@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

type fakeBlacklist struct {
	tokens map[string]bool
	err    error
}

func (b *fakeBlacklist) Contains(_ context.Context, token string) (bool, error) {
	return b.tokens[token], b.err
}

func serve(t *testing.T, bl Blacklist, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, bl), func(c *gin.Context) {
		claims, ok := c.Get(ClaimsKey)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"claims": claims, "userID": UserID(c), "token": c.GetString(AccessTokenKey)})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serve(t, nil, "").Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serve(t, nil, "BadHeader").Code)
	require.Equal(t, http.StatusUnauthorized, serve(t, nil, "Basic abc").Code)
	require.Equal(t, http.StatusUnauthorized, serve(t, nil, "Bearer ").Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serve(t, nil, "Bearer forged").Code)
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serve(t, nil, "Bearer nosub").Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serve(t, nil, "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	assert.Equal(t, "user1", got["userID"])
	assert.Equal(t, "goodtoken", got["token"])
	assert.Contains(t, got, "claims")
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	bl := &fakeBlacklist{tokens: map[string]bool{"black-token": true}}
	require.Equal(t, http.StatusUnauthorized, serve(t, bl, "Bearer black-token").Code)
	require.Equal(t, http.StatusOK, serve(t, bl, "Bearer goodtoken").Code)
}

func TestAuthMiddleware_BlacklistFailure(t *testing.T) {
	bl := &fakeBlacklist{err: errors.New("redis down")}
	require.Equal(t, http.StatusInternalServerError, serve(t, bl, "Bearer goodtoken").Code)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("abc")
	assert.False(t, ok)
}
