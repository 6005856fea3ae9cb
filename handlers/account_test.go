package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountProfile(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	tok := env.signup(t, "Frank", "frank@example.com")

	w := env.do(t, http.MethodPut, "/api/user/profile", tok.AccessToken, map[string]interface{}{
		"name":           "Frank Ocean",
		"profilePicture": map[string]string{"url": "https://cdn.test/a.png", "publicId": "avatars/x/a.png"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/user/profile", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		User struct {
			Name           string `json:"name"`
			ProfilePicture string `json:"profilePicture"`
		} `json:"user"`
	}
	decode(t, w, &got)
	assert.Equal(t, "Frank Ocean", got.User.Name)
	assert.Equal(t, "https://cdn.test/a.png", got.User.ProfilePicture)

	w = env.do(t, http.MethodPut, "/api/user/profile", tok.AccessToken, map[string]string{"name": "R2D2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	tok := env.signup(t, "Grace", "grace@example.com")

	w := env.do(t, http.MethodPut, "/api/user/password", tok.AccessToken, map[string]string{"currentPassword": "Wrong0ne!", "newPassword": "N3wPassw0rd!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPut, "/api/user/password", tok.AccessToken, map[string]string{"currentPassword": strongPassword, "newPassword": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/user/password", tok.AccessToken, map[string]string{"currentPassword": strongPassword, "newPassword": "N3wPassw0rd!"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "grace@example.com", "password": "N3wPassw0rd!"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func multipartImage(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(env *testEnv, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.r.ServeHTTP(w, req)
	return w
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func TestUploadStoresImage(t *testing.T) {
	store := &fakeStore{}
	env := newTestEnv(t, envOptions{store: store})
	tok := env.signup(t, "Heidi", "heidi@example.com")

	body, ct := multipartImage(t, "me.png", "image/png", pngHeader)
	w := upload(env, tok.AccessToken, body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got map[string]string
	decode(t, w, &got)
	assert.True(t, strings.HasPrefix(got["publicId"], "avatars/"+tok.User.ID+"/"))
	assert.True(t, strings.HasSuffix(got["publicId"], ".png"))
	assert.Equal(t, "https://cdn.test/"+got["publicId"], got["url"])
	assert.Len(t, store.objects, 1)
	assert.Equal(t, pngHeader, store.objects[got["publicId"]])

	body, ct = multipartImage(t, "notes.txt", "text/plain", []byte("hello"))
	w = upload(env, tok.AccessToken, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartImage(t, "big.png", "image/png", bytes.Repeat([]byte("x"), 1<<20+10))
	w = upload(env, tok.AccessToken, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadWithoutStore(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	tok := env.signup(t, "Ivan", "ivan@example.com")
	body, ct := multipartImage(t, "me.png", "image/png", []byte("png"))
	w := upload(env, tok.AccessToken, body, ct)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadRejectsContentNotMatchingAnImage(t *testing.T) {
	store := &fakeStore{}
	env := newTestEnv(t, envOptions{store: store})
	tok := env.signup(t, "Judy", "judy@example.com")

	body, ct := multipartImage(t, "x.svg", "image/svg+xml", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
	w := upload(env, tok.AccessToken, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartImage(t, "x.png", "image/png", []byte("<html><script>alert(1)</script></html>"))
	w = upload(env, tok.AccessToken, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.objects)
}

func TestReplacingAvatarRemovesOldUpload(t *testing.T) {
	store := &fakeStore{}
	env := newTestEnv(t, envOptions{store: store})
	tok := env.signup(t, "Karl", "karl@example.com")

	setAvatar := func() string {
		body, ct := multipartImage(t, "me.png", "image/png", pngHeader)
		w := upload(env, tok.AccessToken, body, ct)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var up map[string]string
		decode(t, w, &up)
		w = env.do(t, http.MethodPut, "/api/user/profile", tok.AccessToken, map[string]interface{}{
			"name":           "Karl",
			"profilePicture": up,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return up["publicId"]
	}

	first := setAvatar()
	second := setAvatar()
	assert.NotContains(t, store.objects, first)
	assert.Contains(t, store.objects, second)
	assert.Len(t, store.objects, 1)
}
