package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/config"
	"github.com/profilekit/profilekit/internal/identity"
	"github.com/profilekit/profilekit/internal/profiles"
	"github.com/profilekit/profilekit/internal/projects"
	"github.com/profilekit/profilekit/internal/render"
	"github.com/profilekit/profilekit/internal/sessions"
	"github.com/profilekit/profilekit/internal/storage"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const strongPassword = "Passw0rd!"

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (*storage.Object, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = b
	return &storage.Object{Key: key, URL: "https://cdn.test/" + key, ContentType: contentType, Size: int64(len(b))}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type testEnv struct {
	r        *gin.Engine
	projects *projects.MemoryRepo
	profiles *profiles.MemoryRepo
}

type envOptions struct {
	store    storage.BlobStore
	exporter render.Exporter
	sessions sessions.Repository
	// noSecret leaves JWT_SECRET unset.
	noSecret bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	if !opts.noSecret {
		cfg.JWT.Secret = "handler-test-secret-32-bytes-xxxx"
	}
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	if opts.sessions == nil {
		opts.sessions = sessions.NewMemoryRepository()
	}

	usersSvc := users.NewService(users.NewMemoryUserRepository(), opts.store)
	sessionsSvc := sessions.NewService(opts.sessions, time.Hour)
	bl := sessions.NewMemoryBlacklist()

	projRepo := projects.NewMemoryRepo()
	profRepo := profiles.NewMemoryRepo()
	profSvc := profiles.NewService(profRepo, projRepo)
	projSvc := projects.NewService(projRepo, profSvc)

	r := gin.New()
	NewAuthHandler(cfg, usersSvc, sessionsSvc, bl).Register(r.Group("/"))
	NewPortfolioHandler(profSvc).Register(r)

	api := r.Group("/api", middleware.AuthMiddleware(identity.NewJWTVerifier(cfg.JWT.Secret), bl))
	NewAccountHandler(usersSvc).Register(api)
	NewUploadHandler(opts.store, 1<<20).Register(api)
	NewProjectsHandler(projSvc).Register(api)
	NewProfilesHandler(profSvc, opts.exporter).Register(api)

	return &testEnv{r: r, projects: projRepo, profiles: profRepo}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// signup registers a user and returns its tokens.
func (e *testEnv) signup(t *testing.T, name, email string) authResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{"name": name, "email": email, "password": strongPassword})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out authResponse
	decode(t, w, &out)
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
