package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/handlers"
	"github.com/profilekit/profilekit/internal/config"
	"github.com/profilekit/profilekit/internal/database"
	"github.com/profilekit/profilekit/internal/identity"
	"github.com/profilekit/profilekit/internal/profiles"
	"github.com/profilekit/profilekit/internal/projects"
	"github.com/profilekit/profilekit/internal/render"
	"github.com/profilekit/profilekit/internal/sessions"
	"github.com/profilekit/profilekit/internal/storage"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/metrics"
	"github.com/profilekit/profilekit/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v oidc=%v minio=%v chrome=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OIDC.Issuer != "", cfg.MinIO.Endpoint != "", cfg.Render.ChromeURL != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(), gin.Recovery())

	// Lightweight CORS middleware: set common headers and answer preflight requests.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Redis backs sessions, the access token blacklist and the shared rate limiter.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = client.Close()
		} else {
			redisClient = client
			defer func() { _ = redisClient.Close() }()
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	var (
		mongoClient  *mongo.Client
		blobs        storage.BlobStore
		pdfExporter  *render.PDFExporter
		oidcVerifier *identity.OIDCVerifier
	)
	var (
		userRepo     users.UserRepository = users.NewMemoryUserRepository()
		projectRepo  projects.Repository  = projects.NewMemoryRepo()
		profileRepo  profiles.Repository  = profiles.NewMemoryRepo()
		sessionsRepo sessions.Repository  = sessions.NewMemoryRepository()
		blacklist    sessions.Blacklist   = sessions.NewMemoryBlacklist()
		exporter     render.Exporter      = render.HTMLExporter{}
	)

	if cfg.MongoDB.URI != "" {
		mongoClient = connectMongo(ctx, cfg)
		if mongoClient != nil {
			defer func() { _ = mongoClient.Disconnect(context.Background()) }()
			db := mongoClient.Database(cfg.MongoDB.Database)
			if err := database.EnsureIndexes(ctx, db); err != nil {
				logger.Warnf("ensure indexes: %v", err)
			}
			userRepo = users.NewMongoUserRepository(db.Collection(database.UsersCollection))
			projectRepo = projects.NewMongoRepo(db.Collection(database.ProjectsCollection))
			profileRepo = profiles.NewMongoRepo(db.Collection(database.ProfilesCollection))
			sessionsRepo = sessions.NewMongoRepository(db.Collection(database.SessionsCollection))
		}
	}
	if mongoClient == nil {
		logger.Warnf("running on in-memory repositories; data is lost on restart")
	}
	if redisClient != nil {
		sessionsRepo = sessions.NewRedisRepository(redisClient, "")
		blacklist = sessions.NewRedisBlacklist(redisClient)
		logger.Infof("using Redis for sessions and token blacklist")
	}

	var verifiers identity.Chain
	if cfg.JWT.Secret != "" {
		verifiers = append(verifiers, identity.NewJWTVerifier(cfg.JWT.Secret))
	} else {
		logger.Warnf("JWT_SECRET not set: local sign-in is disabled")
	}
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := identity.NewOIDCVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			oidcVerifier = ver
			verifiers = append(verifiers, ver)
		}
	}

	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("blob store unavailable, uploads disabled: %v", err)
		} else {
			blobs = store
		}
	}

	if cfg.Render.ChromeURL != "" {
		pdfExporter = render.NewPDFExporter(cfg.Render.ChromeURL, cfg.Render.Timeout)
		exporter = render.Fallback{Primary: pdfExporter}
	}

	usersSvc := users.NewService(userRepo, blobs)
	sessionsSvc := sessions.NewService(sessionsRepo, cfg.JWT.RefreshTokenTTL)
	profilesSvc := profiles.NewService(profileRepo, projectRepo)
	projectsSvc := projects.NewService(projectRepo, profilesSvc)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when every configured dependency answers
	r.GET("/ready", func(c *gin.Context) {
		rctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{}
		check := func(name string, configured bool, ping func() error) {
			if !configured {
				deps[name] = true
				return
			}
			ok := ping() == nil
			deps[name] = ok
			ready = ready && ok
		}
		check("mongo", cfg.MongoDB.URI != "", func() error {
			if mongoClient == nil {
				return errors.New("not connected")
			}
			return mongoClient.Ping(rctx, nil)
		})
		check("redis", cfg.Redis.Host != "", func() error {
			if redisClient == nil {
				return errors.New("not connected")
			}
			return redisClient.Ping(rctx).Err()
		})
		check("blob", cfg.MinIO.Endpoint != "", func() error {
			if blobs == nil {
				return errors.New("not configured")
			}
			return blobs.Ping(rctx)
		})
		check("oidc", cfg.OIDC.Issuer != "", func() error {
			if oidcVerifier == nil {
				return errors.New("verifier not initialized")
			}
			return nil
		})
		// the browser is optional: exports fall back to HTML
		if pdfExporter != nil {
			deps["chrome"] = pdfExporter.Ping(rctx) == nil
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.NewAuthHandler(cfg, usersSvc, sessionsSvc, blacklist).Register(r.Group("/"))
	handlers.NewPortfolioHandler(profilesSvc).Register(r)
	handlers.RegisterSwagger(r)

	api := r.Group("/api", middleware.AuthMiddleware(verifiers, blacklist))
	handlers.NewAccountHandler(usersSvc).Register(api)
	handlers.NewUploadHandler(blobs, cfg.Upload.MaxBytes).Register(api)
	handlers.NewProjectsHandler(projectsSvc).Register(api)
	handlers.NewProfilesHandler(profilesSvc, exporter).Register(api)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting profilekit on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}

// connectMongo retries with backoff to tolerate startup races. It returns nil
// when every attempt failed.
func connectMongo(ctx context.Context, cfg *config.Config) *mongo.Client {
	const maxAttempts = 5
	backoff := time.Second
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			return client
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil
}
