// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/docs"
	"github.com/tbourn/emoto-backend/internal/config"
	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/http/handlers"
	"github.com/tbourn/emoto-backend/internal/http/middleware"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/services"
	"github.com/tbourn/emoto-backend/internal/sysutil"
	"github.com/tbourn/emoto-backend/internal/weather"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// profileRepoShim adapts the repository free functions to the
// services.ProfileRepo interface expected by the ProfileService.
type profileRepoShim struct{}

func (profileRepoShim) CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return repo.CreateProfile(ctx, db, p)
}

func (profileRepoShim) GetProfile(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	return repo.GetProfile(ctx, db, username)
}

func (profileRepoShim) GetProfileByPairCode(ctx context.Context, db *gorm.DB, code string) (*domain.Profile, error) {
	return repo.GetProfileByPairCode(ctx, db, code)
}

func (profileRepoShim) ProfileExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	return repo.ProfileExists(ctx, db, username)
}

func (profileRepoShim) PairCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	return repo.PairCodeExists(ctx, db, code)
}

func (profileRepoShim) UpdateProfile(ctx context.Context, db *gorm.DB, username string, cols map[string]any) error {
	return repo.UpdateProfile(ctx, db, username, cols)
}

func (profileRepoShim) UpdateWeather(ctx context.Context, db *gorm.DB, username string, s domain.WeatherSnapshot) error {
	return repo.UpdateWeather(ctx, db, username, s)
}

func (profileRepoShim) SetPartner(ctx context.Context, db *gorm.DB, username string, partner *string) error {
	return repo.SetPartner(ctx, db, username, partner)
}

func (profileRepoShim) ClearPartnerReferences(ctx context.Context, db *gorm.DB, username string) error {
	return repo.ClearPartnerReferences(ctx, db, username)
}

func (profileRepoShim) GetEmoto(ctx context.Context, db *gorm.DB, id uint) (*domain.Emoto, error) {
	return repo.GetEmoto(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to r. The
// weather cache is shared by every profile read.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identify: resolve the acting username
//  4. Logger + RedactingLogger: request-scoped logger and scrubbed access log
//  5. Recovery: capture panics after logger
//  6. Body size limiter and gzip
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per username/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, wc *weather.Cache, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, "emoto-backend")))
	r.Use(middleware.RequestID())
	r.Use(middleware.Identify())
	r.Use(middleware.Logger())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, username, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, username, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUsernameOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(db))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/weather cache
	profileSvc := services.NewProfileService(db, profileRepoShim{}, wc)
	profileSvc.MediaBaseURL = cfg.MediaBaseURL
	if cfg.Bounds.Latitude > 0 && cfg.Bounds.Longitude > 0 {
		profileSvc.Bounds = services.Bounds{Latitude: cfg.Bounds.Latitude, Longitude: cfg.Bounds.Longitude}
	}
	msgSvc := &services.MessageService{DB: db, MaxTextRunes: services.DefaultMaxTextRunes}
	emotoSvc := services.NewEmotoService(db)

	h := handlers.New(profileSvc, msgSvc, emotoSvc,
		handlers.WithMediaBaseURL(cfg.MediaBaseURL),
		handlers.WithIdempotencyTTL(cfg.IdempotencyTTL),
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Profiles
		api.POST("/profiles", h.CreateProfile)
		api.GET("/profiles/:username", h.GetProfileStatus)
		api.GET("/profiles/:username/partner", h.GetPartnerStatus)
		api.PUT("/profiles/:username/presence", h.SetPresence)
		api.PUT("/profiles/:username/location", h.UpdateLocation)
		api.PUT("/profiles/:username/emoto", h.SetCurrentEmoto)
		api.PUT("/profiles/:username/device-token", h.SetDeviceToken)

		// Pairing
		api.POST("/profiles/:username/pair", h.Pair)
		api.DELETE("/profiles/:username/pair", h.Unpair)

		// Emotos
		api.GET("/emotos", h.ListEmotos)
		api.GET("/emotos/:id", h.GetEmoto)
		api.POST("/emotos", h.CreateEmoto)

		// Messages
		api.GET("/messages", h.ListMessages)
		api.POST("/messages", h.PostMessage)
		api.GET("/messages/:id", h.GetMessage)
	}
}

// corsMiddleware allows every origin when none are configured; otherwise it
// echoes allowlisted origins only.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
			middleware.HeaderUsername, middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders: []string{
			"X-Request-ID", "Content-Length", "ETag", "Location",
			middleware.HeaderIdempotencyReplayed,
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO on every response, including those without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// health reports liveness plus database reachability.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
				err = sqlDB.PingContext(ctx)
				cancel()
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// limitBody caps the request body at maxBytes; oversize reads fail
// downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
