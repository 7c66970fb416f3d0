// Package httpapi wires the local geofence receiver: the gin engine, its
// middleware chain and the geofence routes. Hosts without native geofencing
// push arm instructions and report transitions through it.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ShoutToMe/stm-sdk-android-sub001/docs"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/config"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/http/handlers"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/http/middleware"
)

// maxBodyBytes caps request bodies; arm instructions are a few hundred bytes.
const maxBodyBytes = 1 << 20

// RegisterRoutes attaches the middleware chain and the receiver endpoints to
// r. Routes are mounted under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII and coordinate scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics (and /metrics, which is not rate limited)
//  7. Rate limiter per device/IP
//  8. gzip
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, geo handlers.GeofenceService, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Api-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByDeviceOrIP())
	r.Use(rl.Handler())

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(cors.New(corsConfig(cfg.CORS)))

	// Geofence payloads carry locations; never cache them.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(geo)
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/geofences", h.ArmGeofence)
		api.GET("/geofences", h.ListGeofences)
		api.GET("/geofences/stats", h.GeofenceStats)
		api.POST("/geofences/purge", h.PurgeGeofences)
		api.GET("/geofences/:id", h.GetGeofence)
		api.DELETE("/geofences/:id", h.RemoveGeofence)
		api.POST("/geofences/:id/trigger", h.TriggerGeofence)
	}
}

// corsConfig allows every origin when none are configured. Credentials stay
// off in both modes.
func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.DeviceIDHeader},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

// limitBody caps the request body at maxBytes; reads past it fail.
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
