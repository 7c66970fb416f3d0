// Command stm-agent hosts the Shout SDK on a device or edge box. It keeps the
// geofence cache, serves the local receiver that arms and triggers fences,
// and sweeps expired records in the background.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/api"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/config"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
	httpapi "github.com/ShoutToMe/stm-sdk-android-sub001/internal/http"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/observability"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/observer"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/repo"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/services"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/sysutil"
)

// version is set at link time (-ldflags "-X main.version=...").
var version = "dev"

func main() {
	configPath := flag.String("config", "", "optional YAML config overlaid on the environment")
	flag.Parse()

	// A missing .env is normal in production.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	sysutil.SetupLogger(cfg.LogPretty, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetLogLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("stm-agent failed")
	}
	log.Info().Msg("stm-agent stopped")
}

// run serves until SIGINT/SIGTERM or a listener failure. Deferred cleanup
// always runs before it returns.
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	cache := repo.NewDBHelper(cfg.Cache.Path, repo.DatabaseVersion)
	db, err := cache.Open(ctx)
	if err != nil {
		return fmt.Errorf("open geofence cache %s: %w", cfg.Cache.Path, err)
	}
	defer func() { _ = cache.Close() }()

	geo := services.NewGeofenceService(db, nil, nil)
	go geo.RunPurger(ctx, cfg.Cache.PurgeInterval)

	if cfg.API.AuthToken != "" {
		syncSubscriptions(ctx, cfg.API)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, geo, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("receiver listening")
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("receiver stopped: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("receiver shutdown")
	}
	return serveErr
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// syncSubscriptions logs the user's channel subscriptions once at startup,
// confirming the credentials reach the Shout service. Failures are logged
// and never stop the agent.
func syncSubscriptions(ctx context.Context, cfg config.APIConfig) {
	client, err := api.NewClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("api client disabled")
		return
	}
	subs := services.NewSubscriptionService(client)
	observer.Then(subs.ListAsync(ctx), func(res observer.Result[[]domain.Subscription]) {
		if res.Failed() {
			log.Warn().Str("kind", string(res.Kind)).Str("error", res.ErrorMessage()).Msg("subscription sync failed")
			return
		}
		log.Info().Int("subscriptions", len(res.Value)).Msg("subscriptions synced")
	})
}
