// cmd/api/main.go
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

	"go-quickstart/config"
	"go-quickstart/internal/api/handlers"
	"go-quickstart/internal/api/middleware"
	"go-quickstart/internal/api/routes"
	"go-quickstart/internal/auth"
	"go-quickstart/internal/cache"
	"go-quickstart/internal/captcha"
	"go-quickstart/internal/database"
	"go-quickstart/internal/events"
	"go-quickstart/internal/geocache"
	"go-quickstart/internal/logger"
	"go-quickstart/internal/mail"
	"go-quickstart/internal/maps"
	"go-quickstart/internal/oauth"
	"go-quickstart/internal/repository"
	"go-quickstart/internal/s3"
	"go-quickstart/internal/scheduler"
	"go-quickstart/internal/service"
	"go-quickstart/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mojocn/base64Captcha"
	"go.uber.org/zap"
)

const (
	captchaTTL      = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Info("no .env file loaded, using environment only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	// 1. MongoDB
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	db := client.Database(cfg.Mongo.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	if err := database.SeedAdmin(ctx, db, cfg.Seed, log); err != nil {
		log.Warn("admin seed failed", zap.Error(err))
	}

	// 2. Redis: token blacklist and captcha answers. Without it both fall back to local state.
	var (
		revoker      service.TokenRevoker
		revoked      middleware.RevocationChecker
		captchaStore base64Captcha.Store = base64Captcha.NewMemoryStore(base64Captcha.GCLimitNumber, captchaTTL)
	)
	redisCache := cache.NewCache(cfg.Redis)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("redis unavailable, logout and shared captcha disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else {
		revoker, revoked = redisCache, redisCache
		captchaStore = redisCache.CaptchaStore(captchaTTL)
	}

	// 3. S3
	var (
		storage   service.Storage
		fileStore service.FileStore
	)
	uploader, err := s3.NewUploader(ctx, cfg.S3)
	switch {
	case errors.Is(err, s3.ErrNotConfigured):
		log.Warn("s3 not configured, profile photos and file uploads disabled")
	case err != nil:
		return err
	default:
		storage, fileStore = uploader, uploader
	}

	// 4. Maps with geocode cache
	geo, err := geocache.Open(ctx, cfg.Geocache, log)
	if err != nil {
		return err
	}
	defer geo.Close()
	mapsClient := maps.NewClient(cfg.Maps, geo, log)

	// 5. Live delivery tracking
	bus, err := events.Connect(cfg.NATS, log)
	if err != nil {
		return err
	}
	defer bus.Close()
	hub := socket.NewHub(log)
	defer hub.Close()
	notifier := events.NewDeliveryNotifier(bus, hub, log)
	unsubscribe, err := notifier.Relay()
	if err != nil {
		return err
	}
	defer unsubscribe()

	// 6. Services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL())
	users := service.NewUserService(
		repository.NewUserRepository(db),
		tokens,
		mail.NewSMTPMailer(cfg.Mail),
		storage,
		revoker,
		log,
	)
	mapsService := service.NewMapsService(
		mapsClient,
		repository.NewStoreRepository(db),
		repository.NewRouteRepository(db),
		repository.NewDeliveryRepository(db),
		repository.NewPropertyRepository(db),
		notifier,
		log,
	)

	// 7. Scheduled jobs
	if cfg.Cron.Enabled {
		jobs := scheduler.New(log)
		if err := jobs.RegisterDefaults(cfg.Cron, users); err != nil {
			return err
		}
		jobs.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = jobs.Stop(sctx)
		}()
	}

	// 8. HTTP
	docs, err := handlers.NewDocsHandler()
	if err != nil {
		return err
	}
	router := routes.SetupRouter(routes.Deps{
		Server:  cfg.Server,
		Log:     log,
		Tokens:  tokens,
		Revoked: revoked,
		Users:   &handlers.UserHandler{Users: users},
		OAuth: &handlers.OAuthHandler{
			Providers:    oauth.NewRegistry(cfg.OAuth),
			Users:        users,
			FrontendURL:  cfg.OAuth.FrontendURL,
			SecureCookie: cfg.Server.Mode == gin.ReleaseMode,
		},
		Samples:   &handlers.SampleHandler{Captcha: captcha.New(captchaStore), Now: time.Now},
		Maps:      &handlers.MapsHandler{Maps: mapsService},
		Files:     &handlers.FileHandler{Files: service.NewFileService(fileStore, log)},
		WebSocket: &handlers.WebSocketHandler{Hub: hub, Tokens: tokens, Revoked: revoked, Log: log},
		Docs:      docs,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
