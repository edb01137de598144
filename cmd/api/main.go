package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/gallery-service/internal/api/http"
	"github.com/spec-kit/gallery-service/internal/api/http/handlers"
	"github.com/spec-kit/gallery-service/internal/auth"
	"github.com/spec-kit/gallery-service/internal/config"
	"github.com/spec-kit/gallery-service/internal/events"
	"github.com/spec-kit/gallery-service/internal/observability"
	"github.com/spec-kit/gallery-service/internal/persistence"
	"github.com/spec-kit/gallery-service/internal/repository"
	"github.com/spec-kit/gallery-service/internal/service"
	"github.com/spec-kit/gallery-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.EphemeralSecret {
		logger.Warn("AUTH_JWT_SECRET not set; using an ephemeral secret, all sessions invalidate on restart (development only)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	albumRepo := repository.NewAlbumRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	cookies := auth.CookiePolicy{Secure: cfg.App.IsProduction()}
	adminCodec := auth.NewCodec(cfg.Auth.JWTSecret, auth.AudienceAdmin)
	albumCodec := auth.NewCodec(cfg.Album.JWTSecret, auth.AudienceGuest)
	sessions := auth.NewSessionManager(adminCodec, cookies, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	albumSessions := auth.NewAlbumSessionManager(albumCodec, cookies, cfg.Album.SessionTTL())

	loginLimiter := service.NewAttemptLimiter(redis, logger, "login", cfg.Limiter.MaxAttempts, cfg.Limiter.Window())
	unlockLimiter := service.NewAttemptLimiter(redis, logger, "unlock", cfg.Limiter.MaxAttempts, cfg.Limiter.Window())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
		LoginLimiter:      loginLimiter,
		Logger:            logger,
	})
	albumService := service.NewAlbumService(albumRepo, dispatcher, unlockLimiter, logger)

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	sessionMiddleware := auth.NewSessionMiddleware(sessions, userRepo, logger, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:              handlers.NewAuthHandler(authService, sessions),
		Albums:            handlers.NewAlbumsHandler(albumService, albumSessions),
		SessionMiddleware: sessionMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
