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

	"greencart-ops-api/config"
	"greencart-ops-api/internal/api/handlers"
	"greencart-ops-api/internal/api/routes"
	"greencart-ops-api/internal/auth"
	"greencart-ops-api/internal/database"
	"greencart-ops-api/internal/lock"
	"greencart-ops-api/internal/logging"
	"greencart-ops-api/internal/s3"
	"greencart-ops-api/internal/simulation"
	"greencart-ops-api/internal/socket"
	"greencart-ops-api/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.Mongo.URI)
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
	store := database.NewStore(client, db, cfg.Mongo.Transactions)
	logger.Info("connected to MongoDB", zap.String("db", cfg.Mongo.DBName), zap.Bool("transactions", cfg.Mongo.Transactions))

	locker, closeLocker, err := newLocker(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	hub := socket.NewHub(logger.Named("ws"))
	notifiers := []simulation.Notifier{hub}
	if cfg.S3.Bucket != "" {
		archiver, err := s3.NewReportArchiver(ctx, cfg.S3, logger.Named("s3"))
		if err != nil {
			return err
		}
		notifiers = append(notifiers, archiver)
		logger.Info("simulation reports archived to S3", zap.String("bucket", cfg.S3.Bucket))
	}

	var gen summary.Generator
	if cfg.Gemini.APIKey != "" {
		g, err := summary.NewGeminiGenerator(ctx, cfg.Gemini)
		if err != nil {
			return err
		}
		gen = g
		logger.Info("AI summaries enabled", zap.String("generator", g.Name()))
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI summaries are disabled")
	}

	sessions, err := auth.NewSessionManager(cfg.Session.Secret, cfg.Session.Expiration)
	if err != nil {
		return err
	}

	sims := simulation.NewService(store, locker, logger.Named("simulation"), simulation.WithNotifiers(notifiers...))
	summaries := summary.NewService(gen, store, logger.Named("summary"))

	router := routes.SetupRouter(routes.Handlers{
		Auth: &handlers.AuthHandler{
			Users:    store,
			Sessions: sessions,
			Cookie:   handlers.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
			Logger:   logger,
		},
		Health:      &handlers.HealthHandler{DB: store, Logger: logger},
		Dashboard:   &handlers.DashboardHandler{Store: store, Logger: logger},
		Drivers:     &handlers.DriverHandler{Store: store, Logger: logger},
		Routes:      &handlers.RouteHandler{Store: store, Logger: logger},
		Orders:      &handlers.OrderHandler{Store: store, Logger: logger},
		Simulations: &handlers.SimulationHandler{Runner: sims, Store: store, Summaries: summaries, Logger: logger},
		WebSocket: &handlers.WebSocketHandler{
			Hub:         hub,
			Sessions:    sessions,
			CookieName:  cfg.Session.CookieName,
			FrontendURL: cfg.Server.FrontendURL,
			Logger:      logger.Named("ws"),
		},
	}, sessions, routes.Options{
		FrontendURL:       cfg.Server.FrontendURL,
		CookieName:        cfg.Session.CookieName,
		AuthRatePerMinute: cfg.RateLimit.AuthPerMinute,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}

// newLocker uses Redis when an address is configured so several API
// processes share one run lock; otherwise the lock is process-local.
func newLocker(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (simulation.Locker, func(), error) {
	if cfg.Address == "" {
		logger.Info("REDIS_ADDRESS not set, using in-process simulation lock")
		return lock.NewLocalLocker(cfg.LockWait), func() {}, nil
	}
	client, err := lock.Connect(ctx, cfg.Address, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using Redis simulation lock", zap.String("address", cfg.Address))
	return lock.NewRedisLocker(client, cfg.LockTTL, cfg.LockWait, logger.Named("lock")), func() { _ = client.Close() }, nil
}
