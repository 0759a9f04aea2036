// Package bootstrap resolves configuration and wires adapters into the
// application service. Store selection is driven by config: memory by
// default, postgres when DATABASE_URL is set, redis sessions when REDIS_URL
// is set.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/kaju0475/samduk/internal/adapters/cache"
	httpadapter "github.com/kaju0475/samduk/internal/adapters/http"
	"github.com/kaju0475/samduk/internal/adapters/memory"
	"github.com/kaju0475/samduk/internal/adapters/postgres"
	"github.com/kaju0475/samduk/internal/adapters/security"
	"github.com/kaju0475/samduk/internal/application"
	"github.com/kaju0475/samduk/internal/domain"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping samduk cylinder service", "http_port", cfg.HTTPPort)

	deps := application.Dependencies{
		Config: application.Config{
			TokenTTL:   cfg.TokenTTL,
			SessionTTL: cfg.SessionTTL,
			QRTokenTTL: cfg.QRTokenTTL,
		},
		Hasher: security.NewBcryptHasher(cfg.BcryptCost),
	}

	cleanup := func(context.Context) {}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		repos := postgres.NewRepositories(db)
		deps.Cylinders = repos.Cylinders
		deps.History = repos.History
		deps.Commits = repos.Commits
		deps.Customers = repos.Customers
		deps.Users = repos.Users
		deps.Sessions = repos.Sessions
		deps.QRTokens = memory.NewQRTokenStore()
		sqlDB, err := db.DB()
		if err == nil {
			cleanup = func(context.Context) { _ = sqlDB.Close() }
		}
	} else {
		logger.Warn("no DATABASE_URL configured, using in-process store")
		repos := memory.NewRepositories()
		deps.Cylinders = repos.Cylinders
		deps.History = repos.History
		deps.Commits = memory.NewCommitter(repos.Cylinders, repos.History)
		deps.Customers = repos.Customers
		deps.Users = repos.Users
		deps.Sessions = memory.NewSessionStore()
		deps.QRTokens = memory.NewQRTokenStore()
	}

	if cfg.RedisURL != "" {
		redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		deps.Sessions = cacheadapter.NewRedisSessionStore(redisClient)
		deps.QRTokens = cacheadapter.NewRedisQRTokenStore(redisClient)
		prev := cleanup
		cleanup = func(ctx context.Context) {
			prev(ctx)
			_ = redisClient.Close()
		}
	}

	signer, err := security.NewJWTSigner(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("init jwt signer: %w", err)
	}
	deps.Signer = signer

	svc := application.NewService(deps)

	if cfg.SeedAdminPassword != "" {
		if err := svc.EnsureUser(ctx, cfg.SeedAdminUsername, cfg.SeedAdminName, domain.RoleAdmin, cfg.SeedAdminPassword); err != nil {
			return nil, fmt.Errorf("seed admin user: %w", err)
		}
	} else {
		logger.Warn("no admin password configured, skipping admin seed")
	}

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn:  cleanup,
	}, nil
}

// Run serves HTTP until the context is canceled or a termination signal
// arrives, then shuts down gracefully.
func (rt *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("http server listening", "addr", rt.httpServer.Addr)
		if err := rt.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		rt.cleanupFn(ctx)
		return err
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := rt.httpServer.Shutdown(shutdownCtx)
	rt.cleanupFn(shutdownCtx)
	return err
}
