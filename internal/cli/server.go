package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"econquest-progress-service/internal/app"
	"econquest-progress-service/internal/config"
	"econquest-progress-service/internal/infra/memory"
	"econquest-progress-service/internal/infra/postgres"
	redisinfra "econquest-progress-service/internal/infra/redis"
	"econquest-progress-service/internal/metrics"
	"econquest-progress-service/internal/seed"
	transport "econquest-progress-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the progression server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	m := metrics.New()
	defaults := cfg.Game.Settings()

	var (
		loader   memory.ActivityLoader
		settings app.SettingsRepository
		store    app.ProgressStore
		catalog  app.ModuleCatalog
	)
	if cfg.Postgres.URL != "" {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := runMigrations(ctx, db, logger); err != nil {
			return err
		}

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		loader = postgres.NewActivityLoader(pool)
		settings = postgres.NewSettingsRepository(db, defaults)
		store = postgres.NewProgressStore(db)
		catalog = postgres.NewModuleCatalog(pool)
		logger.Info("using postgres storage")
	} else {
		static := memory.NewStaticActivityLoader(seed.Activities(1)...)
		memStore := memory.NewProgressStore()
		loader = static
		settings = memory.NewSettingsRepository(defaults)
		store = memStore
		catalog = memory.NewModuleCatalog(static, memStore, seed.DemoModule().Record(1))
		logger.Warn("postgres not configured, using in-memory storage with demo activities")
	}

	activityTTL := config.TTLDuration(cfg.Activity.TTL, 5*time.Minute)
	var (
		activities app.ActivityRepository
		results    app.ResultMailbox
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		handoffTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
		activities = redisinfra.NewActivityRepository(redisClient, loader, activityTTL)
		results = redisinfra.NewResultMailbox(redisClient, handoffTTL)
	} else {
		activities = memory.NewActivityRepository(loader, activityTTL)
		results = memory.NewResultMailbox()
	}

	service := app.NewProgressionService(settings, activities, store, results,
		app.WithLogger(logger),
		app.WithMetrics(m),
	)

	mux := http.NewServeMux()
	transport.NewHandler(service, app.NewModuleService(catalog), logger, m).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(service, logger).ServeWS)
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting progress service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		logger.Error("server failed", zap.Error(err))
		return fmt.Errorf("serve on %s: %w", server.Addr, err)
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
