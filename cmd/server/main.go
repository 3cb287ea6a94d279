package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/api"
	"github.com/Harshitk-cp/ghostprotocol/internal/buildconfig"
	"github.com/Harshitk-cp/ghostprotocol/internal/config"
	"github.com/Harshitk-cp/ghostprotocol/internal/events"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/llm"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	_ = config.Load()

	logger, err := config.NewLogger(false)
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("falling back to info logging", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	if err := store.Migrate(ctx, pool, config.MigrationsPath(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	catalog, err := knowledge.Load(config.KnowledgeCatalogPath())
	if err != nil {
		logger.Fatal("failed to load knowledge catalog", zap.Error(err))
	}

	gen, err := llm.NewGenerator(config.LLMProvider(), config.LLMAPIKey(), config.LLMModel())
	if err != nil {
		logger.Fatal("text generator initialization failed", zap.String("provider", config.LLMProvider()), zap.Error(err))
	}
	logger.Info("text generator initialized", zap.String("provider", config.LLMProvider()))

	opts := service.EngineOptions{
		Intervals: service.JobIntervals{
			Gravity:     config.GravityInterval(),
			Collapse:    config.CollapseInterval(),
			Decay:       config.DecayInterval(),
			BeliefDecay: config.BeliefDecayInterval(),
		},
		BeliefDecayRate:  config.BeliefDecayRate(),
		JobWorkers:       config.JobWorkers(),
		EvolutionTimeout: config.EvolutionTimeout(),
		TensionCacheTTL:  config.TensionCacheTTL(),
		SubjectPrefix:    config.NATSSubjectPrefix(),
	}

	// NATS is optional; without it events are simply not published.
	if url := config.NATSURL(); url != "" {
		pub, err := events.Connect(url, logger)
		if err != nil {
			logger.Warn("event publishing disabled", zap.Error(err))
		} else {
			defer pub.Close()
			opts.Publisher = pub
		}
	}

	stores := api.PostgresStores(pool)
	engine := service.NewEngine(stores, catalog, rng.NewTimeSeeded(), gen, llm.NewAnalyzer(gen), opts, logger)

	app := api.NewApp(engine, stores.Agents, pool, api.Options{
		AdminAPIKey:    config.AdminAPIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}, logger)

	// Start background services
	stopSweeper := make(chan struct{})
	go app.Limiter.Run(stopSweeper)
	engine.Jobs.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("version", buildconfig.String()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Stop background services once no request can start new work.
	engine.Jobs.Stop()
	close(stopSweeper)
	engine.Ghost.Wait()

	logger.Info("server stopped")
}
