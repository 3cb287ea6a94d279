package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/api/handlers"
	mw "github.com/Harshitk-cp/ghostprotocol/internal/api/middleware"
	"github.com/Harshitk-cp/ghostprotocol/internal/buildconfig"
	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	AdminAPIKey    string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and the pieces main needs for lifecycle management.
type App struct {
	Router    *chi.Mux
	Engine    *service.Engine
	Limiter   *mw.RateLimiter
	metrics   *mw.Metrics
	db        Pinger
	startTime time.Time
}

func NewApp(engine *service.Engine, agents domain.AgentStore, db Pinger, opts Options, logger *zap.Logger) *App {
	app := &App{
		Router:    chi.NewRouter(),
		Engine:    engine,
		Limiter:   mw.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		metrics:   mw.NewMetrics(),
		db:        db,
		startTime: time.Now(),
	}

	agentHandler := handlers.NewAgentHandler(engine.Agents)
	ghostHandler := handlers.NewGhostHandler(engine.Ghost)
	adminHandler := handlers.NewAdminHandler(engine.Ghost, engine.Jobs)

	r := app.Router

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(app.Limiter.Middleware)

	r.Get("/health", app.healthHandler)
	r.Get("/metrics", app.metricsHandler)

	r.Route("/v1", func(r chi.Router) {
		// Registration is the bootstrap endpoint and needs no key.
		r.Post("/agents", agentHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(mw.AgentAuth(agents))

			r.Get("/agents/me", agentHandler.Me)

			r.Route("/ghost", func(r chi.Router) {
				r.Get("/dna", ghostHandler.GetDNA)
				r.Post("/initialize", ghostHandler.Initialize)
				r.Get("/beliefs", ghostHandler.GetBeliefs)
				r.Get("/mutations", ghostHandler.GetMutations)
				r.Get("/relationship/{targetId}", ghostHandler.GetRelationship)
				r.Post("/generate-response", ghostHandler.GenerateResponse)
				r.Post("/social-decision", ghostHandler.SocialDecision)
				r.Get("/global-tension", ghostHandler.GlobalTension)
				r.Post("/conversations", ghostHandler.StartConversation)
				r.Post("/conversations/{id}/messages", ghostHandler.RecordMessage)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.AdminAuth(opts.AdminAPIKey))
			r.Post("/init-all-dna", adminHandler.InitAllDNA)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/jobs", adminHandler.ListJobs)
			r.Post("/jobs/{name}", adminHandler.RunJob)
		})
	})

	return app
}

func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
			return
		}
	}
	resp := map[string]any{"status": "ok"}
	for k, v := range buildconfig.VersionInfo() {
		resp[k] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	uptime := time.Since(app.startTime)

	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": uptime.Seconds(),
		"uptime_human":   uptime.Round(time.Second).String(),
		"http":           app.metrics.Snapshot(),
		"goroutines":     runtime.NumGoroutine(),
		"memory": map[string]any{
			"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
			"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
			"num_gc":   memStats.NumGC,
		},
		"go_version": runtime.Version(),
	})
}
