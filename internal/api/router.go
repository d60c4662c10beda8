package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vitalpath/vitalpath/internal/database"
	mw "github.com/vitalpath/vitalpath/internal/middleware"
	inats "github.com/vitalpath/vitalpath/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Task catalog
	ListTasks http.HandlerFunc

	// Patient handlers
	ListPatients http.HandlerFunc
	GetPatient   http.HandlerFunc
	SavePatient  http.HandlerFunc

	// Briefing handlers
	GenerateDetail   http.HandlerFunc
	CheckCachedTasks http.HandlerFunc
	GetProtocol      http.HandlerFunc

	// Protocol search
	SearchProtocols http.HandlerFunc
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	GenerateRateLimit  func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, redisClient *redis.Client, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks DB, Redis, NATS
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"redis":    "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient == nil {
			health["nats"] = "not configured"
		} else if !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		JSON(w, status, health)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})

		r.Get("/todos", h.ListTasks)
		r.Get("/patients", h.ListPatients)
		r.Get("/patient/{index}", h.GetPatient)
		r.Post("/save-patient", h.SavePatient)

		r.Post("/check-cached-tasks", h.CheckCachedTasks)
		r.Post("/get-protocol", h.GetProtocol)
		r.Post("/search-protocols", h.SearchProtocols)

		// Generation is the expensive path; it alone is rate limited.
		if cfg.GenerateRateLimit != nil {
			r.With(cfg.GenerateRateLimit).Post("/generate-detail", h.GenerateDetail)
		} else {
			r.Post("/generate-detail", h.GenerateDetail)
		}
	})

	return r
}
