package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/vitalpath/vitalpath/internal/api"
	"github.com/vitalpath/vitalpath/internal/assistance"
	"github.com/vitalpath/vitalpath/internal/audit"
	"github.com/vitalpath/vitalpath/internal/briefing"
	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/database"
	"github.com/vitalpath/vitalpath/internal/llm"
	"github.com/vitalpath/vitalpath/internal/middleware"
	inats "github.com/vitalpath/vitalpath/internal/nats"
	"github.com/vitalpath/vitalpath/internal/patients"
	"github.com/vitalpath/vitalpath/internal/protocols"
	iredis "github.com/vitalpath/vitalpath/internal/redis"
	"github.com/vitalpath/vitalpath/internal/server"
	"github.com/vitalpath/vitalpath/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional)
	var natsClient *inats.Client
	var publisher *inats.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())

		auditRepo := audit.NewRepository(pool)
		consumerMgr := inats.NewConsumerManager(natsClient.JetStream())
		auditConsumer := audit.NewConsumer(auditRepo, consumerMgr)
		go func() {
			if err := auditConsumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	} else {
		slog.Info("nats disabled, events will not be published")
	}

	// Domain wiring
	llmClient := llm.NewClient(cfg.OpenAI)
	store := patients.NewStore(cfg.Patients.File)

	protocolIndex := protocols.NewPostgresIndex(pool)
	resolver := protocols.NewResolver(protocolIndex, llmClient)
	protocolHandler := protocols.NewHandler(resolver)

	generator := briefing.NewGenerator(llmClient, cfg.OpenAI.Timeout)
	cache := assistance.NewCache(redisClient)
	assistSvc := assistance.NewService(store, resolver, generator, cache, publisher)
	assistHandler := assistance.NewHandler(assistSvc, resolver, store)

	tasksHandler := tasks.NewHandler()
	patientsHandler := patients.NewHandler(store, publisher)

	rateLimiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.GenerateMaxReqs, cfg.RateLimit.GenerateWindowSec)

	router := api.NewRouter(pool, redisClient, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		GenerateRateLimit:  rateLimiter.Middleware,
	}, api.HandlerSet{
		ListTasks: tasksHandler.List,

		ListPatients: patientsHandler.List,
		GetPatient:   patientsHandler.Get,
		SavePatient:  patientsHandler.Save,

		GenerateDetail:   assistHandler.GenerateDetail,
		CheckCachedTasks: assistHandler.CheckCachedTasks,
		GetProtocol:      assistHandler.GetProtocol,

		SearchProtocols: protocolHandler.Search,
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
