package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/unischedule/dashboard/internal/adapters/cache"
	"github.com/unischedule/dashboard/internal/adapters/handler"
	"github.com/unischedule/dashboard/internal/adapters/middleware"
	"github.com/unischedule/dashboard/internal/adapters/outbox"
	"github.com/unischedule/dashboard/internal/adapters/rest"
	"github.com/unischedule/dashboard/internal/config"
	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	creds := rest.StaticToken(cfg.API.Token)
	if cfg.API.Anonymous {
		creds = rest.Anonymous()
		log.Println("dashboard: calling the scheduling API anonymously")
	}
	client, err := rest.NewClient(cfg.API.BaseURL, creds,
		rest.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		rest.WithMetrics(rest.NewMetrics(reg)),
	)
	if err != nil {
		log.Fatalf("failed to create API client: %v", err)
	}

	opts := services.Options{
		Fallback:  services.FallbackMode(cfg.FallbackMode),
		Probe:     client,
		Validator: services.NewValidator(),
		Metrics:   services.NewMetrics(reg),
		Keyword:   cfg.ConfirmKeyword,
	}

	var cachePinger handler.Pinger
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("dashboard: connected to Redis")

		snapshots := cache.NewRedisSnapshotCache(redisClient, cfg.SnapshotTTL)
		opts.Cache = snapshots
		cachePinger = snapshots
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := outbox.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("failed to prepare outbox table: %v", err)
		}
		opts.Recorder = outbox.NewSQLChangeRecorder(db)
		log.Println("dashboard: recording changes to the outbox")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey)
	healthHandler := handler.NewHealthHandler(client, cachePinger)

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/health/ready", healthHandler.Ready)
	mux.HandleFunc("/health/live", healthHandler.Live)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	guard := handler.Guard(authMiddleware.RequireRole)
	mount(ctx, mux, guard, client, services.EventSchema, opts)
	mount(ctx, mux, guard, client, services.GroupSchema, opts)
	mount(ctx, mux, guard, client, services.LessonSchema, opts)
	mount(ctx, mux, guard, client, services.LectureSchema, opts)
	mount(ctx, mux, guard, client, services.ModuleSchema, opts)
	mount(ctx, mux, guard, client, services.RoomBookingSchema, opts)
	mount(ctx, mux, guard, client, services.DegreeSchema, opts)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORSMiddleware(cfg.AllowedOrigins)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("dashboard: received signal %v, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("dashboard: error during shutdown: %v", err)
	}
	log.Println("dashboard: shutdown complete")
}

// mount builds the manager for one resource, runs its first load and
// registers its routes. A failed first load is served as an error state.
func mount[T domain.Record](
	ctx context.Context,
	mux *http.ServeMux,
	guard handler.Guard,
	client *rest.Client,
	schema services.Schema[T],
	opts services.Options,
) {
	manager := services.NewManager(schema, rest.NewCollection[T](client, schema.Resource), opts)

	loadCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	if err := manager.Load(loadCtx); err != nil {
		log.Printf("dashboard: initial load of %s failed: %s", schema.Resource, services.UserMessage(err))
	}

	handler.NewResourceHandler[T](manager).Register(mux, guard)
}
