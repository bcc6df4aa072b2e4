package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/unischedule/dashboard/internal/adapters/messaging"
	"github.com/unischedule/dashboard/internal/adapters/outbox"
	"github.com/unischedule/dashboard/internal/config"
)

func main() {
	log.Println("Starting change relay service...")

	cfg := config.LoadRelayConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("relay: failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := outbox.EnsureSchema(ctx, db); err != nil {
		log.Printf("relay: WARNING - could not prepare outbox table: %v", err)
	}

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.ChangeQueueName)
	if err != nil {
		log.Fatalf("relay: failed to connect to RabbitMQ: %v", err)
	}
	defer broker.Close()
	log.Printf("relay: publishing changes to queue %q", cfg.ChangeQueueName)

	worker := outbox.NewRelay(db, cfg.DatabaseURL, broker)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", probe("outbox-relay", worker.IsHealthy))
	healthMux.HandleFunc("/health/live", probe("outbox-relay", worker.IsHealthy))
	healthMux.HandleFunc("/health/ready", probe("outbox-relay", worker.IsReady))

	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("relay: starting health check server on :%s", cfg.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("relay: health server error: %v", err)
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		log.Println("relay: starting event processing worker...")
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("relay: received signal %v, initiating shutdown...", sig)
	case err := <-errChan:
		log.Printf("relay: fatal error, shutting down: %v", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("relay: error shutting down health server: %v", err)
	}

	log.Println("relay: shutdown complete")
}

func probe(component string, check func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "UP", http.StatusOK
		if !check() {
			status, code = "DOWN", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"component": component,
		})
	}
}
