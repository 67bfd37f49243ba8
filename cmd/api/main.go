package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pm-dashboard-api/internal"
	"pm-dashboard-api/internal/auth"
	"pm-dashboard-api/internal/config"
	"pm-dashboard-api/internal/localstore"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load and validate configuration
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	kv, err := openKV(cfg)
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}

	verifier := &auth.StaticVerifier{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		PIN:      cfg.VaultPIN,
	}

	srv := internal.NewServer(cfg, kv, verifier)

	if err := srv.Store.Hydrate(context.Background()); err != nil {
		log.Fatalf("Failed to hydrate record store: %v", err)
	}
	srv.Metrics.SetRecordCount(srv.Store.Len())

	// Best-effort initial refresh from the sheet; local state stays the
	// source of truth if the fetch fails.
	if cfg.SheetURL != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if count, err := srv.RefreshFromSheet(ctx); err != nil {
				log.Printf("Initial sheet refresh failed: %v", err)
			} else {
				log.Printf("Initial sheet refresh loaded %d records", count)
			}
		}()
	}

	log.Println("Starting PM Dashboard API server...")
	log.Printf("JWT Issuer: %s", cfg.JWTIssuer)
	log.Printf("JWT Expiry: %v", cfg.JWTExpiry)
	log.Printf("Records loaded: %d", srv.Store.Len())
	log.Printf("Listening on :%s", cfg.Port)

	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Drain in-flight requests and queued pushes before exiting.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := srv.Close(ctx); err != nil {
		log.Printf("Server close: %v", err)
	}
}

// openKV selects the durable backend: Postgres when DB_DSN is set, the
// local JSON document otherwise.
func openKV(cfg *config.Config) (localstore.KV, error) {
	if cfg.DatabaseDSN != "" {
		return localstore.NewPostgresStore(context.Background(), cfg.DatabaseDSN, cfg.KVTable)
	}
	return localstore.NewFileStore(cfg.DataPath)
}
