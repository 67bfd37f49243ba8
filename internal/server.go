package internal

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"pm-dashboard-api/internal/auth"
	"pm-dashboard-api/internal/config"
	"pm-dashboard-api/internal/localstore"
	"pm-dashboard-api/internal/models"
	"pm-dashboard-api/internal/store"
	"pm-dashboard-api/internal/syncer"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Store      *store.RecordStore
	Pusher     *syncer.Pusher

	kv       localstore.KV
	catalog  *models.Catalog
	verifier auth.Verifier
	client   *syncer.Client

	companyName   string
	publicBaseURL string
	defaultSheet  string
	imageMaxBytes int64
	clock         models.Clock

	refreshMu   sync.RWMutex
	lastRefresh *refreshStatus
}

func NewServer(cfg *config.Config, kv localstore.KV, verifier auth.Verifier) *Server {
	catalog, err := models.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load catalog:", err)
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)

	// Validate JWT configuration
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatal("JWT configuration validation failed:", err)
	}

	s := &Server{
		Router:        chi.NewRouter(),
		JWTManager:    jwtManager,
		Metrics:       NewMetrics(),
		Store:         store.New(kv),
		kv:            kv,
		catalog:       catalog,
		verifier:      verifier,
		companyName:   cfg.CompanyName,
		publicBaseURL: cfg.PublicBaseURL,
		defaultSheet:  cfg.SheetURL,
		imageMaxBytes: cfg.ImageMaxBytes,
		clock:         time.Now,
	}
	s.client = syncer.NewClient(s.sheetURL)
	s.Pusher = syncer.NewPusher(s.client)
	s.Store.SetPushHook(func(rec models.PMRecord) {
		s.Pusher.Enqueue(rec)
	})

	// chi requires all middleware before the first route, so the metrics
	// collector goes on the mux before anything is mounted.
	if cfg.MetricsEnabled {
		s.Router.Use(s.Metrics.Middleware())
	}

	// Mount public routes FIRST (no auth middleware)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/auth/login", s.loginUser)

	// Mount metrics if enabled
	if cfg.MetricsEnabled {
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Read surfaces are public; a bearer token is optional and only changes
	// whether the secret fields come back redacted.
	s.Router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(s.JWTManager))
		s.mountReadRoutes(r)
	})

	// Create a protected route group with middleware
	s.Router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager))
		r.Use(auth.MustRole(auth.RoleAdmin))
		s.mountProtectedRoutes(r)
	})

	return s
}

// Close shuts down outbound work and the durable store.
func (s *Server) Close(ctx context.Context) error {
	s.Pusher.Close()
	return s.kv.Close()
}

// mountReadRoutes mounts the public read-only surfaces.
func (s *Server) mountReadRoutes(r chi.Router) {
	r.Get("/records", s.listRecords)
	r.Get("/records/{id}", s.getRecord)
	r.Get("/stats", s.getStats)
	r.Get("/catalog", s.getCatalog)

	// Shareable report surfaces: any id is viewable by anyone with the link.
	r.Get("/report", s.getReport)
	r.Get("/report/{id}/qr.png", s.getReportQR)
	r.Get("/report/{id}/tag", s.getTag)
	r.Get("/print/tags", s.printTags)

	r.Get("/sync/status", s.syncStatus)
}

// mountProtectedRoutes mounts all routes that require the admin role.
func (s *Server) mountProtectedRoutes(r chi.Router) {
	// CRUD and wholesale replacement
	r.Post("/records", s.createRecord)
	r.Put("/records", s.replaceRecords)
	r.Put("/records/{id}", s.updateRecord)
	r.Delete("/records/{id}", s.deleteRecord)

	// Export carries the secret fields in cleartext, so it stays admin-only.
	r.Get("/export", s.exportRecords)

	r.Get("/settings/sheet-url", s.getSheetURL)
	r.Put("/settings/sheet-url", s.putSheetURL)
	r.Post("/sync/refresh", s.syncRefresh)

	// Vault unlock needs an authenticated admin plus the PIN.
	r.Post("/auth/unlock", s.unlockVault)
}

// sheetURL resolves the sync endpoint, preferring the durable setting over
// the environment default. Re-read on every call because PUT can change it
// at runtime.
func (s *Server) sheetURL() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if v, ok, err := s.kv.Get(ctx, localstore.KeySheetURL); err == nil && ok && v != "" {
		return v
	}
	return s.defaultSheet
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
