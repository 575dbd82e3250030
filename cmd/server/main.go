package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"partyplan/internal/config"
	"partyplan/internal/database"
	"partyplan/internal/handlers"
	"partyplan/internal/repository"
	"partyplan/internal/security"
	"partyplan/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize the document store (SQL with migrations, or Redis)
	store, cleanup, err := initStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer cleanup()

	log.Printf("Document store ready (backend: %s)", cfg.StoreBackend)

	// Initialize email delivery; disabled without a from-address
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize services
	whiteElephantService := service.NewWhiteElephantService(store)
	santaService := service.NewSantaService(store, emailService, cfg.AppBaseURL, cfg.TokenSecret, cfg.TokenDuration)
	potluckService := service.NewPotluckService(store)
	babyPoolService := service.NewBabyPoolService(store)

	// Initialize handlers
	middleware := handlers.NewMiddleware(security.NewRateLimiter(30, time.Minute))
	whiteElephantHandler := handlers.NewWhiteElephantHandler(whiteElephantService)
	santaHandler := handlers.NewSantaHandler(santaService)
	potluckHandler := handlers.NewPotluckHandler(potluckService)
	babyPoolHandler := handlers.NewBabyPoolHandler(babyPoolService)
	qrHandler := handlers.NewQRHandler(cfg.AppBaseURL)

	// Setup routes
	mux := http.NewServeMux()

	// White elephant routes
	mux.HandleFunc("POST /api/white-elephant", middleware.RateLimit(whiteElephantHandler.Create))
	mux.HandleFunc("GET /api/white-elephant/{id}", whiteElephantHandler.Get)
	mux.HandleFunc("POST /api/white-elephant/{id}/action", middleware.RateLimit(whiteElephantHandler.Action))
	mux.HandleFunc("POST /api/white-elephant/{id}/react", middleware.RateLimit(whiteElephantHandler.React))
	mux.HandleFunc("GET /api/white-elephant/{id}/qr", qrHandler.Serve)

	// Secret santa routes
	mux.HandleFunc("POST /api/secret-santa", middleware.RateLimit(santaHandler.Create))
	mux.HandleFunc("GET /api/secret-santa/{id}", santaHandler.Get)
	mux.HandleFunc("GET /api/secret-santa/{id}/reveal", santaHandler.Reveal)
	mux.HandleFunc("POST /api/secret-santa/{id}/notify", middleware.RateLimit(santaHandler.Notify))
	mux.HandleFunc("GET /api/secret-santa/{id}/qr", qrHandler.Serve)

	// Potluck routes
	mux.HandleFunc("POST /api/potluck", middleware.RateLimit(potluckHandler.Create))
	mux.HandleFunc("GET /api/potluck/{id}", potluckHandler.Get)
	mux.HandleFunc("POST /api/potluck/{id}/claim", middleware.RateLimit(potluckHandler.Claim))
	mux.HandleFunc("POST /api/potluck/{id}/unclaim", middleware.RateLimit(potluckHandler.Unclaim))
	mux.HandleFunc("POST /api/potluck/{id}/slots", middleware.RateLimit(potluckHandler.UpdateSlots))
	mux.HandleFunc("GET /api/potluck/{id}/qr", qrHandler.Serve)

	// Baby pool routes
	mux.HandleFunc("POST /api/baby-pool", middleware.RateLimit(babyPoolHandler.Create))
	mux.HandleFunc("GET /api/baby-pool/{id}", babyPoolHandler.Get)
	mux.HandleFunc("POST /api/baby-pool/{id}/guess", middleware.RateLimit(babyPoolHandler.Guess))
	mux.HandleFunc("POST /api/baby-pool/{id}/reveal", middleware.RateLimit(babyPoolHandler.Reveal))
	mux.HandleFunc("GET /api/baby-pool/{id}/qr", qrHandler.Serve)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background pruning of stale documents
	if cfg.DocumentMaxAge > 0 {
		go pruneStaleDocuments(store, cfg.DocumentMaxAge)
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// initStore builds the configured document store backend and returns a
// cleanup function for its resources
func initStore(cfg *config.Config) (repository.DocumentStore, func(), error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case "redis":
		store, err := repository.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, err
		}

		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}

		log.Println("Migrations completed successfully")
		return repository.NewSQLStore(db), func() { db.Close() }, nil
	}
}

// pruneStaleDocuments periodically removes documents past their max age
func pruneStaleDocuments(store repository.DocumentStore, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		for _, kind := range repository.Kinds {
			pruned, err := store.PruneOlderThan(context.Background(), kind, maxAge)
			if err != nil {
				log.Printf("Error pruning %s documents: %v", kind, err)
				continue
			}
			if pruned > 0 {
				log.Printf("Pruned %d stale %s documents", pruned, kind)
			}
		}
	}
}
