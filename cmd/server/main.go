package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"member_console/internal/api"
	"member_console/internal/app/service"
	"member_console/internal/common/security"
	"member_console/internal/domain/repository"
	"member_console/internal/platform/cache"
	"member_console/internal/platform/config"
	"member_console/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	log.Println("Configuration loaded")

	// 2. Initialize JWT
	security.InitJWT()
	log.Println("JWT initialized")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	// 4. Initialize Redis
	cache.Connect()
	defer cache.Close()

	// 5. Schema + bootstrap admin
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootstrapCancel()

	if err := repository.EnsureSchema(bootstrapCtx, database.DB); err != nil {
		log.Fatalf("Schema bootstrap failed: %v", err)
	}

	accountRepo := repository.NewPgAccountRepository(database.DB)

	cfg := config.AppConfig
	if err := service.EnsureAdmin(bootstrapCtx, accountRepo, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}

	// 6. Initialize Services
	authService := service.NewAuthService(accountRepo)
	accountService := service.NewAccountService(accountRepo, cache.Client, cfg.StatsCacheTTL)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, accountService, accountRepo)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully")
}
