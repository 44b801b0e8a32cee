package api

import (
	"net/http"
	"time"

	"member_console/internal/api/handler"
	"member_console/internal/api/middleware"
	"member_console/internal/app/service"
	"member_console/internal/common/security"
	"member_console/internal/domain/repository"
	"member_console/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	accountService *service.AccountService,
	accounts repository.AccountRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AppConfig.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Parses a "Authorization: Bearer T" token into the request context.
	// The gate middleware decides what to do with it per route group.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	gate := middleware.NewGate(accounts)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		authHandler := handler.NewAuthHandler(authService)
		api.Route("/auth", func(authRouter chi.Router) {
			authHandler.RegisterRoutes(authRouter, gate)
		})

		userHandler := handler.NewUserHandler(accountService)
		api.Route("/users", func(userRouter chi.Router) {
			userHandler.RegisterRoutes(userRouter, gate)
		})
	})

	return r
}
