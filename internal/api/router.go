package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cardkeep/cardkeep-be/internal/api/handlers"
	"github.com/cardkeep/cardkeep-be/internal/auth"
	"github.com/cardkeep/cardkeep-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(tokens *auth.TokenService, userService services.UserServiceProvider, cardService services.CardServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", auth.Header},
		ExposedHeaders:   []string{auth.Header},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	cardHandler := handlers.NewCardHandler(cardService)

	// Public endpoints
	r.Post("/users", userHandler.Register)
	r.Post("/users/login", userHandler.Login)

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokens, userService))

		r.Get("/users/me", userHandler.Me)
		r.Delete("/users/me/token", userHandler.Logout)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.GetAll)
			r.Post("/", cardHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cardHandler.Get)
				r.Patch("/", cardHandler.Update)
				r.Delete("/", cardHandler.Delete)
			})
		})
	})

	return r
}
