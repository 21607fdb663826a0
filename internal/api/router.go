package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/accounts-be/internal/api/handlers"
	mw "github.com/isdelr/accounts-be/internal/api/middleware"
	"github.com/isdelr/accounts-be/internal/services"
	"github.com/isdelr/accounts-be/internal/websocket"
)

const maxBodyBytes = 10 << 20

// NewRouter creates and configures a new Chi router.
func NewRouter(
	userService services.UserServiceProvider,
	eventService services.EventServiceProvider,
	hub *websocket.Hub,
	proc handlers.ProcessStats,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !allowsAny(allowedOrigins),
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	healthHandler := handlers.NewHealthHandler(proc)
	wsHandler := handlers.NewWebSocketHandler(hub, allowedOrigins)

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Create)
			r.Post("/login", userHandler.Login)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.Put("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.GetRecent)
			r.Get("/ws", wsHandler.Serve)
		})
	})

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.NotFound)

	return r
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
