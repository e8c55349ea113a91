package routes

import (
	"github.com/Giovo8/gst-tennis-academy-sub005/handlers"
	"github.com/Giovo8/gst-tennis-academy-sub005/middleware"
	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes mounts every API route on the router. Read endpoints are
// public; anything that mutates a tournament is gated by role.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	matchHandler *handlers.MatchHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/participants", participantHandler.ListByTournamentHandler)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournamentHandler)
		r.Get("/{tournamentID}/standings", tournamentHandler.StandingsHandler)

		// Registration is open to any authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/{tournamentID}/participants", participantHandler.RegisterHandler)
		})

		// Lifecycle operations are restricted to staff.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleGestore))

			r.Post("/", tournamentHandler.CreateHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogoHandler)
			r.Post("/{tournamentID}/start", tournamentHandler.StartHandler)
			r.Post("/{tournamentID}/advance", tournamentHandler.AdvanceHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleGestore))

			r.Post("/{matchID}/result", matchHandler.RecordResultHandler)
			r.Post("/{matchID}/cancel", matchHandler.CancelHandler)
		})
	})
}
