package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Sport-Tournaments/sport-tournaments-backend/handlers"
	"github.com/Sport-Tournaments/sport-tournaments-backend/middleware"
	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Draw       *handlers.DrawHandler
	Bracket    *handlers.BracketHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
}

// InitRoutes wires the full HTTP surface. Reads are public; every mutating
// route sits behind JWT auth with organizer-or-admin role checks enforced
// again in the service layer.
func InitRoutes(h Handlers, auth *middleware.Authenticator) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/login", h.Auth.LoginHandler)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/pots", h.Draw.GetPotsHandler)
		r.Get("/{tournamentID}/pots/validate", h.Draw.ValidatePotsHandler)
		r.Get("/{tournamentID}/bracket", h.Bracket.GetHandler)
		r.Get("/{tournamentID}/standings", h.Bracket.StandingsHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", h.Tournament.CreateHandler)
			r.Patch("/{tournamentID}/status", h.Tournament.UpdateStatusHandler)

			r.Post("/{tournamentID}/pots", h.Draw.AssignPotHandler)
			r.Post("/{tournamentID}/pots/bulk", h.Draw.BulkAssignPotsHandler)
			r.Delete("/{tournamentID}/pots", h.Draw.ClearPotsHandler)
			r.Post("/{tournamentID}/draw/pots", h.Draw.ExecutePotDrawHandler)
			r.Post("/{tournamentID}/draw/random", h.Draw.ExecuteRandomDrawHandler)
			r.Put("/{tournamentID}/groups", h.Draw.ReassignGroupsHandler)

			r.Post("/{tournamentID}/bracket", h.Bracket.GenerateHandler)
			r.Delete("/{tournamentID}/bracket", h.Bracket.DeleteHandler)
			r.Put("/{tournamentID}/bracket/matches/{matchID}", h.Bracket.UpdateMatchHandler)
			r.Post("/{tournamentID}/bracket/seed", h.Bracket.SeedKnockoutHandler)
			r.Post("/{tournamentID}/fixtures", h.Match.GenerateFixturesHandler)
		})
	})

	router.Get("/groups/{groupID}/matches", h.Match.ListByGroupHandler)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
		r.Put("/matches/{matchID}/result", h.Match.EnterResultHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
