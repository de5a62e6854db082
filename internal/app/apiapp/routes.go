package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivanmatek/ember/internal/config"
	"github.com/ivanmatek/ember/internal/jobs/sweeper"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
	matchingsvc "github.com/ivanmatek/ember/internal/services/matching"
	messagessvc "github.com/ivanmatek/ember/internal/services/messages"
	profilesvc "github.com/ivanmatek/ember/internal/services/profiles"
	sessionssvc "github.com/ivanmatek/ember/internal/services/sessions"
	"github.com/ivanmatek/ember/internal/transport/http/handlers"
)

type Dependencies struct {
	ProfileService  *profilesvc.Service
	SessionService  *sessionssvc.Service
	MatchingService *matchingsvc.Service
	MessageService  *messagessvc.Service
	MessageHub      *messagessvc.Hub
	MatchRepo       *pgrepo.MatchRepo
	SweepJob        *sweeper.Job
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	sessionHandler := handlers.NewSessionHandler(deps.SessionService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchingService, deps.MatchRepo)
	messagesHandler := handlers.NewMessagesHandler(deps.MessageService)
	streamHandler := handlers.NewStreamHandler(deps.MessageService, deps.MessageHub, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.SweepJob)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", profileHandler.Create)
		r.Get("/{id}", profileHandler.Get)
	})

	r.Route("/session/{userID}", func(r chi.Router) {
		r.Get("/", sessionHandler.Resolve)
		r.Post("/find", sessionHandler.Find)
	})

	r.Route("/matches", func(r chi.Router) {
		r.Post("/attempt", matchesHandler.Attempt)
		r.Get("/{id}", matchesHandler.Get)
		r.Get("/{id}/messages", messagesHandler.List)
		r.Post("/{id}/messages", messagesHandler.Send)
		r.Get("/{id}/stream", streamHandler.Stream)
	})

	r.Post("/admin/sweep", adminHandler.Sweep)
}
