package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	jwtSecret string,
	sessionHandler *SessionHandler,
	candidateHandler *CandidateHandler,
	voteHandler *VoteHandler,
	resultHandler *ResultHandler,
	notificationHandler *NotificationHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware([]byte(jwtSecret)))

		r.Route("/organizations/{orgID}/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Get("/", sessionHandler.ListSessions)
			r.Get("/active", sessionHandler.ListActiveSessions)
			r.Patch("/{id}", sessionHandler.UpdateSession)
			r.Delete("/{id}", sessionHandler.DeleteSession)
			r.Post("/{id}/start", sessionHandler.StartSession)
			r.Post("/{id}/stop", sessionHandler.StopSession)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.ListMySessions)
			r.Get("/{id}", sessionHandler.GetSession)
			r.Post("/{id}/remind", sessionHandler.RemindNonVoters)

			r.Post("/{id}/positions", candidateHandler.AddPosition)
			r.Post("/{id}/candidates", candidateHandler.AddCandidate)
			r.Get("/{id}/candidates", candidateHandler.ListCandidates)

			r.Post("/{id}/votes", voteHandler.CastBallot)
			r.Get("/{id}/votes", voteHandler.ListBallots)
			r.Get("/{id}/my-votes", voteHandler.MyBallots)

			r.Get("/{id}/results", resultHandler.GetResult)
			r.Post("/{id}/results/verify", resultHandler.VerifyResult)
			r.Get("/{id}/analytics", resultHandler.GetAnalytics)
		})

		r.Patch("/candidates/{id}", candidateHandler.UpdateCandidate)

		r.Get("/results", resultHandler.ListResults)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.ListNotifications)
			r.Patch("/{id}/read", notificationHandler.MarkRead)
			r.Post("/read-all", notificationHandler.MarkAllRead)
		})
	})

	return r
}
