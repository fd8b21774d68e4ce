package routes

import (
	"github.com/Harsha29-kns/scorecraft-backend/handlers"
	"github.com/Harsha29-kns/scorecraft-backend/middleware"
	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	authService services.AuthService,
	authHandler *handlers.AuthHandler,
	registrationHandler *handlers.RegistrationHandler,
	teamHandler *handlers.TeamHandler,
	domainHandler *handlers.DomainHandler,
	scoreHandler *handlers.ScoreHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(authService)
	adminOnly := middleware.Authorize(models.RoleAdmin)
	staffOnly := middleware.Authorize(models.RoleAdmin, models.RoleVolunteer)

	router.Get("/ws", webSocketHandler.ServeWs)

	router.Post("/auth/login", authHandler.Login)
	router.With(authenticate).Get("/auth/me", authHandler.Me)
	router.With(authenticate, adminOnly).Post("/users", authHandler.CreateUser)

	// Публичные маршруты: регистрация команд и состояние окна.
	router.Route("/registration", func(r chi.Router) {
		r.Get("/status", registrationHandler.Status)
		r.Post("/", registrationHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Put("/limit", registrationHandler.SetLimit)
			r.Put("/open-time", registrationHandler.SetOpenTime)
			r.Post("/open", registrationHandler.ForceOpen)
			r.Post("/close", registrationHandler.ForceClose)
		})
	})

	router.Route("/domains", func(r chi.Router) {
		r.Get("/", domainHandler.List)
		r.Get("/window", registrationHandler.DomainWindow)
		r.Post("/select", domainHandler.Select)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", domainHandler.Create)
			r.Put("/{domainID}", domainHandler.Update)
			r.Delete("/{domainID}", domainHandler.Delete)
			r.Put("/open-time", registrationHandler.SetDomainOpenTime)
			r.Post("/open", registrationHandler.OpenDomains)
			r.Post("/close", registrationHandler.CloseDomains)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Post("/login", teamHandler.Login)
		r.Post("/payment-proof", teamHandler.UploadPaymentProof)
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Post("/{teamID}/photo", teamHandler.UploadPhoto)
		r.Post("/{teamID}/problem-statement", teamHandler.SubmitProblemStatement)
		r.Post("/{teamID}/issues", teamHandler.SubmitIssue)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(staffOnly)

			r.Get("/", teamHandler.List)
			r.Post("/{teamID}/verify-payment", teamHandler.VerifyPayment)
			r.Put("/{teamID}/sector", teamHandler.AssignSector)
			r.Put("/{teamID}/domain", domainHandler.Reassign)
			r.Put("/{teamID}/score", scoreHandler.SetGameScore)
			r.Put("/{teamID}/reviews/{round}", scoreHandler.SubmitReview)
		})
	})

	router.Get("/leaderboard", scoreHandler.Leaderboard)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(staffOnly)

		r.Put("/members/{memberID}/attendance", scoreHandler.MarkAttendance)
		r.Post("/issues/{issueID}/resolve", teamHandler.ResolveIssue)
		r.Get("/issues", teamHandler.ListOpenIssues)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Get("/dashboard", dashboardHandler.Load)
		r.Post("/reminders", dashboardHandler.SendReminder)
		r.Post("/updates", dashboardHandler.PostUpdate)
		r.Post("/ppt", dashboardHandler.SendPresentationTemplate)
	})
}
