package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/medcamp/docs"
	"github.com/Dosada05/medcamp/handlers"
	"github.com/Dosada05/medcamp/middleware"
	"github.com/Dosada05/medcamp/services"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Camps         *handlers.CampHandler
	Registrations *handlers.RegistrationHandler
	Payments      *handlers.PaymentHandler
	Feedback      *handlers.FeedbackHandler
	Dashboard     *handlers.DashboardHandler
	WebSocket     *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, auth *middleware.Authenticator, corsOrigins []string, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Сессии
	router.Post("/jwt", h.Auth.IssueToken)
	router.Get("/logout", h.Auth.Logout)
	router.Post("/users", h.Auth.SignUp)

	// Публичные маршруты
	router.Get("/camps", h.Camps.ListCamps)
	router.Get("/camps/popular", h.Camps.PopularCamps)
	router.Get("/camps/{campID}", h.Camps.GetCamp)
	router.Get("/camps/{campID}/feedback", h.Feedback.ListByCamp)
	router.Get("/feedback", h.Feedback.List)
	router.Get("/ws/camps/{campID}", h.WebSocket.ServeCampWs)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/users/{email}", func(r chi.Router) {
			r.With(middleware.RequireSelfOrOrganizer("email")).Get("/", h.Users.GetUser)
			r.Patch("/", h.Users.UpdateProfile)
			r.Post("/photo", h.Users.UploadPhoto)
		})

		r.Route("/camps/{campID}/registrations", func(r chi.Router) {
			r.Post("/", h.Registrations.Register)
			r.Get("/me", h.Registrations.GetOwnRegistration)
			r.Delete("/me", h.Registrations.Withdraw)
			r.Post("/me/payment", h.Registrations.ConfirmPayment)
		})

		r.With(middleware.RequireSelfOrOrganizer("email")).
			Get("/participants/{email}/registrations", h.Registrations.ListByParticipant)

		r.Post("/payments/intents", h.Payments.CreateIntent)
		r.Post("/feedback", h.Feedback.Submit)

		// Только организаторы
		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(services.Organizer))

			r.Post("/camps", h.Camps.CreateCamp)
			r.Put("/camps/{campID}", h.Camps.UpdateCamp)
			r.Delete("/camps/{campID}", h.Camps.DeleteCamp)
			r.Post("/camps/{campID}/image", h.Camps.UploadCampImage)

			r.Patch("/camps/{campID}/participant-count", h.Registrations.AdjustParticipantCount)
			r.Post("/camps/{campID}/participant-count/recount", h.Registrations.RecountParticipants)

			r.Get("/registrations/paid", h.Registrations.ListPaid)
			r.Patch("/registrations/{registrationID}/confirmation", h.Registrations.ConfirmRegistration)
			r.Delete("/registrations/{registrationID}", h.Registrations.AdminDelete)

			r.Get("/organizer/stats", h.Dashboard.Stats)
			r.Get("/ws/organizers", h.WebSocket.ServeOrganizersWs)
		})
	})
}
