package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hcmclinic/triage-shift-backend-go/internal/handler/http/middleware"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	shiftHandler ShiftHandler,
	env string,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "triage-shift-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/shifts", func(r chi.Router) {
			// SSE stream authenticates itself with a short-lived token.
			r.Get("/events", shiftHandler.Stream)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				// Caregiver lifecycle
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCaregiver)
					r.Get("/status", shiftHandler.GetStatus)
					r.Post("/start", shiftHandler.Start)
					r.Post("/extend", shiftHandler.Extend)
					r.Post("/stop", shiftHandler.Stop)
					r.Post("/break/start", shiftHandler.StartBreak)
					r.Post("/break/resume", shiftHandler.ResumeBreak)
					r.Get("/sessions", shiftHandler.ListMySessions)
					r.Get("/assignment/my", shiftHandler.GetMyAssignment)
					r.Post("/events/token", shiftHandler.GetSSEToken)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/assignment", shiftHandler.Assign)
					r.Get("/assignment/{caregiverID}", shiftHandler.GetAssignment)
				})
			})
		})
	})
	return r
}
