package api

import (
	"net/http"
	"os"

	"beconforms/internal/auth"
	"beconforms/internal/db"
	"beconforms/internal/pubsub"
	"beconforms/internal/schema"
	"beconforms/internal/service"
	"beconforms/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Dependencies struct {
	DB        *db.Pool
	RDB       *redis.Client
	Bus       *pubsub.Bus
	Hub       *ws.Hub
	Log       *zap.Logger
	JobClient service.JobClient
	Validator *schema.Validator
	Sessions  *SessionStore
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(d.Log))

	jwtConfig := auth.NewJWTConfig(os.Getenv("JWT_SECRET"))
	r.Use(jwtConfig.Middleware)

	// Public form endpoints
	r.Get("/forms/{id}", d.getPublicForm)
	r.Post("/forms/{id}/submit", d.submitResponse)

	// Fill sessions (one section at a time)
	r.Post("/forms/{id}/sessions", d.createSession)
	r.Get("/sessions/{id}", d.getSession)
	r.Put("/sessions/{id}/answers", d.putAnswer)
	r.Post("/sessions/{id}/next", d.sessionNext)
	r.Post("/sessions/{id}/previous", d.sessionPrevious)
	r.Post("/sessions/{id}/submit", d.sessionSubmit)

	// Tracking link redirect
	r.Get("/t/{slug}", d.redirectTrackLink)

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin)

		r.Post("/forms", d.createForm)
		r.Get("/forms/{id}", d.getAdminForm)
		r.Patch("/forms/{id}", d.updateFormSettings)

		r.Post("/forms/{id}/fields", d.addField)
		r.Put("/forms/{id}/fields/reorder", d.reorderFields)
		r.Put("/forms/{id}/fields/{fieldId}", d.updateField)
		r.Delete("/forms/{id}/fields/{fieldId}", d.deleteField)

		r.Get("/forms/{id}/responses", d.listResponses)
		r.Get("/forms/{id}/responses.csv", d.exportResponsesCSV)

		r.Post("/events", d.createEvent)

		r.Post("/links", d.createTrackLink)
		r.Get("/links", d.listTrackLinks)
		r.Delete("/links/{id}", d.deleteTrackLink)
	})

	// WebSocket admin live feed
	r.Get("/ws", d.wsHandler)

	return r
}

func (d Dependencies) formService() *service.FormService {
	regSvc := service.NewRegistrationService(d.DB.Queries, d.Log)
	svc := service.NewFormService(d.DB.Queries, d.Validator, regSvc, d.Bus)
	if d.JobClient != nil {
		svc.SetJobClient(d.JobClient)
	}
	return svc
}
