package http

import (
	"net/http"

	"relearn/internal/auth"
	"relearn/internal/config"
	"relearn/internal/http/handler"
	mw "relearn/internal/http/middleware"
	"relearn/internal/push"
	"relearn/internal/question"
	"relearn/internal/source"
	"relearn/internal/study"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

type Deps struct {
	DB        *gorm.DB
	JWT       *auth.JWT
	Source    *source.Service
	Plans     *study.PlanService
	Push      *push.Service
	Questions *question.QueryService
	Attempts  *question.AttemptService
	Generator *question.GenerationService
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: d.DB, JWT: d.JWT}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(d.JWT)).Get("/me", me.Me)

	pageH := &handler.PageHandler{Svc: d.Source}
	r.Route("/pages", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))
		r.Post("/", pageH.Connect)
		r.Post("/{id}/snapshots", pageH.IngestSnapshot)
	})

	studyH := &handler.StudyHandler{Plans: d.Plans}
	r.Route("/study", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))
		r.Post("/plans", studyH.CreatePlan)
	})

	questionH := &handler.QuestionHandler{Query: d.Questions, Attempts: d.Attempts, Generator: d.Generator}
	r.Route("/questions", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))
		r.Get("/waiting", questionH.Waiting)
		r.Get("/{id}", questionH.Detail)
		r.Post("/generate", questionH.Generate)
		r.Post("/{id}/attempts", questionH.SubmitAttempt)
	})

	pushH := &handler.PushHandler{Svc: d.Push, VapidPublicKey: cfg.FCMVapidPublicKey}
	r.Route("/push", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))
		r.Post("/tokens", pushH.RegisterToken)
		r.Delete("/tokens", pushH.DeleteToken)
		r.Get("/vapid-key", pushH.VapidKey)
	})

	return r
}
