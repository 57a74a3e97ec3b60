package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/policy-letter-api/internal/application/auth"
	"github.com/policy-letter-api/internal/application/letter"
	"github.com/policy-letter-api/internal/config"
	"github.com/policy-letter-api/internal/transport/http/handler"
	appmiddleware "github.com/policy-letter-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds the services and collaborators the router serves.
type Deps struct {
	Auth     auth.Service
	Letters  letter.Service
	Verifier appmiddleware.TokenVerifier
	Roster   appmiddleware.Roster
	Limiter  *appmiddleware.RateLimiter // nil uses 5 rps, burst 10
}

// NewRouter builds and returns the application router. Every route is served
// both at the root and under /api.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	limiter := deps.Limiter
	if limiter == nil {
		limiter = appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	}
	authMw := appmiddleware.Auth(deps.Verifier, deps.Roster)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(deps.Auth)
	pdfH := handler.NewPDFHandler(deps.Letters)

	routes := func(r chi.Router) {
		r.Get("/health", healthH.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Use(limiter.Limit)
			r.Post("/login", authH.Login)
			r.Post("/request-otp", authH.RequestOTP)
			r.Post("/verify-otp", authH.VerifyOTP)
		})

		r.Route("/pdf", func(r chi.Router) {
			r.Use(authMw)
			r.Post("/generate", pdfH.Generate)
			r.Post("/send-email", pdfH.SendEmail)
		})
	}

	routes(r)
	r.Route("/api", routes)
	return r
}
