package server

import (
	"fmt"
	"net/http"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"github.com/getsema/sema/pkg/auth"
	"github.com/getsema/sema/pkg/models"
)

const ReadHeaderTimeout = 5 * time.Second

// Create creates a new HTTP server with the given app state
func Create(appState *models.AppState) *http.Server {
	router := setupRouter(appState)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", appState.Config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func setupRouter(appState *models.AppState) *chi.Mux {
	router := chi.NewRouter()
	router.Use(httpLogger.Logger("router", log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(SendVersion)
	router.Use(middleware.Heartbeat("/healthz"))

	if timeout := appState.Config.Server.RequestTimeoutSeconds; timeout > 0 {
		router.Use(middleware.Timeout(time.Duration(timeout) * time.Second))
	}

	if appState.Config.Auth.Required {
		log.Info("JWT authentication required")
		router.Use(auth.JWTVerifier(appState.Config))
		router.Use(jwtauth.Authenticator)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/contents/{contentId}", func(r chi.Router) {
			r.Route("/embeddings", func(r chi.Router) {
				r.Post("/", CreateEmbeddingsHandler(appState))
				r.Get("/", GetEmbeddingsHandler(appState))
			})
			r.Post("/analysis", RunAnalysisHandler(appState))
		})
	})

	return router
}
