package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/api/handlers"
	appMiddleware "github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/api/middlewares"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/auth"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/config"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/services"
)

const maxBodyBytes = 10 << 20 // 10MB JSON body cap

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, tokens *auth.TokenManager,
	chat *services.ChatService, sessions *services.SessionService) *Server {

	authHandler := handlers.NewAuthHandler(db, tokens)
	sessionHandler := handlers.NewSessionHandler(chat, sessions)
	askHandler := handlers.NewAskHandler(chat)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(appMiddleware.MaxBody(maxBodyBytes))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// public auth endpoints, tightly rate limited
	r.Group(func(pub chi.Router) {
		pub.Use(httprate.LimitByIP(5, 15*time.Minute))
		pub.Post("/auth/signup", authHandler.Signup)
		pub.Post("/auth/login", authHandler.Login)
	})

	// general API limit for everything else
	r.Group(func(api chi.Router) {
		api.Use(httprate.LimitByIP(30, time.Minute))

		api.Post("/ask", askHandler.Ask)
		api.Get("/twiml/emergency-call", askHandler.EmergencyCallScript)

		// protected session endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(tokens))
			protected.Post("/sessions/start", sessionHandler.Start)
			protected.Post("/sessions/{sessionId}/message", sessionHandler.Message)
			protected.Post("/sessions/{sessionId}/end", sessionHandler.End)
			protected.Get("/sessions/{sessionId}", sessionHandler.Get)
			protected.Get("/sessions", sessionHandler.List)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
