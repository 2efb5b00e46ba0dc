package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fleetworks/fleetworks/internal/ports"
	"github.com/fleetworks/fleetworks/internal/usecase"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	logger *logrus.Logger
	server *http.Server
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new HTTP server wiring all handlers and middleware
func NewServer(
	config ServerConfig,
	logger *logrus.Logger,
	tokenService ports.TokenService,
	authUseCase *usecase.AuthUseCase,
	sourceUseCase *usecase.SourceUseCase,
	versionUseCase *usecase.VersionUseCase,
	inspectionUseCase *usecase.InspectionUseCase,
	auditUseCase *usecase.AuditUseCase,
) *Server {
	auth := NewAuthMiddleware(tokenService)

	authHandler := NewAuthHandler(authUseCase)
	sourceHandler := NewSourceHandler(sourceUseCase, auth)
	versionHandler := NewVersionHandler(versionUseCase, auth)
	inspectionHandler := NewInspectionHandler(inspectionUseCase, auth)
	auditHandler := NewAuditHandler(auditUseCase)

	router := mux.NewRouter()

	authHandler.RegisterRoutes(router)
	sourceHandler.RegisterRoutes(router)
	versionHandler.RegisterRoutes(router)
	inspectionHandler.RegisterRoutes(router)
	auditHandler.RegisterRoutes(router)

	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware)
	router.Use(recoveryMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return &Server{
		addr:   ":" + config.Port,
		logger: logger,
		server: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.addr).Info("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
