// File: internal/app/server.go
package app

import (
	"context"
	"net/http"
	"time"

	"rps_backend/internal/auth"
	"rps_backend/internal/config"
	"rps_backend/internal/gql"
	"rps_backend/internal/middleware"
	"rps_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter assembles the gin engine: global middleware, then the auth and
// GraphQL routes behind session resolution.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	sessions *auth.SessionManager,
	userService user.Service,
	authHandler *auth.Handler,
	graphqlHandler *gql.Handler,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	// Everything below may touch the database and the session cookie.
	sessionAware := router.Group("",
		middleware.RequestTimeout(cfg.RequestTimeout),
		sessions.Middleware(),
		middleware.LoadCurrentUser(sessions, userService, logger.Named("CurrentUser")),
	)
	authHandler.RegisterRoutes(sessionAware.Group("/api"))
	graphqlHandler.RegisterRoutes(sessionAware)

	return router
}

// NewServer creates a new instance of our application server.
func NewServer(cfg *config.Config, logger *zap.Logger, router *gin.Engine) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.BindAddress,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		router: router,
		cfg:    cfg,
		logger: logger,
	}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	return s.httpServer.Shutdown(ctx)
}
