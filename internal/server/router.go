package server

import (
	"context"
	"fmt"

	"github.com/abduss/mediadrop/internal/auth"
	"github.com/abduss/mediadrop/internal/config"
	"github.com/abduss/mediadrop/internal/logger"
	"github.com/abduss/mediadrop/internal/media"
	"github.com/abduss/mediadrop/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	Logger       *zap.Logger
	AuthService  *auth.Service
	MediaService *media.Service
	Repository   Pinger
	Disks        Pinger
	// LocalRoot is served at Config.Storage.Local.MountPath when set.
	LocalRoot string
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	corsMiddleware, err := newCORS(deps.Config.CORS)
	if err != nil {
		return nil, fmt.Errorf("configure cors: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(deps.Logger))
	router.Use(metrics.Middleware())
	router.Use(corsMiddleware)

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	if deps.LocalRoot != "" {
		router.Static(deps.Config.Storage.Local.MountPath, deps.LocalRoot)
	}

	if deps.AuthService != nil {
		auth.RegisterRoutes(&router.RouterGroup, deps.AuthService)

		protected := router.Group("/")
		protected.Use(auth.AuthMiddleware(deps.AuthService))

		if deps.MediaService != nil {
			media.RegisterRoutes(protected, deps.MediaService, deps.Config.Media.MaxRequestBytes())
		}
	}

	return router, nil
}
