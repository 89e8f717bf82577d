// Package server exposes the knowledge graph over HTTP using gin.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isometry-app/isometry"
	"github.com/isometry-app/isometry/pkg/config"
	"github.com/isometry-app/isometry/pkg/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	client *isometry.Client
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client *isometry.Client) *Server {
	return &Server{
		config: cfg,
		client: client,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router returns the underlying gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.client)
	nodesHandler := handlers.NewNodesHandler(s.client)
	queryHandler := handlers.NewQueryHandler(s.client)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)

	v1 := s.router.Group("/api/v1")
	{
		nodes := v1.Group("/nodes")
		{
			nodes.GET("", nodesHandler.List)
			nodes.POST("", nodesHandler.Create)
			nodes.GET("/attention", nodesHandler.Attention)
			nodes.GET("/:id", nodesHandler.Get)
			nodes.PUT("/:id", nodesHandler.Update)
			nodes.DELETE("/:id", nodesHandler.Delete)
			nodes.POST("/:id/duplicate", nodesHandler.Duplicate)
			nodes.GET("/:id/neighbors", nodesHandler.Neighbors)
		}

		v1.POST("/query", queryHandler.Query)
		v1.GET("/schema", queryHandler.Schema)
		v1.GET("/stats", nodesHandler.Stats)

		presets := v1.Group("/presets")
		{
			presets.GET("", queryHandler.Presets)
			presets.PUT("/:name", queryHandler.SavePreset)
			presets.DELETE("/:name", queryHandler.DeletePreset)
		}
	}
}

// Start starts the server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
