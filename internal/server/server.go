package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sidj/calorie-meter/internal/api"
	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/middleware"
	"github.com/sidj/calorie-meter/internal/service"
)

// Server represents the HTTP server.
type Server struct {
	router *gin.Engine
	http   *http.Server
	store  *database.Store
}

// New creates a server with all routes registered.
func New(store *database.Store) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// The UI is served from another local origin during development.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsCfg))

	v1 := router.Group("/api/v1")
	api.NewRecipeHandler(service.NewRecipeService(store)).RegisterRoutes(v1)
	api.NewDiaryHandler(service.NewDiaryService(store)).RegisterRoutes(v1)
	api.NewTargetsHandler(service.NewTargetsService(store)).RegisterRoutes(v1)
	api.NewBackupHandler(service.NewBackupService(store)).RegisterRoutes(v1)

	router.GET("/health", func(c *gin.Context) {
		if err := store.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "fresh_database": store.Degraded()})
	})

	return &Server{router: router, store: store}
}

// Start begins serving on addr and blocks until the listener stops.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
