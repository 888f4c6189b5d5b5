// Package api exposes the attendee graph, recommendations and layout
// renders over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"graphite/backend/internal/graph"
	"graphite/backend/internal/ingest"
	"graphite/backend/internal/metrics"
	"graphite/backend/internal/recommend"
	"graphite/backend/pkg/config"
	"graphite/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server holds the dependencies of the HTTP handlers
type Server struct {
	cfg     *config.Config
	store   graph.Store
	builder *ingest.Builder
	engine  *recommend.Engine
	logger  *zap.Logger
}

// NewServer wires handlers over a store
func NewServer(cfg *config.Config, store graph.Store) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		builder: ingest.NewBuilder(store, cfg.AutoConnectScope),
		engine:  recommend.NewEngine(store),
		logger:  logger.Named("api"),
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(cors())
	router.Use(instrument())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/events", s.listEvents)
		api.POST("/events", s.createEvent)
		api.GET("/events/:eventId", s.getEvent)
		api.DELETE("/events/:eventId", s.deleteEvent)
		api.POST("/events/:eventId/attendees", s.addAttendees)

		api.GET("/events/:eventId/graph", s.eventGraph)
		api.GET("/events/:eventId/recommendations", s.recommendations)
		api.GET("/events/:eventId/overview", s.overview)
		api.GET("/events/:eventId/search", s.search)

		api.GET("/events/:eventId/layout.svg", s.layoutSVG)
		api.GET("/events/:eventId/layout/ws", s.layoutSession)

		api.GET("/portfolio", s.getPortfolio)
		api.POST("/portfolio", s.setPortfolio)
		api.GET("/person/:personId", s.getPerson)
	}

	return router
}

// health reports whether the graph store can be reached
func (s *Server) health(c *gin.Context) {
	status, store, code := "healthy", "connected", http.StatusOK
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Warn("Graph store unreachable", zap.Error(err))
		status, store, code = "degraded", "disconnected", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"store":     store,
		"backend":   s.cfg.StoreBackend,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// viewerID returns the vcId query parameter or the configured default
func (s *Server) viewerID(c *gin.Context) string {
	if id := c.Query("vcId"); id != "" {
		return id
	}
	return s.cfg.DefaultViewerID
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// instrument records request counts and latency per route template
func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
