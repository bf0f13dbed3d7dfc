// Package server exposes the browser UI of the collection plus the health
// and metrics endpoints.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/user/filmshelf/internal/library"
	"github.com/user/filmshelf/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Server handles HTTP requests for the collection UI
type Server struct {
	service   *library.Service
	store     store.Store
	signer    *FormSigner
	engine    *gin.Engine
	server    *http.Server
	startTime time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(service *library.Service, st store.Store, secretKey string) *Server {
	s := &Server{
		service:   service,
		store:     st,
		signer:    NewFormSigner(secretKey),
		startTime: time.Now(),
	}

	s.setupRouter()
	return s
}

// setupRouter configures the gin engine, templates and routes
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	tmpl := template.Must(template.ParseFS(templatesFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.handleIndex)
	r.GET("/add", s.handleAddForm)
	r.POST("/add", s.handleAddSearch)
	r.GET("/find", s.handleImport)
	r.GET("/edit/:id", s.handleEditForm)
	r.POST("/edit/:id", s.handleEditSubmit)

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Registered last: the delete route shares the root segment with the
	// static routes above.
	r.GET("/:id", s.handleDelete)

	s.engine = r
}

// Engine returns the underlying gin engine (for testing purposes)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins listening on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Int("port", port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth returns JSON with status, database connectivity, and uptime
func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		dbStatus = fmt.Sprintf("unhealthy: %v", err)
	}

	uptime := time.Since(s.startTime).Round(time.Second).String()

	status := "healthy"
	code := http.StatusOK
	if dbStatus != "healthy" {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:   status,
		Database: dbStatus,
		Uptime:   uptime,
	})
}

// requestLogger logs every request through zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

// GetUptime returns the server uptime
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.startTime)
}
