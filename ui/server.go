package ui

import (
	"net/http"
	"sync"
	"time"

	"vidinsights/app"
	"vidinsights/internal"
	"vidinsights/internal/analytics"
	"vidinsights/internal/errors"
	"vidinsights/ports"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// Server exposes the dashboard commands as a JSON API
type Server struct {
	router   *gin.Engine
	service  *app.DashboardService
	exporter ports.DatasetExporter
	logger   *internal.Logger

	// Weighted semaphore bounding concurrent analyses
	analysisSem *semaphore.Weighted

	// Prediction history is the only mutable state; gin serves concurrently.
	history      *analytics.PredictionHistory
	historyMutex sync.RWMutex
}

// NewServer creates a server over a loaded dashboard service. At most
// maxConcurrent API requests compute at once; others wait for a slot.
func NewServer(service *app.DashboardService, exporter ports.DatasetExporter, maxConcurrent int) *Server {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	s := &Server{
		router:      gin.New(),
		service:     service,
		exporter:    exporter,
		logger:      internal.DefaultLogger.With("ui"),
		analysisSem: semaphore.NewWeighted(int64(maxConcurrent)),
		history:     analytics.NewPredictionHistory(),
	}
	s.history.Ensure(app.DefaultHistoryGroup)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api", s.limitConcurrency())
	api.GET("/dataset", s.handleDataset)
	api.GET("/describe", s.handleDescribe)
	api.GET("/correlation", s.handleCorrelation)
	api.GET("/histogram", s.handleHistogram)
	api.GET("/top", s.handleTop)
	api.POST("/regression", s.handleRegression)
	api.POST("/ttest/one-sample", s.handleOneSampleTest)
	api.POST("/ttest/groups", s.handleGroupTest)
	api.POST("/filter", s.handleFilter)
	api.GET("/insights", s.handleInsights)
	api.GET("/history", s.handleHistory)
	api.DELETE("/history/:group", s.handleClearHistory)
	api.GET("/export", s.handleExport)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting vidinsights API on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%.2fms)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), float64(time.Since(start).Nanoseconds())/1e6)
	}
}

// limitConcurrency holds a semaphore slot for the duration of the request
func (s *Server) limitConcurrency() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.analysisSem.Acquire(c.Request.Context(), 1); err != nil {
			s.logger.Warn("%s %s abandoned while waiting for capacity: %v", c.Request.Method, c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "server busy",
				Code:  errors.CodeUnavailable,
			})
			return
		}
		defer s.analysisSem.Release(1)
		c.Next()
	}
}

// respondError maps an error onto its status and error body
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	status := errors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, ErrorResponse{
		Error:   appErr.Error(),
		Code:    appErr.Code,
		Warning: errors.IsWarning(appErr.Code),
	})
}
