// Package httpserver exposes the planner over a JSON HTTP API.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mobilityiq/mobilityiq/internal/model"
)

// Server provides an HTTP API over a model.PlannerAPI.
type Server struct {
	addr      string
	api       model.PlannerAPI
	log       *zap.Logger
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server. An empty addr listens on
// 0.0.0.0 at model.DefaultAPIPort.
func NewServer(addr string, api model.PlannerAPI, log *zap.Logger) *Server {
	if addr == "" {
		addr = net.JoinHostPort("0.0.0.0", strconv.Itoa(model.DefaultAPIPort))
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		api:       api,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)

	api.GET("/navigation", s.handleGetNavigation)
	api.POST("/navigation", s.handleNavigate)
	api.POST("/navigation/back", s.handleBack)

	api.GET("/network", s.handleGetNetwork)
	api.POST("/network/upload", s.handleUpload)
	api.POST("/network/mode", s.handleSetMode)
	api.POST("/network/toggle", s.handleToggle)

	api.GET("/dashboard", s.handleDashboard)
	api.GET("/alerts", s.handleAlerts)
	api.GET("/routes", s.handleRoutes)

	api.GET("/corridor", s.handleCorridor)
	api.GET("/corridor/tsp", s.handleTSP)

	api.GET("/bike/estimate", s.handleBikeEstimate)
	api.GET("/scenarios", s.handleScenarios)

	api.GET("/reports/templates", s.handleTemplates)
	api.POST("/reports/export", s.handleExport)
	api.GET("/reports/exports", s.handleRecentExports)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped", zap.Error(err))
		}
	}()
	s.log.Info("http api listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
