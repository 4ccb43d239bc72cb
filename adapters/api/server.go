package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"designspace/app"
	"designspace/internal"
	"designspace/internal/errors"
	"designspace/ports"

	"github.com/gin-gonic/gin"
)

// Server exposes a completed analysis over HTTP
type Server struct {
	router *gin.Engine
	result *app.AnalysisResult
	runs   ports.RunRepository
	logger *internal.Logger
}

// NewServer creates a server over result. runs may be nil, in which case the
// stored-run endpoints are not registered.
func NewServer(result *app.AnalysisResult, runs ports.RunRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router: gin.New(),
		result: result,
		runs:   runs,
		logger: logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	h := NewHandler(s.result)
	s.router.GET("/health", h.Health)

	api := s.router.Group("/api")
	{
		api.GET("/points", h.Points)
		api.GET("/centroids", h.Centroids)
		api.GET("/reconstructions", h.Reconstructions)
		api.GET("/report", h.Report)
		api.GET("/features", h.Features)
		api.GET("/vocabulary/:column", h.Vocabulary)
		api.POST("/classify", h.Classify)
		api.POST("/interpolate", h.Interpolate)
	}

	if s.runs != nil {
		rh := NewRunHandler(s.runs)
		api.GET("/runs", rh.List)
		api.GET("/runs/:id", rh.Get)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("[api] %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[api] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("[api] shutting down")
	return srv.Shutdown(shutdownCtx)
}

func respondError(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatus(err), gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
