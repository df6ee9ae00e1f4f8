package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keywordagent/internal/agent"
	"keywordagent/internal/config"
	"keywordagent/internal/logger"
	"keywordagent/internal/storage"
	"keywordagent/pkg"
)

// PipelineRunner is the part of the agent pipeline the server needs.
type PipelineRunner interface {
	Run(ctx context.Context, req pkg.KeywordRequest) <-chan agent.Event
}

// Server serves the keyword form, the JSON API and operational
// endpoints.
type Server struct {
	echo     *echo.Echo
	pipeline PipelineRunner
	store    storage.RunStore
	cfg      config.YAMLConfig
	metrics  *Metrics
}

func New(pipeline PipelineRunner, store storage.RunStore, cfg config.YAMLConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		logger.Error().
			Int("status", code).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Err(err).
			Msg("HTTP error")
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": msg})
		}
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		echo:     e,
		pipeline: pipeline,
		store:    store,
		cfg:      cfg,
		metrics:  NewMetrics(reg),
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.File("/", filepath.Join(cfg.Server.StaticDir, "index.html"))
	e.Static("/static", cfg.Server.StaticDir)

	api := e.Group("/api")
	api.POST("/keywords", s.handleGenerateKeywords)
	api.GET("/runs/:id", s.handleGetRun)

	return s
}

// Metrics exposes the collectors so the pipeline observer can be wired
// in main.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(addr string) error {
	logger.Info().Str("addr", addr).Msg("HTTP server listening")
	err := s.echo.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
