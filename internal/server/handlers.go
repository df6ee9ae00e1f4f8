package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"keywordagent/internal/agent"
	"keywordagent/internal/logger"
	"keywordagent/internal/storage"
	"keywordagent/pkg"
)

// handleGenerateKeywords runs the pipeline for one form submission.
// The age-range and topic checks happen here, before any model or
// trends call.
func (s *Server) handleGenerateKeywords(c echo.Context) error {
	var req pkg.KeywordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Ungültiger Request-Body.")
	}

	req.Thema = strings.TrimSpace(req.Thema)
	if req.Thema == "" {
		s.metrics.RequestsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "Bitte ein Thema eingeben.")
	}
	if req.AlterMin < 0 || req.AlterMax < 0 || req.AlterMin > req.AlterMax {
		s.metrics.RequestsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest,
			"Bitte einen gültigen Altersbereich angeben (min <= max, beide >= 0).")
	}

	events := s.pipeline.Run(c.Request().Context(), req)
	state, err := agent.Collect(events)
	if err != nil {
		var invalid *agent.InvalidInputError
		if errors.As(err, &invalid) {
			s.metrics.RequestsTotal.WithLabelValues("invalid").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, invalid.Message)
		}
		s.metrics.RequestsTotal.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusBadGateway, "Keyword-Generierung fehlgeschlagen.")
	}

	result := agent.AssembleResult(uuid.NewString(), state)

	ttl := time.Duration(s.cfg.Store.TTLMinutes) * time.Minute
	if err := s.store.SaveRun(c.Request().Context(), result, ttl); err != nil {
		// The response is still complete without the stored copy.
		logger.Warn().Err(err).Str("run_id", result.RunID).Msg("Storing run result failed")
	}

	s.metrics.RequestsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetRun(c echo.Context) error {
	result, err := s.store.GetRun(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Run nicht gefunden.")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
