package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"fable/pkg/schema"
)

// POST /api/v1/stories/generate
func (s *Server) handleGenerateStory(c echo.Context) error {
	var req schema.StoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	// The HTTP layer owns the hard deadline; the pipeline below only flags
	// SLA breaches.
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.Cfg.StoryTimeout)
	defer cancel()

	result, err := s.Stories.Generate(ctx, req)
	if err != nil {
		return renderFault(c, err)
	}

	c.Response().Header().Set("X-Correlation-ID", result.Metadata.CorrelationID)
	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"title":    result.Title,
			"story":    result.Content,
			"metadata": result.Metadata,
			"performance": map[string]any{
				"response_time": result.Metadata.ElapsedSec,
				"within_sla":    result.Metadata.WithinSLA,
			},
		},
	})
}

// GET /api/v1/stories/themes
func (s *Server) handleGetThemes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"themes": schema.SupportedThemes,
	})
}

// GET /api/v1/stories/:id/status
//
// Generation is synchronous, so a well-formed id is always reported as
// completed. The endpoint exists for client compatibility.
func (s *Server) handleStoryStatus(c echo.Context) error {
	id := c.Param("id")
	if _, err := ksuid.Parse(id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid story id")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    "completed",
		"progress":  100,
		"story_id":  id,
		"timestamp": time.Now().Unix(),
	})
}
