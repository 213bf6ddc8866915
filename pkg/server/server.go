package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fable/pkg/config"
	"fable/pkg/fault"
	"fable/pkg/flight"
	"fable/pkg/generate"
	"fable/pkg/utils"
)

type Server struct {
	Echo          *echo.Echo
	Stories       *generate.StoryGenerator
	Illustrations *generate.IllustrationGenerator
	Cfg           config.Config
	Ctx           context.Context

	illustrationFlight *flight.Cache[string, *generate.IllustrationResult]
	illustrationParams sync.Map
}

func NewServer(ctx context.Context, cfg config.Config, stories *generate.StoryGenerator, illustrations *generate.IllustrationGenerator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:          e,
		Stories:       stories,
		Illustrations: illustrations,
		Cfg:           cfg,
		Ctx:           ctx,
	}
	s.illustrationFlight = flight.New(s.generateIllustration, cfg.CacheTTL)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.Echo.Group("/api/v1")

	stories := api.Group("/stories")
	stories.POST("/generate", s.handleGenerateStory)
	stories.GET("/themes", s.handleGetThemes)
	stories.GET("/:id/status", s.handleStoryStatus)

	illustrations := api.Group("/illustrations")
	illustrations.POST("/generate", s.handleGenerateIllustration)
	illustrations.GET("/styles", s.handleGetStyles)
}

func (s *Server) Start(addr string) error {
	utils.Logf("Server listening at %s", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	utils.Logf("Shutting down server...")
	return s.Echo.Shutdown(ctx)
}

// renderFault writes a classified error in the uniform envelope. The raw
// upstream text only ever appears under details.
func renderFault(c echo.Context, err error) error {
	var classified *fault.Error
	if !errors.As(err, &classified) {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON("internal error"))
	}

	c.Response().Header().Set("X-Correlation-ID", classified.CorrelationID)
	return c.JSON(classified.Status(), map[string]any{
		"error": map[string]any{
			"kind":           classified.Kind,
			"message":        classified.Message,
			"correlation_id": classified.CorrelationID,
			"details":        classified.Details,
		},
	})
}
