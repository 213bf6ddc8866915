package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"fable/pkg/generate"
	"fable/pkg/schema"
)

// POST /api/v1/illustrations/generate
func (s *Server) handleGenerateIllustration(c echo.Context) error {
	var req schema.IllustrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	key := fingerprint(req)
	s.illustrationParams.Store(key, req)

	var result *generate.IllustrationResult
	var err error
	if c.QueryParam("force") == "true" {
		result, err = s.illustrationFlight.Force(key)
	} else {
		result, err = s.illustrationFlight.Get(key)
	}
	// On a cache hit the work function never consumed the stored request.
	s.illustrationParams.Delete(key)
	if err != nil {
		return renderFault(c, err)
	}

	h := c.Response().Header()
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.Cfg.CacheTTL.Seconds())))
	h.Set("X-Correlation-ID", result.Metadata.CorrelationID)
	h.Set("X-Generation-Time", fmt.Sprintf("%.2fs", result.Metadata.ElapsedSec))
	return c.Blob(http.StatusOK, result.MIME, result.Data)
}

// generateIllustration is the flight cache's work function; the bound
// request travels through illustrationParams keyed by fingerprint.
func (s *Server) generateIllustration(key string) (*generate.IllustrationResult, error) {
	v, ok := s.illustrationParams.LoadAndDelete(key)
	if !ok {
		return nil, fmt.Errorf("no request stored for key %s", key)
	}
	req := v.(schema.IllustrationRequest)

	ctx, cancel := context.WithTimeout(s.Ctx, s.Cfg.IllustrationTimeout)
	defer cancel()

	result, err := s.Illustrations.Generate(ctx, req)
	if err != nil {
		log.Errorf("illustration generation failed: %v", err)
		return nil, err
	}
	return result, nil
}

// GET /api/v1/illustrations/styles
func (s *Server) handleGetStyles(c echo.Context) error {
	info := map[string]any{
		"children's book": styleInfo{
			Description:   "Whimsical and engaging illustrations suitable for children",
			ExamplePrompt: "A friendly dragon reading books to forest animals",
		},
		"watercolor": styleInfo{
			Description:   "Soft, artistic watercolor painting style",
			ExamplePrompt: "A garden of flowers swaying in a gentle breeze",
		},
		"digital art": styleInfo{
			Description:   "Clean, vibrant digital illustrations",
			ExamplePrompt: "A rocket ship soaring past colorful planets",
		},
		"cartoon": styleInfo{
			Description:   "Bold, expressive cartoon style",
			ExamplePrompt: "A mischievous cat chasing butterflies",
		},
		"realistic": styleInfo{
			Description:   "Photorealistic rendering with natural lighting",
			ExamplePrompt: "A lighthouse on a cliff at sunset",
		},
	}
	return c.JSON(http.StatusOK, map[string]any{
		"styles": info,
		"parameters": map[string]any{
			"min_dimension":  schema.MinImageDimension,
			"max_dimension":  schema.MaxImageDimension,
			"dimension_step": schema.DimensionStep,
			"default_size":   schema.DefaultSize,
		},
	})
}

type styleInfo struct {
	Description   string `json:"description"`
	ExamplePrompt string `json:"example_prompt"`
}

// fingerprint keys the flight cache on everything that affects the output.
func fingerprint(req schema.IllustrationRequest) string {
	b, _ := json.Marshal(req)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
