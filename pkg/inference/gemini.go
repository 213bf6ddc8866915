package inference

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"fable/pkg/fault"
)

// GeminiImageProvider implements ImageProvider using the Imagen models
// behind google.golang.org/genai.
type GeminiImageProvider struct {
	client *genai.Client
	apiKey string
	model  string
}

func NewGeminiImageProvider(ctx context.Context, apiKey, model string) (*GeminiImageProvider, error) {
	if model == "" {
		model = "imagen-3.0-generate-002"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiImageProvider{
		client: client,
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (g *GeminiImageProvider) ChangeConfig(ctx context.Context, config *genai.ClientConfig) {
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return
	}
	g.client = client
}

// GenerateImage renders the prompt at the closest supported aspect ratio.
// Upstream safety filtering surfaces as a content-filter fault.
func (g *GeminiImageProvider) GenerateImage(ctx context.Context, prompt string, width, height int) ([]byte, string, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    closestAspect(width, height),
		OutputMIMEType: "image/png",
	}

	result, err := g.client.Models.GenerateImages(ctx, g.model, prompt, config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate image: %w", err)
	}
	if len(result.GeneratedImages) == 0 {
		return nil, "", errors.New("no images generated")
	}

	generated := result.GeneratedImages[0]
	if generated.RAIFilteredReason != "" {
		return nil, "", fault.Filtered(map[string]any{
			"source": "imagen",
			"reason": generated.RAIFilteredReason,
		})
	}
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		return nil, "", errors.New("empty image payload")
	}

	return generated.Image.ImageBytes, generated.Image.MIMEType, nil
}

// closestAspect snaps a width/height pair to the nearest ratio the model
// accepts.
func closestAspect(width, height int) string {
	ratios := []struct {
		name  string
		value float64
	}{
		{"1:1", 1.0},
		{"4:3", 4.0 / 3.0},
		{"3:4", 3.0 / 4.0},
		{"16:9", 16.0 / 9.0},
		{"9:16", 9.0 / 16.0},
	}

	target := float64(width) / float64(height)
	best := ratios[0]
	bestDiff := diff(target, best.value)
	for _, r := range ratios[1:] {
		if d := diff(target, r.value); d < bestDiff {
			best, bestDiff = r, d
		}
	}
	return best.name
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
