package inference

import (
	"context"

	"fable/pkg/schema"
)

// Usage carries upstream resource accounting for a single generation.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	Model            string
}

// TextProvider generates a story payload from a system and user prompt.
type TextProvider interface {
	GenerateStory(ctx context.Context, system, user string) (schema.StoryPayload, Usage, error)
}

// ImageProvider renders an illustration for a prompt at the given size.
// It returns the raw image bytes and their MIME type.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string, width, height int) ([]byte, string, error)
}
