package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"fable/pkg/fault"
	"fable/pkg/schema"
	"fable/pkg/utils"
)

// OpenAIProvider implements TextProvider using OpenAI's official Go SDK.
type OpenAIProvider struct {
	client      *openai.Client
	apiKey      string
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAIProvider creates a story provider backed by the OpenAI client.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client:      &client,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   4000,
		temperature: 0.7,
	}
}

func (o *OpenAIProvider) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(baseURL),
	)
	o.client = &client
}

func (o *OpenAIProvider) SetModel(model string) {
	o.model = model
}

// GenerateStory sends the prompts to the chat completion endpoint and parses
// the structured story payload out of the response.
func (o *OpenAIProvider) GenerateStory(ctx context.Context, system, user string) (schema.StoryPayload, Usage, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Role: "system",
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: param.Opt[string]{Value: system},
					},
				}},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Role: "user",
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: param.Opt[string]{Value: user},
					},
				},
			},
		},
		MaxCompletionTokens: openai.Int(o.maxTokens),
		Temperature:         openai.Float(o.temperature),
		ResponseFormat:      schema.StoryResponseFormat(),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return schema.StoryPayload{}, Usage{}, fmt.Errorf("openai inference error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return schema.StoryPayload{}, Usage{}, errors.New("no choices returned")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return schema.StoryPayload{}, Usage{}, fault.Filtered(map[string]any{
			"source": "openai",
		})
	}
	if choice.Message.Content == "" {
		return schema.StoryPayload{}, Usage{}, errors.New("empty completion content")
	}

	var payload schema.StoryPayload
	if err := json.Unmarshal([]byte(choice.Message.Content), &payload); err != nil {
		return schema.StoryPayload{}, Usage{}, fmt.Errorf("failed to parse story payload: %w", err)
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Model:            resp.Model,
	}
	if usage.TotalTokens == 0 {
		// Local endpoints often omit usage; estimate from the prompt.
		if n, err := utils.NumTokens(system + user); err == nil {
			usage.PromptTokens = int64(n)
			usage.TotalTokens = int64(n)
		}
	}

	return payload, usage, nil
}
