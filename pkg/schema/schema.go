package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// StoryPayload is the structured output the text model is asked to produce.
type StoryPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

var StoryPayloadSchema = generateSchema[StoryPayload]()

func StoryResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "story",
		Description: openai.String("A child-safe story with a title"),
		Schema:      StoryPayloadSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
