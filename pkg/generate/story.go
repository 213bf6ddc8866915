package generate

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"fable/pkg/fault"
	"fable/pkg/inference"
	"fable/pkg/retry"
	"fable/pkg/safety"
	"fable/pkg/schema"
	"fable/pkg/utils"
)

// Words that must never appear in a finished story, regardless of what the
// pre-generation safety scan allowed into the prompt.
var unsafeOutputWords = []string{"death", "violence", "scary", "blood", "weapon"}

const minStoryWords = 100

// StoryGenerator coordinates story generation: structural validation, then
// the content-safety scan, then the retry-wrapped provider call.
type StoryGenerator struct {
	provider inference.TextProvider
	safety   *safety.Validator
	policy   retry.Policy
	sla      time.Duration
}

func NewStoryGenerator(provider inference.TextProvider, validator *safety.Validator, policy retry.Policy) *StoryGenerator {
	return &StoryGenerator{
		provider: provider,
		safety:   validator,
		policy:   policy,
		sla:      StorySLA,
	}
}

// Generate validates raw, scans it for safety, and dispatches to the text
// provider. Both validation stages fail fast: no upstream call is made for a
// rejected request.
func (g *StoryGenerator) Generate(ctx context.Context, raw schema.StoryRequest) (*StoryResult, error) {
	start := time.Now()
	correlationID := ksuid.New().String()

	req, err := schema.NewStoryRequest(raw)
	if err != nil {
		return nil, err
	}

	composed := append([]string{req.CharacterName, req.Theme}, req.Interests...)
	if result := g.safety.CheckAll(composed...); !result.OK {
		details := result.Details
		if details == nil {
			details = make(map[string]any, 1)
		}
		details["reason"] = result.Message
		return nil, fault.Filtered(details)
	}

	user := buildStoryPrompt(req)
	log.Debugf("dispatching story generation (theme=%s age=%d)", req.Theme, req.Age)

	type outcome struct {
		payload schema.StoryPayload
		usage   inference.Usage
	}
	out, err := retry.Do(ctx, g.policy, func(ctx context.Context) (outcome, error) {
		payload, usage, err := g.provider.GenerateStory(ctx, storySystemPrompt, user)
		return outcome{payload, usage}, err
	})
	if err != nil {
		log.Errorf("story generation failed after %s: %v", time.Since(start), err)
		return nil, err
	}

	if err := vetStory(out.payload.Content); err != nil {
		log.Errorf("generated story rejected: %v", err)
		return nil, err
	}
	log.Debugf("story usage: %s", utils.PrettyJSON(out.usage))

	elapsed := time.Since(start)
	if elapsed >= g.sla {
		log.Warnf("story generation exceeded SLA: %s >= %s", elapsed, g.sla)
	}

	return &StoryResult{
		Title:    out.payload.Title,
		Content:  out.payload.Content,
		Theme:    req.Theme,
		Metadata: metadata(correlationID, elapsed, out.usage.Model, out.usage.TotalTokens, g.sla),
	}, nil
}

// vetStory rejects generated content that is too short or contains words
// from the unsafe output list. Output rejections are terminal.
func vetStory(content string) error {
	words := strings.Fields(content)
	if len(words) < minStoryWords {
		e := fault.New(fault.UpstreamFault, map[string]any{
			"reason":     "generated content too short",
			"word_count": len(words),
		})
		e.Retryable = false
		return e
	}

	folded := strings.ToLower(content)
	for _, word := range unsafeOutputWords {
		if strings.Contains(folded, word) {
			return fault.Filtered(map[string]any{
				"source": "post_generation",
				"word":   word,
			})
		}
	}
	return nil
}
