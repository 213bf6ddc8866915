package generate

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"fable/pkg/fault"
	"fable/pkg/inference"
	"fable/pkg/retry"
	"fable/pkg/safety"
	"fable/pkg/schema"
)

// IllustrationGenerator coordinates illustration generation. The enhancement
// step runs after a successful upstream call and is treated as a black box.
type IllustrationGenerator struct {
	provider inference.ImageProvider
	safety   *safety.Validator
	enhancer Enhancer
	policy   retry.Policy
	model    string
	sla      time.Duration
}

func NewIllustrationGenerator(provider inference.ImageProvider, validator *safety.Validator, enhancer Enhancer, policy retry.Policy, model string) *IllustrationGenerator {
	return &IllustrationGenerator{
		provider: provider,
		safety:   validator,
		enhancer: enhancer,
		policy:   policy,
		model:    model,
		sla:      IllustrationSLA,
	}
}

// Generate validates raw, scans the prompt, dispatches to the image
// provider under the retry policy, and post-processes the result.
func (g *IllustrationGenerator) Generate(ctx context.Context, raw schema.IllustrationRequest) (*IllustrationResult, error) {
	start := time.Now()
	correlationID := ksuid.New().String()

	req, err := schema.NewIllustrationRequest(raw)
	if err != nil {
		return nil, err
	}

	if result := g.safety.Check(req.Prompt); !result.OK {
		details := result.Details
		if details == nil {
			details = make(map[string]any, 1)
		}
		details["reason"] = result.Message
		return nil, fault.Filtered(details)
	}

	styled := buildIllustrationPrompt(req.Prompt, req.Style)
	log.Debugf("dispatching illustration generation (style=%s size=%s)", req.Style, req.Size)

	generated, err := retry.Do(ctx, g.policy, func(ctx context.Context) ([]byte, error) {
		data, _, err := g.provider.GenerateImage(ctx, styled, req.Size.Width, req.Size.Height)
		return data, err
	})
	if err != nil {
		log.Errorf("illustration generation failed after %s: %v", time.Since(start), err)
		return nil, err
	}

	data, mime, err := g.enhancer.Enhance(generated, req.Enhance())
	if err != nil {
		e := fault.New(fault.UpstreamFault, map[string]any{
			"reason": "image enhancement failed",
		})
		e.Retryable = false
		return nil, e.Wrap(err)
	}

	elapsed := time.Since(start)
	if elapsed >= g.sla {
		log.Warnf("illustration generation exceeded SLA: %s >= %s", elapsed, g.sla)
	}

	return &IllustrationResult{
		Data:     data,
		MIME:     mime,
		Metadata: metadata(correlationID, elapsed, g.model, 0, g.sla),
	}, nil
}
