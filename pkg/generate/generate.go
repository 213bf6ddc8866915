// Package generate composes structural validation, content safety, and the
// retry-wrapped upstream call into one pipeline per content type. Validation
// always runs before any network effort is spent.
package generate

import (
	"time"
)

// SLA thresholds per content type. Advisory at this layer: a breach is
// flagged and logged, in-flight calls are not aborted here.
const (
	StorySLA        = 30 * time.Second
	IllustrationSLA = 45 * time.Second
)

// Metadata describes a completed generation.
type Metadata struct {
	CorrelationID string        `json:"correlation_id"`
	Elapsed       time.Duration `json:"-"`
	ElapsedSec    float64       `json:"generation_time"`
	Model         string        `json:"model"`
	TokensUsed    int64         `json:"tokens_used,omitempty"`
	WithinSLA     bool          `json:"within_sla"`
}

// StoryResult is a successful story generation.
type StoryResult struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Theme    string   `json:"theme"`
	Metadata Metadata `json:"metadata"`
}

// IllustrationResult is a successful illustration generation. Data holds the
// post-processed image.
type IllustrationResult struct {
	Data     []byte
	MIME     string
	Metadata Metadata
}

// Enhancer is the image post-processing step, consumed as a black box.
type Enhancer interface {
	Enhance(data []byte, enhanceFaces bool) ([]byte, string, error)
}

func metadata(correlationID string, elapsed time.Duration, model string, tokens int64, sla time.Duration) Metadata {
	return Metadata{
		CorrelationID: correlationID,
		Elapsed:       elapsed,
		ElapsedSec:    elapsed.Seconds(),
		Model:         model,
		TokensUsed:    tokens,
		WithinSLA:     elapsed < sla,
	}
}
