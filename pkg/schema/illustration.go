package schema

import (
	"encoding/json"
	"fmt"

	"fable/pkg/fault"
	"fable/pkg/sanitize"
	"fable/pkg/utils"
)

// SupportedStyles is the fixed style enumeration; matching is
// case-insensitive and canonicalizes to this casing.
var SupportedStyles = []string{
	"children's book",
	"watercolor",
	"digital art",
	"cartoon",
	"realistic",
}

const (
	MinPromptLength   = 10
	MaxPromptLength   = 1000
	MinImageDimension = 256
	MaxImageDimension = 1024
	MinAspectRatio    = 0.5
	MaxAspectRatio    = 2.0
	DimensionStep     = 8 // SDXL-family models want multiples of 8
)

// DefaultSize is used when a request omits the size entirely.
var DefaultSize = Size{Width: 512, Height: 512}

// Size is a (width, height) pair, serialized as a two-element array on the
// wire to match the public API shape.
type Size struct {
	Width  int
	Height int
}

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Width, s.Height})
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("size must be a [width, height] pair: %w", err)
	}
	s.Width, s.Height = pair[0], pair[1]
	return nil
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// IllustrationRequest is an illustration generation request. Values from
// NewIllustrationRequest carry a sanitized prompt and a canonicalized style.
type IllustrationRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style"`
	Size         Size   `json:"size"`
	EnhanceFaces *bool  `json:"enhance_faces,omitempty"`
}

// Enhance reports whether face enhancement is requested; defaults to true.
func (r *IllustrationRequest) Enhance() bool {
	return r.EnhanceFaces == nil || *r.EnhanceFaces
}

// NewIllustrationRequest validates in fixed order: prompt, style, size.
// Prompt and size are validated independently; no partial value is returned.
func NewIllustrationRequest(raw IllustrationRequest) (*IllustrationRequest, error) {
	req := raw
	req.Prompt = sanitize.Normalize(raw.Prompt)
	if req.Size == (Size{}) {
		req.Size = DefaultSize
	}

	if err := req.validatePrompt(); err != nil {
		return nil, err
	}
	if err := req.validateStyle(); err != nil {
		return nil, err
	}
	if err := req.validateSize(); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *IllustrationRequest) validatePrompt() error {
	length := len([]rune(r.Prompt))
	if length < MinPromptLength || length > MaxPromptLength {
		return fault.Invalid("prompt", map[string]any{
			"constraint": "length",
			"min":        MinPromptLength,
			"max":        MaxPromptLength,
			"length":     length,
		})
	}

	escaped := sanitize.EscapeUnsafe(r.Prompt)
	if removed := sanitize.Removed(r.Prompt, escaped); len(removed) > 0 {
		// Not a rejection, but leave a trace of what got dropped.
		utils.Logf("sanitized illustration prompt, removed %d token(s)", len(removed))
	}
	r.Prompt = escaped
	return nil
}

func (r *IllustrationRequest) validateStyle() error {
	canonical, ok := utils.CanonicalFold(r.Style, SupportedStyles)
	if !ok {
		details := map[string]any{
			"constraint":       "unsupported style",
			"provided_style":   r.Style,
			"supported_styles": SupportedStyles,
		}
		if closest, sim := utils.Closest(r.Style, SupportedStyles); sim >= 0.5 {
			details["did_you_mean"] = closest
		}
		return fault.Invalid("style", details)
	}
	r.Style = canonical
	return nil
}

func (r *IllustrationRequest) validateSize() error {
	w, h := r.Size.Width, r.Size.Height
	if w < MinImageDimension || w > MaxImageDimension ||
		h < MinImageDimension || h > MaxImageDimension {
		return fault.Invalid("size", map[string]any{
			"constraint": "dimension bounds",
			"min":        MinImageDimension,
			"max":        MaxImageDimension,
			"width":      w,
			"height":     h,
		})
	}

	// Only meaningful once both dimensions sit inside the raw range.
	ratio := float64(w) / float64(h)
	if ratio < MinAspectRatio || ratio > MaxAspectRatio {
		return fault.Invalid("size", map[string]any{
			"constraint":   "aspect ratio",
			"aspect_ratio": ratio,
			"min":          MinAspectRatio,
			"max":          MaxAspectRatio,
		})
	}
	if w%DimensionStep != 0 || h%DimensionStep != 0 {
		return fault.Invalid("size", map[string]any{
			"constraint": "multiple of 8",
			"width":      w,
			"height":     h,
		})
	}
	return nil
}
