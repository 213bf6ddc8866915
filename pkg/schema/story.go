package schema

import (
	"regexp"

	"fable/pkg/fault"
	"fable/pkg/sanitize"
	"fable/pkg/utils"
)

// SupportedThemes is the fixed theme enumeration for story requests.
var SupportedThemes = []string{
	"Magical", "Adventure", "Educational", "Fantasy",
	"Nature", "Science", "Space", "Ocean",
	"Friendship", "Family",
}

const (
	MaxCharacterNameLength = 50
	MinAge                 = 3 // COPPA floor
	MaxAge                 = 12
	MaxInterests           = 5
	MaxAdditionalNotes     = 500
)

var (
	// Length is checked separately so over-long names report the limit.
	nameRX     = regexp.MustCompile(`^[\p{L}\s-]+$`)
	interestRX = regexp.MustCompile(`^[\p{L}\s-]{1,30}$`)
)

// StoryRequest is a story generation request. Instances obtained from
// NewStoryRequest are fully sanitized and validated; no partially-validated
// value escapes the constructor.
type StoryRequest struct {
	CharacterName   string   `json:"character_name"`
	Age             int      `json:"age"`
	Theme           string   `json:"theme"`
	Interests       []string `json:"interests"`
	AdditionalNotes string   `json:"additional_notes,omitempty"`
}

// NewStoryRequest sanitizes every free-text field and validates in fixed
// order: name, age, theme, interests, notes. The first violation wins.
func NewStoryRequest(raw StoryRequest) (*StoryRequest, error) {
	req := raw
	req.CharacterName = sanitize.Normalize(raw.CharacterName)
	req.Theme = sanitize.Normalize(raw.Theme)
	req.Interests = make([]string, len(raw.Interests))
	for i, interest := range raw.Interests {
		req.Interests[i] = sanitize.Normalize(interest)
	}
	if raw.AdditionalNotes != "" {
		req.AdditionalNotes = sanitize.Normalize(raw.AdditionalNotes)
	}

	if err := req.validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *StoryRequest) validate() error {
	if err := r.validateCharacterName(); err != nil {
		return err
	}
	if err := r.validateAge(); err != nil {
		return err
	}
	if err := r.validateTheme(); err != nil {
		return err
	}
	if err := r.validateInterests(); err != nil {
		return err
	}
	return r.validateAdditionalNotes()
}

func (r *StoryRequest) validateCharacterName() error {
	if r.CharacterName == "" {
		return fault.Invalid("character_name", map[string]any{
			"constraint": "required",
		})
	}
	if !nameRX.MatchString(r.CharacterName) {
		return fault.Invalid("character_name", map[string]any{
			"constraint": "letters, spaces, and hyphens only",
			"value":      r.CharacterName,
		})
	}
	if len([]rune(r.CharacterName)) > MaxCharacterNameLength {
		return fault.Invalid("character_name", map[string]any{
			"constraint": "max length",
			"max":        MaxCharacterNameLength,
			"length":     len([]rune(r.CharacterName)),
		})
	}
	return nil
}

func (r *StoryRequest) validateAge() error {
	if r.Age < MinAge || r.Age > MaxAge {
		return fault.Invalid("age", map[string]any{
			"constraint": "range",
			"min":        MinAge,
			"max":        MaxAge,
			"value":      r.Age,
		})
	}
	return nil
}

func (r *StoryRequest) validateTheme() error {
	if r.Theme == "" {
		return fault.Invalid("theme", map[string]any{
			"constraint": "required",
		})
	}
	for _, theme := range SupportedThemes {
		if r.Theme == theme {
			return nil
		}
	}
	details := map[string]any{
		"constraint":       "unsupported theme",
		"value":            r.Theme,
		"supported_themes": SupportedThemes,
	}
	if closest, sim := utils.Closest(r.Theme, SupportedThemes); sim >= 0.5 {
		details["did_you_mean"] = closest
	}
	return fault.Invalid("theme", details)
}

func (r *StoryRequest) validateInterests() error {
	if len(r.Interests) == 0 {
		return fault.Invalid("interests", map[string]any{
			"constraint": "at least one interest required",
		})
	}
	if len(r.Interests) > MaxInterests {
		return fault.Invalid("interests", map[string]any{
			"constraint": "max count",
			"max":        MaxInterests,
			"count":      len(r.Interests),
		})
	}
	for _, interest := range r.Interests {
		if !interestRX.MatchString(interest) {
			return fault.Invalid("interests", map[string]any{
				"constraint":    "letters, spaces, and hyphens only",
				"invalid_value": interest,
			})
		}
	}

	// Dedupe only after every entry passed its pattern check,
	// preserving first-seen order.
	seen := make(map[string]struct{}, len(r.Interests))
	deduped := r.Interests[:0]
	for _, interest := range r.Interests {
		if _, ok := seen[interest]; ok {
			continue
		}
		seen[interest] = struct{}{}
		deduped = append(deduped, interest)
	}
	r.Interests = deduped
	return nil
}

func (r *StoryRequest) validateAdditionalNotes() error {
	if r.AdditionalNotes == "" {
		return nil
	}
	if len([]rune(r.AdditionalNotes)) > MaxAdditionalNotes {
		return fault.Invalid("additional_notes", map[string]any{
			"constraint": "max length",
			"max":        MaxAdditionalNotes,
			"length":     len([]rune(r.AdditionalNotes)),
		})
	}
	return nil
}
