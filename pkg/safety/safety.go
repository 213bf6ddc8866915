// Package safety screens free text against ordered pattern groups before any
// upstream call is made. The groups are fixture data; the mechanism is the
// first-match short-circuit over keyword list, unsafe patterns, then
// age-inappropriate patterns.
package safety

import (
	"regexp"
	"strings"

	"fable/pkg/sanitize"
)

// Result is the outcome of a safety scan. Scanning never fails; callers
// decide how to surface a rejection.
type Result struct {
	OK      bool
	Message string
	Details map[string]any
}

// Rules holds the three ordered pattern groups.
type Rules struct {
	Keywords         []string
	Unsafe           []*regexp.Regexp
	AgeInappropriate []*regexp.Regexp
}

// DefaultRules returns the built-in rule set. A production deployment would
// swap in an exhaustive denylist or a classifier behind the same interface.
func DefaultRules() Rules {
	return Rules{
		Keywords: []string{
			"nsfw",
			"gore",
			"nude",
		},
		Unsafe: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(violence|weapon|drug)`),
			regexp.MustCompile(`(?i)(explicit|mature|adult)`),
		},
		AgeInappropriate: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(fear|horror|scary)`),
			regexp.MustCompile(`(?i)(complex|advanced|difficult)`),
		},
	}
}

// Validator is a stateless scanner over a fixed rule set.
type Validator struct {
	rules Rules
}

func New(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// Check scans the normalized, case-folded text. The first matching pattern
// wins and is reported in the details.
func (v *Validator) Check(text string) Result {
	folded := strings.ToLower(sanitize.Normalize(text))

	for _, kw := range v.rules.Keywords {
		if strings.Contains(folded, kw) {
			return Result{
				Message: "Content contains inappropriate keywords",
				Details: map[string]any{"keyword": kw},
			}
		}
	}
	for _, rx := range v.rules.Unsafe {
		if rx.MatchString(folded) {
			return Result{
				Message: "Content contains unsafe patterns",
				Details: map[string]any{"pattern": rx.String()},
			}
		}
	}
	for _, rx := range v.rules.AgeInappropriate {
		if rx.MatchString(folded) {
			return Result{
				Message: "Content not suitable for target age group",
				Details: map[string]any{"pattern": rx.String()},
			}
		}
	}

	return Result{OK: true, Message: "Content passed safety checks"}
}

// CheckAll joins the given fields with spaces and scans the combined text.
func (v *Validator) CheckAll(fields ...string) Result {
	return v.Check(strings.Join(fields, " "))
}
