package utils

import (
	"encoding/json"
	"log"
	"strings"
	"unicode/utf8"
)

// Logf prints consistent server logs.
func Logf(format string, v ...any) {
	log.Printf("[Fable] "+format, v...)
}

// ErrJSON produces a standard JSON error response.
func ErrJSON(msg string) map[string]any {
	return map[string]any{
		"success": false,
		"error":   msg,
	}
}

// PrettyJSON marshals with indentation.
func PrettyJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// Levenshtein returns the edit distance between two strings.
func Levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	al, bl := len(ar), len(br)
	if al == 0 {
		return bl
	}
	if bl == 0 {
		return al
	}

	if bl > al {
		ar, br = br, ar
		al, bl = bl, al
	}

	prev := make([]int, bl+1)
	curr := make([]int, bl+1)
	for j := 0; j <= bl; j++ {
		prev[j] = j
	}

	for i := 1; i <= al; i++ {
		curr[0] = i
		for j := 1; j <= bl; j++ {
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[bl]
}

// Similarity returns a float between 0 and 1 (1 = identical).
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" && b == "" {
		return 1.0
	}
	dist := Levenshtein(a, b)
	maxLen := float64(max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)))
	if maxLen == 0 {
		return 0
	}
	return 1.0 - float64(dist)/maxLen
}

// Closest returns the candidate most similar to s and its similarity score.
func Closest(s string, candidates []string) (string, float64) {
	var best string
	var bestSim float64
	for _, c := range candidates {
		if sim := Similarity(s, c); sim > bestSim {
			best, bestSim = c, sim
		}
	}
	return best, bestSim
}

// CanonicalFold matches s case-insensitively against the candidate list and
// returns the candidate's own casing.
func CanonicalFold(s string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(s), c) {
			return c, true
		}
	}
	return "", false
}
