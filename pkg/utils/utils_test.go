package utils

import (
	"math"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"adventure", "adventure", 0},
		{"adventur", "adventure", 1},
		{"watercolor", "watercolour", 1},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Levenshtein(tt.b, tt.a); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"adventure", "adventure", 1.0},
		{"Adventure", "adventure", 1.0},
		{"  adventure  ", "adventure", 1.0},
		{"", "", 1.0},
		{"abcd", "wxyz", 0.0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}

	if got := Similarity("adventur", "adventure"); got <= 0.5 {
		t.Errorf("near miss scored %f, want > 0.5", got)
	}
}

func TestClosest(t *testing.T) {
	themes := []string{"Adventure", "Friendship", "Space", "Ocean"}

	best, sim := Closest("Adventur", themes)
	if best != "Adventure" {
		t.Errorf("best = %q", best)
	}
	if sim < 0.5 {
		t.Errorf("sim = %f, want >= 0.5", sim)
	}

	if _, sim := Closest("zzzzzz", themes); sim >= 0.5 {
		t.Errorf("nonsense scored %f, want < 0.5", sim)
	}
}

func TestCanonicalFold(t *testing.T) {
	styles := []string{"children's book", "watercolor", "digital art"}

	got, ok := CanonicalFold("Children's Book", styles)
	if !ok || got != "children's book" {
		t.Errorf("got %q, %v", got, ok)
	}

	got, ok = CanonicalFold("  WATERCOLOR ", styles)
	if !ok || got != "watercolor" {
		t.Errorf("got %q, %v", got, ok)
	}

	if _, ok := CanonicalFold("oil painting", styles); ok {
		t.Error("unknown style matched")
	}
}

func TestPrettyJSON(t *testing.T) {
	got := PrettyJSON(map[string]int{"tokens": 42})
	want := "{\n  \"tokens\": 42\n}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrJSON(t *testing.T) {
	m := ErrJSON("boom")
	if m["success"] != false || m["error"] != "boom" {
		t.Errorf("unexpected envelope: %v", m)
	}
}
