package generate

import (
	"fmt"
	"strings"

	"fable/pkg/schema"
)

const storySystemPrompt = `You are a children's story writer creating safe, educational content.`

const storyPromptTemplate = `Create an engaging, educational, and age-appropriate children's story with the following specifications:

Main Character: %s
Age: %d years old
Theme: %s
Interests: %s
Additional Context: %s

Requirements:
- Story must be safe and appropriate for children aged %d
- Include educational elements about: %s
- Maintain a positive and encouraging tone
- Use age-appropriate vocabulary and concepts
- Length: %d words
- Reading level: Suitable for %d-year-olds

Focus on creating a story that:
1. Engages and entertains while educating
2. Promotes positive values and learning
3. Incorporates the character's interests naturally
4. Maintains COPPA compliance and content safety`

// buildStoryPrompt formats the user prompt, scaling story length and
// educational focus with the character's age.
func buildStoryPrompt(req *schema.StoryRequest) string {
	maxWords := min(300+req.Age*50, 1000)
	notes := req.AdditionalNotes
	if notes == "" {
		notes = "None provided"
	}

	return fmt.Sprintf(storyPromptTemplate,
		req.CharacterName,
		req.Age,
		req.Theme,
		strings.Join(req.Interests, ", "),
		notes,
		req.Age,
		strings.Join(educationalFocus(req.Age), ", "),
		maxWords,
		req.Age,
	)
}

func educationalFocus(age int) []string {
	base := []string{"vocabulary", "reading comprehension"}
	switch {
	case age <= 5:
		return append(base, "basic concepts", "colors", "shapes")
	case age <= 8:
		return append(base, "problem solving", "social skills", "basic science")
	default:
		return append(base, "critical thinking", "advanced concepts", "STEM topics")
	}
}

// stylePrompts maps each supported style to its prompt fragment.
var stylePrompts = map[string]string{
	"children's book": "in the style of a children's book illustration, whimsical, colorful, gentle, age-appropriate, engaging",
	"watercolor":      "watercolor painting style, soft edges, artistic, flowing, natural pigments, textured paper effect",
	"digital art":     "digital art style, clean lines, vibrant, modern, professional finish, balanced composition",
	"cartoon":         "cartoon style, bold outlines, expressive, dynamic, appealing, character-focused",
	"realistic":       "photorealistic style, detailed, natural lighting, proper proportions, subtle textures",
}

const qualityKeywords = "masterpiece, highly detailed, best quality, professional"

// buildIllustrationPrompt appends the style fragment and quality keywords to
// the sanitized user prompt.
func buildIllustrationPrompt(prompt, style string) string {
	parts := []string{prompt}
	if fragment, ok := stylePrompts[strings.ToLower(style)]; ok {
		parts = append(parts, fragment)
	}
	parts = append(parts, "high quality, detailed, professional", qualityKeywords)
	return strings.Join(parts, ", ")
}
