package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"fable/pkg/fault"
)

func validIllustration() IllustrationRequest {
	return IllustrationRequest{
		Prompt: "A friendly dragon reading books",
		Style:  "Children's Book",
		Size:   Size{Width: 512, Height: 512},
	}
}

func TestNewIllustrationRequestValid(t *testing.T) {
	req, err := NewIllustrationRequest(validIllustration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Style != "children's book" {
		t.Errorf("style = %q, want canonicalized %q", req.Style, "children's book")
	}
	if !req.Enhance() {
		t.Error("enhance_faces should default to true")
	}
}

func TestNewIllustrationRequestPromptLength(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantErr bool
	}{
		{"too short", "short", true},
		{"minimum", strings.Repeat("a", 10), false},
		{"maximum", strings.Repeat("a", 1000), false},
		{"too long", strings.Repeat("a", 1001), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validIllustration()
			raw.Prompt = tt.prompt
			_, err := NewIllustrationRequest(raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if field := invalidFieldOf(t, err); field != "prompt" {
					t.Errorf("field = %q, want prompt", field)
				}
			}
		})
	}
}

func TestNewIllustrationRequestPromptSanitized(t *testing.T) {
	raw := validIllustration()
	raw.Prompt = `A dragon <reading> "books"`
	req, err := NewIllustrationRequest(raw)
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(req.Prompt, `<>{}[]\;`) {
		t.Errorf("prompt still contains denylisted characters: %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "&quot;books&quot;") {
		t.Errorf("prompt quotes not escaped: %q", req.Prompt)
	}
}

func TestNewIllustrationRequestStyle(t *testing.T) {
	for _, style := range []string{"WATERCOLOR", "Watercolor", "watercolor"} {
		raw := validIllustration()
		raw.Style = style
		req, err := NewIllustrationRequest(raw)
		if err != nil {
			t.Fatalf("style %q rejected: %v", style, err)
		}
		if req.Style != "watercolor" {
			t.Errorf("style = %q, want watercolor", req.Style)
		}
	}

	raw := validIllustration()
	raw.Style = "oil painting"
	_, err := NewIllustrationRequest(raw)
	if field := invalidFieldOf(t, err); field != "style" {
		t.Errorf("field = %q, want style", field)
	}
}

func TestNewIllustrationRequestSize(t *testing.T) {
	tests := []struct {
		name    string
		size    Size
		wantErr bool
	}{
		{"square default-ish", Size{512, 512}, false},
		{"landscape", Size{1024, 512}, false},
		{"portrait", Size{512, 1024}, false},
		{"below minimum", Size{100, 100}, true},
		{"above maximum", Size{1032, 512}, true},
		{"not multiple of 8", Size{300, 300}, true},
		{"aspect too wide", Size{1024, 504}, true},
		{"aspect too tall", Size{504, 1024}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validIllustration()
			raw.Size = tt.size
			_, err := NewIllustrationRequest(raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("size %v: err = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if err != nil {
				if field := invalidFieldOf(t, err); field != "size" {
					t.Errorf("field = %q, want size", field)
				}
			}
		})
	}
}

func TestNewIllustrationRequestSizeDefault(t *testing.T) {
	raw := validIllustration()
	raw.Size = Size{}
	req, err := NewIllustrationRequest(raw)
	if err != nil {
		t.Fatal(err)
	}
	if req.Size != DefaultSize {
		t.Errorf("size = %v, want default %v", req.Size, DefaultSize)
	}
}

func TestSizeJSONPair(t *testing.T) {
	data, err := json.Marshal(Size{Width: 640, Height: 480})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[640,480]" {
		t.Errorf("marshal = %s, want [640,480]", data)
	}

	var s Size
	if err := json.Unmarshal([]byte("[512,768]"), &s); err != nil {
		t.Fatal(err)
	}
	if s != (Size{Width: 512, Height: 768}) {
		t.Errorf("unmarshal = %v", s)
	}

	if err := json.Unmarshal([]byte(`"512x768"`), &s); err == nil {
		t.Error("expected error for non-array size")
	}
}

func invalidFieldOf(t *testing.T, err error) string {
	t.Helper()
	var classified *fault.Error
	if !errors.As(err, &classified) {
		t.Fatalf("error is not classified: %v", err)
	}
	if classified.Kind != fault.InvalidRequest {
		t.Fatalf("kind = %s, want %s", classified.Kind, fault.InvalidRequest)
	}
	field, _ := classified.Details["field"].(string)
	return field
}
