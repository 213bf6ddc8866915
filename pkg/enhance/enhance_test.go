package enhance

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestEnhanceProducesWebP(t *testing.T) {
	p := New()

	data, mime, err := p.Enhance(encodePNG(t, 16, 16), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/webp" {
		t.Errorf("mime = %q", mime)
	}
	if len(data) == 0 {
		t.Fatal("empty output")
	}
	// RIFF....WEBP container header.
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		t.Errorf("output is not a webp container: % x", data[:12])
	}
}

func TestEnhanceRejectsGarbage(t *testing.T) {
	p := New()
	if _, _, err := p.Enhance([]byte("not an image"), true); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-10, 0},
		{0, 0},
		{127.9, 127},
		{255, 255},
		{300, 255},
	}
	for _, tt := range tests {
		if got := clamp(tt.in); got != tt.want {
			t.Errorf("clamp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSaturatePreservesGray(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	saturate(img, 1.2)
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != g || g != b {
		t.Errorf("gray pixel drifted: %d %d %d", r>>8, g>>8, b>>8)
	}
}
