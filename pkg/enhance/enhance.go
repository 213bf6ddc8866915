// Package enhance post-processes generated illustrations: mild saturation,
// contrast and sharpness boosts, then WebP encoding for delivery.
package enhance

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/gen2brain/webp"
)

const (
	saturationFactor = 1.2
	contrastFactor   = 1.1
	sharpnessFactor  = 0.15
)

type Processor struct {
	quality int
}

func New() *Processor {
	return &Processor{quality: 100}
}

// Enhance decodes the raw image, applies the enhancement passes, and encodes
// the result as WebP. Face enhancement is accepted but currently a no-op
// hook: detection would need a vision model this service does not carry.
func (p *Processor) Enhance(data []byte, enhanceFaces bool) ([]byte, string, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		// Fallback: try generic decode if not PNG.
		var err2 error
		img, _, err2 = image.Decode(bytes.NewReader(data))
		if err2 != nil {
			return nil, "", fmt.Errorf("failed to decode image (png: %v, generic: %v)", err, err2)
		}
	}

	rgba := toRGBA(img)
	saturate(rgba, saturationFactor)
	contrast(rgba, contrastFactor)
	sharpen(rgba, sharpnessFactor)
	_ = enhanceFaces

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, rgba, webp.Options{Lossless: false, Quality: p.quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), "image/webp", nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func saturate(img *image.RGBA, factor float64) {
	px := img.Pix
	for i := 0; i < len(px); i += 4 {
		r, g, b := float64(px[i]), float64(px[i+1]), float64(px[i+2])
		// Rec. 601 luma as the desaturation anchor.
		gray := 0.299*r + 0.587*g + 0.114*b
		px[i] = clamp(gray + (r-gray)*factor)
		px[i+1] = clamp(gray + (g-gray)*factor)
		px[i+2] = clamp(gray + (b-gray)*factor)
	}
}

func contrast(img *image.RGBA, factor float64) {
	px := img.Pix
	for i := 0; i < len(px); i += 4 {
		for c := 0; c < 3; c++ {
			px[i+c] = clamp((float64(px[i+c])-128)*factor + 128)
		}
	}
}

// sharpen blends an unsharp-mask pass into the image by the given amount.
func sharpen(img *image.RGBA, amount float64) {
	bounds := img.Bounds()
	src := image.NewRGBA(bounds)
	copy(src.Pix, img.Pix)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			for c := 0; c < 3; c++ {
				center := float64(src.Pix[src.PixOffset(x, y)+c])
				neighbors := float64(src.Pix[src.PixOffset(x-1, y)+c]) +
					float64(src.Pix[src.PixOffset(x+1, y)+c]) +
					float64(src.Pix[src.PixOffset(x, y-1)+c]) +
					float64(src.Pix[src.PixOffset(x, y+1)+c])
				edge := 5*center - neighbors
				img.Pix[img.PixOffset(x, y)+c] = clamp(center + (edge-center)*amount)
			}
		}
	}
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
