package tileraster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// ImageRGBA converts packed RGBA8 words of a w x h color target into an
// image. Words beyond w*h are ignored.
func ImageRGBA(words []uint32, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	n := min(len(words), w*h)
	for i := range n {
		r, g, b, a := tilebin.UnpackRGBA8(words[i])
		o := i * 4
		img.Pix[o+0] = r
		img.Pix[o+1] = g
		img.Pix[o+2] = b
		img.Pix[o+3] = a
	}
	return img
}

// DepthImage converts the 24-bit depth words of a w x h depth target into
// a 16-bit grayscale image, near surfaces dark.
func DepthImage(words []uint32, w, h int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	n := min(len(words), w*h)
	for i := range n {
		d := min(words[i], tilebin.DepthMax)
		img.SetGray16(i%w, i/w, color.Gray16{Y: uint16(d >> 8)})
	}
	return img
}

// Image reads the target back and converts it with ImageRGBA or
// DepthImage.
func (t *Target) Image() (image.Image, error) {
	if t == nil || t.owner == nil {
		return nil, fmt.Errorf("%w: nil target", ErrInvalidArgument)
	}
	words, err := t.owner.ReadTarget(t)
	if err != nil {
		return nil, err
	}
	if t.kind == KindDepth {
		return DepthImage(words, t.width, t.height), nil
	}
	return ImageRGBA(words, t.width, t.height), nil
}
