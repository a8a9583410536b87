package tileraster

import (
	"image/color"
	"testing"

	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

func TestImageRGBA(t *testing.T) {
	words := []uint32{
		tilebin.PackRGBA8(1, 0, 0, 1), tilebin.PackRGBA8(0, 1, 0, 1),
		tilebin.PackRGBA8(0, 0, 1, 1), tilebin.PackRGBA8(1, 1, 1, 0),
	}
	img := ImageRGBA(words, 2, 2)
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{1, 0, color.RGBA{0, 255, 0, 255}},
		{0, 1, color.RGBA{0, 0, 255, 255}},
		{1, 1, color.RGBA{255, 255, 255, 0}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("RGBAAt(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestImageRGBAShortInput(t *testing.T) {
	img := ImageRGBA([]uint32{0xffffffff}, 2, 1)
	if got := img.RGBAAt(1, 0); got != (color.RGBA{}) {
		t.Errorf("RGBAAt(1, 0) = %v, want zero", got)
	}
}

func TestDepthImage(t *testing.T) {
	img := DepthImage([]uint32{0, tilebin.DepthMax, 1 << 23, 0xffffffff}, 4, 1)
	want := []uint16{0, 0xffff, 0x8000, 0xffff}
	for x, w := range want {
		if got := img.Gray16At(x, 0).Y; got != w {
			t.Errorf("Gray16At(%d, 0) = %#04x, want %#04x", x, got, w)
		}
	}
}
