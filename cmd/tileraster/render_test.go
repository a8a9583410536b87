package main

import (
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderFrames(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 64, 48
	cfg.Frames = 2
	cfg.Debug = true
	cfg.Output = filepath.Join(dir, "color.png")
	cfg.DepthOutput = filepath.Join(dir, "depth.png")
	cfg.Scene.Mesh = "cube"
	cfg.Scene.Eye = [3]float32{2, 2, -3}
	cfg.Scene.Target = [3]float32{0, 0, 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	if err := render(&cfg, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("render() = %v", err)
	}

	for _, name := range []string{"color_000.png", "color_001.png", "depth_000.png", "depth_001.png"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing output: %v", err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
			t.Errorf("%s bounds = %v, want 64x48", name, b)
		}
	}

	// The cube covers the image center.
	f, err := os.Open(filepath.Join(dir, "color_000.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	bg := cfg.Scene.Background
	r, g, b, _ := img.At(32, 24).RGBA()
	if r>>8 == uint32(bg[0]*255+0.5) && g>>8 == uint32(bg[1]*255+0.5) && b>>8 == uint32(bg[2]*255+0.5) {
		t.Errorf("image center has the background color")
	}
}
