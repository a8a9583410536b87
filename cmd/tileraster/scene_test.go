package main

import (
	"math"
	"testing"

	"github.com/gogpu/tileraster/linear"
)

func TestCubeMesh(t *testing.T) {
	m := cubeMesh()
	if len(m.Positions) != 24 || len(m.Normals) != 24 {
		t.Fatalf("cube has %d positions, %d normals, want 24", len(m.Positions), len(m.Normals))
	}
	if len(m.Indices) != 36 {
		t.Fatalf("cube has %d indices, want 36", len(m.Indices))
	}
	for i, p := range m.Positions {
		// Every corner lies on its face plane.
		if d := p.Dot(m.Normals[i]); d != 0.5 {
			t.Errorf("vertex %d: distance to face plane = %g, want 0.5", i, d)
		}
		for _, c := range p {
			if c != 0.5 && c != -0.5 {
				t.Errorf("vertex %d = %v is not a cube corner", i, p)
			}
		}
	}
}

func TestSphereMesh(t *testing.T) {
	const segments, rings = 8, 4
	m := sphereMesh(segments, rings)
	if want := (segments + 1) * (rings + 1); len(m.Positions) != want {
		t.Fatalf("sphere has %d vertices, want %d", len(m.Positions), want)
	}
	if want := segments * rings * 6; len(m.Indices) != want {
		t.Fatalf("sphere has %d indices, want %d", len(m.Indices), want)
	}
	for i, p := range m.Positions {
		if l := p.Len(); math.Abs(float64(l-1)) > 1e-5 {
			t.Errorf("vertex %d at radius %g, want 1", i, l)
		}
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}
}

func TestLightIntensity(t *testing.T) {
	tests := []struct {
		t    float32
		want float64
	}{
		{0, 0.7 * math.Pi},
		{math.Pi / 2, math.Pi},
		{3 * math.Pi / 2, 0.4 * math.Pi},
	}
	for _, tt := range tests {
		if got := lightIntensity(tt.t); math.Abs(float64(got)-tt.want) > 1e-5 {
			t.Errorf("lightIntensity(%g) = %g, want %g", tt.t, got, tt.want)
		}
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	eye, target := linear.Vec3{0, 4, -16}, linear.Vec3{0, 4, 0}
	for _, a := range []float32{0, 0.5, 2, 4} {
		got := orbit(eye, target, a)
		if d := got.Sub(target).Len(); math.Abs(float64(d-16)) > 1e-4 {
			t.Errorf("orbit(%g) distance = %g, want 16", a, d)
		}
		if got[1] != 4 {
			t.Errorf("orbit(%g) height = %g, want 4", a, got[1])
		}
	}
}

func TestFrameUniformsStaticCamera(t *testing.T) {
	cfg := DefaultConfig()
	u := frameUniforms(&cfg, 1)
	if u.Eye != linear.Vec3(cfg.Scene.Eye) {
		t.Errorf("single-frame eye = %v, want %v", u.Eye, cfg.Scene.Eye)
	}
	if u.Lighting.LightColor[3] != lightIntensity(1) {
		t.Errorf("light intensity = %g, want %g", u.Lighting.LightColor[3], lightIntensity(1))
	}

	// The scene target projects to the center of the image.
	c := u.ViewProj.MulVec4(linear.Vec3(cfg.Scene.Target).Vec4(1))
	if x, y := c[0]/c[3], c[1]/c[3]; math.Abs(float64(x)) > 1e-5 || math.Abs(float64(y)) > 1e-5 {
		t.Errorf("target projects to (%g, %g), want (0, 0)", x, y)
	}
}
