package main

import (
	"fmt"
	"math"

	"github.com/gogpu/tileraster"
	"github.com/gogpu/tileraster/linear"
)

// buildMesh returns the mesh named by the scene config.
func buildMesh(s *SceneConfig) (tileraster.Mesh, error) {
	switch s.Mesh {
	case "triangle":
		return tileraster.FallbackMesh(), nil
	case "cube":
		return cubeMesh(), nil
	case "sphere":
		return sphereMesh(s.Segments, s.Segments/2), nil
	default:
		return tileraster.Mesh{}, fmt.Errorf("unknown mesh %q", s.Mesh)
	}
}

// cubeMesh returns a unit cube centered on the origin with one quad of
// four vertices per face, so every face keeps its own normal.
func cubeMesh() tileraster.Mesh {
	faces := []struct{ n, u, v linear.Vec3 }{
		{linear.Vec3{1, 0, 0}, linear.Vec3{0, 0, 1}, linear.Vec3{0, 1, 0}},
		{linear.Vec3{-1, 0, 0}, linear.Vec3{0, 0, -1}, linear.Vec3{0, 1, 0}},
		{linear.Vec3{0, 1, 0}, linear.Vec3{1, 0, 0}, linear.Vec3{0, 0, 1}},
		{linear.Vec3{0, -1, 0}, linear.Vec3{1, 0, 0}, linear.Vec3{0, 0, -1}},
		{linear.Vec3{0, 0, 1}, linear.Vec3{-1, 0, 0}, linear.Vec3{0, 1, 0}},
		{linear.Vec3{0, 0, -1}, linear.Vec3{1, 0, 0}, linear.Vec3{0, 1, 0}},
	}
	var m tileraster.Mesh
	for _, f := range faces {
		base := uint32(len(m.Positions))
		c := f.n.Scale(0.5)
		for _, k := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := c.Add(f.u.Scale(k[0] * 0.5)).Add(f.v.Scale(k[1] * 0.5))
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, f.n)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// sphereMesh returns a UV sphere of radius 1 with the given number of
// segments around the y axis and rings from pole to pole.
func sphereMesh(segments, rings int) tileraster.Mesh {
	rings = max(rings, 2)
	var m tileraster.Mesh
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		y, ring := math.Cos(phi), math.Sin(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			p := linear.Vec3{
				float32(ring * math.Cos(theta)),
				float32(y),
				float32(ring * math.Sin(theta)),
			}
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, p)
		}
	}
	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}

// frameUniforms returns the uniforms of frame i at time t. The camera
// orbits the scene target; the mesh stays fixed because normals are not
// transformed by the vertex stage.
func frameUniforms(c *Config, t float32) tileraster.Uniforms {
	s := &c.Scene
	u := tileraster.DefaultUniforms()

	pos := linear.Vec3(s.Position)
	u.World = linear.Translate(pos).Mul(linear.Scale(linear.Vec3{s.Scale, s.Scale, s.Scale}))

	target := linear.Vec3(s.Target)
	eye := linear.Vec3(s.Eye)
	if c.Frames > 1 {
		eye = orbit(eye, target, t)
	}
	aspect := float32(c.Width) / float32(c.Height)
	proj := linear.PerspectiveLH(s.fovRadians(), aspect, 0.1, 1000)
	view := linear.LookAtLH(eye, target, linear.Vec3{0, 1, 0})
	u.ViewProj = proj.Mul(view)
	u.Eye = eye

	u.Material.BaseColor = linear.Vec3(s.BaseColor)
	u.Lighting.LightColor[3] = lightIntensity(t)
	return u
}

// orbit rotates eye around the vertical axis through target by angle t.
func orbit(eye, target linear.Vec3, t float32) linear.Vec3 {
	d := eye.Sub(target)
	sin, cos := math.Sincos(float64(t))
	return target.Add(linear.Vec3{
		d[0]*float32(cos) - d[2]*float32(sin),
		d[1],
		d[0]*float32(sin) + d[2]*float32(cos),
	})
}

// lightIntensity pulses the key light between 0.4π and π.
func lightIntensity(t float32) float32 {
	return (float32(math.Sin(float64(t)))*0.3 + 0.7) * math.Pi
}
