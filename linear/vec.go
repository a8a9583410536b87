// Package linear provides the small amount of vector and matrix math the
// rasterizer needs to build per-frame uniform data.
//
// Matrices are column-major and multiply column vectors (M * v), which is the
// layout WGSL expects for mat4x4<f32> uniforms, so a Mat4 can be copied into a
// uniform buffer without transposition.
package linear

import "math"

// Vec3 is a 3-component vector of float32.
type Vec3 [3]float32

// Vec4 is a 4-component vector of float32.
type Vec4 [4]float32

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Scale returns s * v.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float32 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

// Cross returns v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Normalize returns v scaled to unit length.
// The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Vec4 extends v with the given w component.
func (v Vec3) Vec4(w float32) Vec4 { return Vec4{v[0], v[1], v[2], w} }

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 { return Vec3{v[0], v[1], v[2]} }

// Scale returns s * v.
func (v Vec4) Scale(s float32) Vec4 { return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s} }

// Dot returns the dot product of v and w.
func (v Vec4) Dot(w Vec4) float32 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] + v[3]*w[3]
}
