package linear

import "math"

// Mat4 is a column-major 4x4 matrix of float32: m[c][r] is column c, row r.
type Mat4 [4]Vec4

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

// Translate returns a matrix translating by t.
func Translate(t Vec3) Mat4 {
	m := Identity()
	m[3] = Vec4{t[0], t[1], t[2], 1}
	return m
}

// Scale returns a matrix scaling each axis by the matching component of s.
func Scale(s Vec3) Mat4 {
	return Mat4{{s[0], 0, 0, 0}, {0, s[1], 0, 0}, {0, 0, s[2], 0}, {0, 0, 0, 1}}
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for c := range 4 {
		for row := range 4 {
			var s float32
			for k := range 4 {
				s += m[k][row] * n[c][k]
			}
			r[c][row] = s
		}
	}
	return r
}

// MulVec4 returns m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	var r Vec4
	for row := range 4 {
		r[row] = m[0][row]*v[0] + m[1][row]*v[1] + m[2][row]*v[2] + m[3][row]*v[3]
	}
	return r
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for c := range 4 {
		for row := range 4 {
			r[row][c] = m[c][row]
		}
	}
	return r
}

// Inverse returns the inverse of m and false when m is singular.
func (m Mat4) Inverse() (Mat4, bool) {
	a0 := m[0][0]*m[1][1] - m[0][1]*m[1][0]
	a1 := m[0][0]*m[1][2] - m[0][2]*m[1][0]
	a2 := m[0][0]*m[1][3] - m[0][3]*m[1][0]
	a3 := m[0][1]*m[1][2] - m[0][2]*m[1][1]
	a4 := m[0][1]*m[1][3] - m[0][3]*m[1][1]
	a5 := m[0][2]*m[1][3] - m[0][3]*m[1][2]
	b0 := m[2][0]*m[3][1] - m[2][1]*m[3][0]
	b1 := m[2][0]*m[3][2] - m[2][2]*m[3][0]
	b2 := m[2][0]*m[3][3] - m[2][3]*m[3][0]
	b3 := m[2][1]*m[3][2] - m[2][2]*m[3][1]
	b4 := m[2][1]*m[3][3] - m[2][3]*m[3][1]
	b5 := m[2][2]*m[3][3] - m[2][3]*m[3][2]

	det := a0*b5 - a1*b4 + a2*b3 + a3*b2 - a4*b1 + a5*b0
	if det == 0 {
		return Mat4{}, false
	}
	inv := 1 / det

	var r Mat4
	r[0][0] = (m[1][1]*b5 - m[1][2]*b4 + m[1][3]*b3) * inv
	r[0][1] = (-m[0][1]*b5 + m[0][2]*b4 - m[0][3]*b3) * inv
	r[0][2] = (m[3][1]*a5 - m[3][2]*a4 + m[3][3]*a3) * inv
	r[0][3] = (-m[2][1]*a5 + m[2][2]*a4 - m[2][3]*a3) * inv
	r[1][0] = (-m[1][0]*b5 + m[1][2]*b2 - m[1][3]*b1) * inv
	r[1][1] = (m[0][0]*b5 - m[0][2]*b2 + m[0][3]*b1) * inv
	r[1][2] = (-m[3][0]*a5 + m[3][2]*a2 - m[3][3]*a1) * inv
	r[1][3] = (m[2][0]*a5 - m[2][2]*a2 + m[2][3]*a1) * inv
	r[2][0] = (m[1][0]*b4 - m[1][1]*b2 + m[1][3]*b0) * inv
	r[2][1] = (-m[0][0]*b4 + m[0][1]*b2 - m[0][3]*b0) * inv
	r[2][2] = (m[3][0]*a4 - m[3][1]*a2 + m[3][3]*a0) * inv
	r[2][3] = (-m[2][0]*a4 + m[2][1]*a2 - m[2][3]*a0) * inv
	r[3][0] = (-m[1][0]*b3 + m[1][1]*b1 - m[1][2]*b0) * inv
	r[3][1] = (m[0][0]*b3 - m[0][1]*b1 + m[0][2]*b0) * inv
	r[3][2] = (-m[3][0]*a3 + m[3][1]*a1 - m[3][2]*a0) * inv
	r[3][3] = (m[2][0]*a3 - m[2][1]*a1 + m[2][2]*a0) * inv
	return r, true
}

// PerspectiveLH returns a left-handed perspective projection mapping view
// depth [near, far] to clip depth [0, 1].
func PerspectiveLH(fovY, aspect, near, far float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovY)/2))
	q := far / (far - near)
	return Mat4{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, q, 1},
		{0, 0, -near * q, 0},
	}
}

// LookAtLH returns a left-handed view matrix for a camera at eye looking at
// target.
func LookAtLH(eye, target, up Vec3) Mat4 {
	z := target.Sub(eye).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return Mat4{
		{x[0], y[0], z[0], 0},
		{x[1], y[1], z[1], 0},
		{x[2], y[2], z[2], 0},
		{-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1},
	}
}
