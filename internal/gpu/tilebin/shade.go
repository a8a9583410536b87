// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"math"

	"github.com/gogpu/tileraster/linear"
)

// FaceNormal is the normal used when no normal channel is configured.
var FaceNormal = linear.Vec3{0, 0, -1}

const (
	specularPower = 32
	specularScale = 0.25
)

// QuantizeDepth converts an NDC depth in [0, 1] to the 24-bit fixed point
// stored in depth targets.
func QuantizeDepth(z float32) uint32 {
	return uint32(z * DepthMax)
}

// PackRGBA8 packs normalized color channels into a u32 with R in the low
// byte.
func PackRGBA8(r, g, b, a float32) uint32 {
	q := func(c float32) uint32 {
		return uint32(min(max(c, 0), 1)*255 + 0.5)
	}
	return q(r) | q(g)<<8 | q(b)<<16 | q(a)<<24
}

// UnpackRGBA8 splits a packed color into its 8-bit channels.
func UnpackRGBA8(c uint32) (r, g, b, a uint8) {
	return uint8(c), uint8(c >> 8), uint8(c >> 16), uint8(c >> 24)
}

// Shade evaluates the lighting model of pixel_shade.wgsl for the surface
// normal n and returns the packed color.
//
// The light is directional. Diffuse and ambient terms are scaled by the
// material base color, ambient is a sky/ground blend on n.y, specular is
// Blinn-Phong against the eye direction. The sum is divided by pi, tone
// mapped with c/(1+c) and gamma encoded with a square root.
func Shade(n linear.Vec3, sp *ShadingParams) uint32 {
	n = n.Normalize()
	l := sp.LightDirection.XYZ().Normalize()
	v := sp.Eye.XYZ().Normalize()
	h := l.Add(v).Normalize()

	light := sp.LightColor.XYZ().Scale(sp.LightColor[3])
	diffuse := light.Scale(max(n.Dot(l), 0))
	ambient := sp.Ambient.XYZ().Scale(sp.Ambient[3] * (0.5 + 0.5*n[1]))
	spec := float32(math.Pow(float64(max(n.Dot(h), 0)), specularPower)) * specularScale
	specular := light.Scale(spec)

	var rgb [3]float32
	for i := range rgb {
		c := (sp.BaseColor[i]*(diffuse[i]+ambient[i]) + specular[i]) / math.Pi
		rgb[i] = float32(math.Sqrt(float64(c / (1 + c))))
	}
	return PackRGBA8(rgb[0], rgb[1], rgb[2], 1)
}
