package tileraster

import (
	"math"

	"github.com/gogpu/tileraster/internal/gpu/tilebin"
	"github.com/gogpu/tileraster/linear"
)

// Lighting is the per-frame light setup. Colors carry their intensity in
// the fourth component.
type Lighting struct {
	// Ambient is the sky color; the ground side of a surface receives
	// none of it.
	Ambient linear.Vec4

	// LightColor is the color of the directional light.
	LightColor linear.Vec4

	// LightDirection points from the surface towards the light.
	LightDirection linear.Vec3
}

// DefaultLighting returns a warm key light from the upper right with a
// bright blue sky.
func DefaultLighting() Lighting {
	return Lighting{
		Ambient:        linear.Vec4{0.6, 0.7, 1.0, 2.4},
		LightColor:     linear.Vec4{1.0, 0.7, 0.5, math.Pi},
		LightDirection: linear.Vec3{1, 1, -1},
	}
}

// Material is the surface description of a draw.
type Material struct {
	BaseColor linear.Vec3
}

// DefaultMaterial returns a pale yellow material.
func DefaultMaterial() Material {
	return Material{BaseColor: linear.Vec3{1, 1, 0.5}}
}

// Uniforms is the per-frame data of a draw.
type Uniforms struct {
	World    linear.Mat4
	ViewProj linear.Mat4

	// Eye is the camera position. The specular term uses the direction
	// from the origin to Eye as the view vector.
	Eye linear.Vec3

	Lighting Lighting
	Material Material
}

// DefaultUniforms returns identity transforms, a camera on the -z axis and
// the default lighting and material.
func DefaultUniforms() Uniforms {
	return Uniforms{
		World:    linear.Identity(),
		ViewProj: linear.Identity(),
		Eye:      linear.Vec3{0, 0, -1},
		Lighting: DefaultLighting(),
		Material: DefaultMaterial(),
	}
}

// WorldViewProj returns ViewProj * World.
func (u Uniforms) WorldViewProj() linear.Mat4 {
	return u.ViewProj.Mul(u.World)
}

func (u Uniforms) shadingParams(normal tilebin.AttributeLayout) tilebin.ShadingParams {
	return tilebin.ShadingParams{
		Ambient:        u.Lighting.Ambient,
		LightColor:     u.Lighting.LightColor,
		LightDirection: u.Lighting.LightDirection.Vec4(0),
		Eye:            u.Eye.Vec4(1),
		BaseColor:      u.Material.BaseColor.Vec4(1),
		Normal:         normal,
	}
}
