// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/tileraster/internal/frame"
)

// =============================================================================
// Embedded WGSL Shader Sources
// =============================================================================

// WGSL has no includes: each *_common.wgsl file is placed ahead of the
// entry files that use it. naga's SPIR-V backend needs every function
// defined before its first caller, while module-scope bindings may be
// referenced before they are declared.

//go:embed shaders/vertex_common.wgsl
var shaderVertexCommon string

//go:embed shaders/vertex.wgsl
var shaderVertex string

//go:embed shaders/vertex_indexed.wgsl
var shaderVertexIndexed string

//go:embed shaders/raster_common.wgsl
var shaderRasterCommon string

//go:embed shaders/bin.wgsl
var shaderBin string

//go:embed shaders/pixel_depth.wgsl
var shaderPixelDepth string

//go:embed shaders/pixel_shade.wgsl
var shaderPixelShade string

//go:embed shaders/clear.wgsl
var shaderClear string

// ShaderSource returns the complete WGSL module of a stage, or "" for an
// unknown stage.
func ShaderSource(stage frame.Stage) string {
	switch stage {
	case frame.StageVertex:
		return shaderVertexCommon + "\n" + shaderVertex
	case frame.StageVertexIndexed:
		return shaderVertexCommon + "\n" + shaderVertexIndexed
	case frame.StageBin:
		return shaderRasterCommon + "\n" + shaderBin
	case frame.StagePixelDepth:
		return shaderRasterCommon + "\n" + shaderPixelDepth
	case frame.StagePixelShade:
		return shaderRasterCommon + "\n" + shaderPixelShade
	case frame.StageClear:
		return shaderClear
	default:
		return ""
	}
}

// CompileSPIRV compiles the WGSL module of a stage to SPIR-V words.
func CompileSPIRV(stage frame.Stage) ([]uint32, error) {
	src := ShaderSource(stage)
	if src == "" {
		return nil, fmt.Errorf("tileraster gpu: no shader for stage %s", stage)
	}
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("tileraster gpu: compile %s: %w", stage, err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
