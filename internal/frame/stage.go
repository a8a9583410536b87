// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "fmt"

// Stage identifies a compute kernel of the pipeline.
type Stage uint8

const (
	// StageVertex transforms vertices read directly from the source stream.
	StageVertex Stage = iota

	// StageVertexIndexed transforms vertices fetched through the index list.
	StageVertexIndexed

	// StageBin appends (tile, triangle) pairs for every covered tile.
	StageBin

	// StagePixelDepth resolves the nearest depth of every covered pixel.
	StagePixelDepth

	// StagePixelShade shades the pixels whose depth won the depth pass.
	StagePixelShade

	// StageClear fills a render target with a packed value.
	StageClear

	// StageCount is the number of stages.
	StageCount
)

// String returns the stage name. Names double as shader labels.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageVertexIndexed:
		return "vertex_indexed"
	case StageBin:
		return "bin"
	case StagePixelDepth:
		return "pixel_depth"
	case StagePixelShade:
		return "pixel_shade"
	case StageClear:
		return "clear"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Access pairs a resource with the state a stage needs it in.
type Access struct {
	Resource Resource
	State    State
}

// Accesses returns the resources a stage touches and the state each must be
// in while the stage runs. The clear stage's target depends on the command
// and is checked separately.
func (s Stage) Accesses() []Access {
	switch s {
	case StageVertex:
		return []Access{
			{ResourceVertices, StateShaderRead},
			{ResourcePositions, StateUnorderedAccess},
			{ResourceAttributes, StateUnorderedAccess},
		}
	case StageVertexIndexed:
		return []Access{
			{ResourceVertices, StateShaderRead},
			{ResourceIndices, StateShaderRead},
			{ResourcePositions, StateUnorderedAccess},
			{ResourceAttributes, StateUnorderedAccess},
		}
	case StageBin:
		return []Access{
			{ResourcePositions, StateShaderRead},
			{ResourceTileCounter, StateUnorderedAccess},
			{ResourceTiledPrimitives, StateUnorderedAccess},
		}
	case StagePixelDepth:
		return []Access{
			{ResourcePositions, StateShaderRead},
			{ResourceTiledPrimitives, StateShaderRead},
			{ResourceDepth, StateUnorderedAccess},
		}
	case StagePixelShade:
		return []Access{
			{ResourcePositions, StateShaderRead},
			{ResourceTiledPrimitives, StateShaderRead},
			{ResourceAttributes, StateShaderRead},
			{ResourceDepth, StateUnorderedAccess},
			{ResourceColor, StateUnorderedAccess},
		}
	default:
		return nil
	}
}
