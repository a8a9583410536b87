// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

// Fill is a render-target clear folded into a draw.
type Fill struct {
	Target Resource
	Value  uint32
}

// Draw describes the variable parts of one draw.
type Draw struct {
	// Indexed selects the indexed vertex stage.
	Indexed bool

	// VertexGroups and BinGroups are the direct dispatch sizes of the
	// vertex and bin stages.
	VertexGroups uint32
	BinGroups    uint32

	// Fills run after binning and before the pixel stage.
	Fills []Fill

	// Readback copies the counter record to ResourceReadback after the
	// pixel stage.
	Readback bool
}

// counterResetRegions zero the count and dropped words of the counter
// record and leave the {1, 1} dispatch dimensions alone.
var counterResetRegions = []CopyRegion{
	{SrcOffset: 0, DstOffset: 0, Size: 4},
	{SrcOffset: 0, DstOffset: 12, Size: 4},
}

// CounterSize is the byte size of the counter record.
const CounterSize = 16

// RecordDraw records one draw in pipeline order:
//
//	vertex -> counter reset -> bin -> fills -> pixel depth -> pixel shade -> readback
//
// Barriers are emitted only for resources whose tracked state differs from
// what the next command needs, so the tracker carries state across draws.
func RecordDraw(t *Tracker, d Draw) *List {
	l := NewList(t)

	vertexStage := StageVertex
	pre := []Access{
		{ResourceTileCounter, StateCopyDest},
		{ResourceReset, StateCopySource},
		{ResourcePositions, StateUnorderedAccess},
		{ResourceAttributes, StateUnorderedAccess},
		{ResourceVertices, StateShaderRead},
	}
	if d.Indexed {
		vertexStage = StageVertexIndexed
		pre = append(pre, Access{ResourceIndices, StateShaderRead})
	}
	l.Barrier(pre...)
	l.Dispatch(vertexStage, d.VertexGroups)
	l.Copy(ResourceReset, ResourceTileCounter, counterResetRegions...)

	l.Barrier(
		Access{ResourcePositions, StateShaderRead},
		Access{ResourceTileCounter, StateUnorderedAccess},
		Access{ResourceTiledPrimitives, StateUnorderedAccess},
	)
	l.Dispatch(StageBin, d.BinGroups)

	l.Barrier(
		Access{ResourceColor, StateUnorderedAccess},
		Access{ResourceDepth, StateUnorderedAccess},
		Access{ResourceTileCounter, StateIndirectArgument},
		Access{ResourceTiledPrimitives, StateShaderRead},
		Access{ResourceAttributes, StateShaderRead},
	)
	for _, f := range d.Fills {
		l.Clear(f.Target, f.Value)
	}
	if len(d.Fills) > 0 {
		l.UAVBarrier(ResourceColor, ResourceDepth)
	}

	l.DispatchIndirect(StagePixelDepth, ResourceTileCounter, 0)
	l.UAVBarrier(ResourceDepth)
	l.DispatchIndirect(StagePixelShade, ResourceTileCounter, 0)

	if d.Readback {
		l.Barrier(
			Access{ResourceTileCounter, StateCopySource},
			Access{ResourceReadback, StateCopyDest},
		)
		l.Copy(ResourceTileCounter, ResourceReadback, CopyRegion{Size: CounterSize})
	}
	return l
}
