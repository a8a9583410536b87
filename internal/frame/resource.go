// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame records the command stream of one rasterizer draw.
//
// A draw is a short, fixed sequence of resource-state transitions, buffer
// copies and compute dispatches. The orchestrator records it once into a
// List; the GPU backend encodes the list into a HAL command buffer and the
// CPU backend replays it over Go slices. Both backends validate the stream
// with the same Tracker, so a missing barrier is caught identically on either
// side.
package frame

import "fmt"

// Resource identifies one buffer slot of the pipeline. Slots are logical:
// rebinding a render target or vertex buffer keeps the same Resource.
type Resource uint8

const (
	// ResourcePositions holds clip-space vertex positions.
	ResourcePositions Resource = iota

	// ResourceAttributes holds all pass-through attribute channels.
	ResourceAttributes

	// ResourceTileCounter is the {count, 1, 1, dropped} record that doubles
	// as the pixel stage's indirect dispatch arguments.
	ResourceTileCounter

	// ResourceTiledPrimitives is the (tile, triangle) list appended by the
	// bin stage.
	ResourceTiledPrimitives

	// ResourceReset is the immutable zero word copied over the counter.
	ResourceReset

	// ResourceVertices is the bound source vertex stream.
	ResourceVertices

	// ResourceIndices is the bound index stream.
	ResourceIndices

	// ResourceColor is the bound color target.
	ResourceColor

	// ResourceDepth is the bound depth target.
	ResourceDepth

	// ResourceReadback receives the debug copy of the counter.
	ResourceReadback

	// ResourceCount is the number of resource slots.
	ResourceCount
)

// String returns the resource slot name.
func (r Resource) String() string {
	switch r {
	case ResourcePositions:
		return "positions"
	case ResourceAttributes:
		return "attributes"
	case ResourceTileCounter:
		return "tile_counter"
	case ResourceTiledPrimitives:
		return "tiled_primitives"
	case ResourceReset:
		return "reset"
	case ResourceVertices:
		return "vertices"
	case ResourceIndices:
		return "indices"
	case ResourceColor:
		return "color"
	case ResourceDepth:
		return "depth"
	case ResourceReadback:
		return "readback"
	default:
		return fmt.Sprintf("Resource(%d)", int(r))
	}
}

// State is the access state a resource is in between commands.
type State uint8

const (
	StateCommon State = iota
	StateCopyDest
	StateCopySource
	StateUnorderedAccess
	StateShaderRead
	StateIndirectArgument
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCommon:
		return "common"
	case StateCopyDest:
		return "copy_dest"
	case StateCopySource:
		return "copy_source"
	case StateUnorderedAccess:
		return "unordered_access"
	case StateShaderRead:
		return "shader_read"
	case StateIndirectArgument:
		return "indirect_argument"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// States is a snapshot of every resource slot's state.
type States [ResourceCount]State
