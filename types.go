package tileraster

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tileraster/internal/frame"
)

// Viewport is the rectangle of the render targets the draw maps NDC onto,
// in pixels.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// String returns "WxH+X+Y".
func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", v.Width, v.Height, v.X, v.Y)
}

// TargetKind is the pixel format of a render target.
type TargetKind uint8

const (
	// KindColor holds one packed RGBA8 word per pixel, R in the low byte.
	KindColor TargetKind = iota

	// KindDepth holds one word per pixel with 24-bit fixed-point depth.
	KindDepth
)

// String returns the kind name.
func (k TargetKind) String() string {
	switch k {
	case KindColor:
		return "color"
	case KindDepth:
		return "depth"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// storage is backend memory: host words on the CPU backend, a HAL buffer
// on the GPU backend.
type storage struct {
	label string
	size  uint64 // bytes
	words []uint32
	buf   hal.Buffer

	// state is the resource state the storage was left in by the last
	// draw that bound it.
	state frame.State
}

// Target is a render target created by Pipeline.CreateTarget. It covers
// the full pipeline size.
type Target struct {
	owner  *Pipeline
	kind   TargetKind
	width  int
	height int
	store  *storage
}

// Kind returns the pixel format.
func (t *Target) Kind() TargetKind { return t.kind }

// Width returns the width in pixels.
func (t *Target) Width() int { return t.width }

// Height returns the height in pixels.
func (t *Target) Height() int { return t.height }

// VertexBuffer is a source vertex stream. Each record starts with a
// float32x3 position followed by the declared attribute channels in slot
// order.
type VertexBuffer struct {
	store  *storage
	count  int
	stride int
}

// Count returns the number of vertex records.
func (b *VertexBuffer) Count() int { return b.count }

// Stride returns the record size in bytes.
func (b *VertexBuffer) Stride() int { return b.stride }

// IndexBuffer is an index stream of 16- or 32-bit indices.
type IndexBuffer struct {
	store  *storage
	count  int
	format gputypes.IndexFormat
}

// Count returns the number of indices.
func (b *IndexBuffer) Count() int { return b.count }

// Format returns the index format.
func (b *IndexBuffer) Format() gputypes.IndexFormat { return b.format }

// FrameStats is the host mirror of the tile counter after the last draw.
// It is only filled with WithDebugReadback.
type FrameStats struct {
	// Triangles is the number of triangles submitted to the bin stage.
	Triangles int

	// TileEntries is the number of (tile, triangle) pairs stored, which is
	// also the pixel stage's workgroup count.
	TileEntries uint32

	// Dropped is the number of pairs the bin stage could not store.
	Dropped uint32

	// DispatchArgs is the indirect dispatch record read by the pixel
	// stage.
	DispatchArgs [3]uint32
}
