// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/tileraster/linear"
)

const (
	// TileSize is the edge length of a screen tile in pixels.
	TileSize = 8

	// WorkgroupSize is the invocation count of every kernel's workgroup.
	// Pixel-stage groups map it onto the TileSize x TileSize pixels of a tile.
	WorkgroupSize = 64

	// MaxAttributes is the number of attribute channels a pipeline can carry.
	MaxAttributes = 8

	// DepthMax is the quantized depth of the far plane (z = 1).
	DepthMax = 1<<24 - 1

	// CounterWords is the word count of the tile counter record:
	// {count, 1, 1, dropped}.
	CounterWords = 4

	// CounterArgsSize is the byte size of the indirect arguments at the start
	// of the counter record.
	CounterArgsSize = 12
)

// Index formats understood by the indexed vertex kernel.
const (
	IndexFormatUint32 uint32 = 0
	IndexFormatUint16 uint32 = 1
)

// AttributeLayout places one attribute channel in the source stream and in
// the packed attribute buffer. All values are in 32-bit words.
type AttributeLayout struct {
	SourceOffset uint32
	Components   uint32
	DestBase     uint32
	DestStride   uint32
}

func (a AttributeLayout) put(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[0:4], a.SourceOffset)
	le.PutUint32(b[4:8], a.Components)
	le.PutUint32(b[8:12], a.DestBase)
	le.PutUint32(b[12:16], a.DestStride)
}

// VertexParams is the uniform block of both vertex kernels.
//
// Layout (matches VertexParams in vertex_common.wgsl):
//
//	0   world_view_proj  mat4x4<f32>
//	64  num_vertices, source_stride, num_attributes, index_format
//	80  attributes       array<vec4<u32>, 8>
type VertexParams struct {
	WorldViewProj linear.Mat4
	NumVertices   uint32
	SourceStride  uint32
	NumAttributes uint32
	IndexFormat   uint32
	Attributes    [MaxAttributes]AttributeLayout
}

// VertexParamsSize is the byte size of VertexParams.
const VertexParamsSize = 64 + 16 + MaxAttributes*16

// Bytes serializes the block in little-endian order.
func (p *VertexParams) Bytes() []byte {
	buf := make([]byte, VertexParamsSize)
	putMat4(buf[0:64], p.WorldViewProj)
	le := binary.LittleEndian
	le.PutUint32(buf[64:68], p.NumVertices)
	le.PutUint32(buf[68:72], p.SourceStride)
	le.PutUint32(buf[72:76], p.NumAttributes)
	le.PutUint32(buf[76:80], p.IndexFormat)
	for i, a := range p.Attributes {
		off := 80 + i*16
		a.put(buf[off : off+16])
	}
	return buf
}

// ViewportParams is the uniform block shared by the bin and pixel kernels:
// the viewport rectangle in target pixels, the tile grid derived from it,
// and the row stride of the bound render targets.
type ViewportParams struct {
	X, Y          float32
	Width, Height float32
	NumTilesX     uint32
	NumTilesY     uint32
	MaxEntries    uint32
	NumTriangles  uint32
	TargetWidth   uint32
}

// ViewportParamsSize is the byte size of ViewportParams, padded to 16 bytes.
const ViewportParamsSize = 48

// NewViewportParams derives the tile grid of a viewport. The grid is
// ceil(width/8) x ceil(height/8) and is recomputed for every draw.
func NewViewportParams(x, y, width, height int, targetWidth int, maxEntries, numTriangles uint32) ViewportParams {
	return ViewportParams{
		X:            float32(x),
		Y:            float32(y),
		Width:        float32(width),
		Height:       float32(height),
		NumTilesX:    uint32((width + TileSize - 1) / TileSize),
		NumTilesY:    uint32((height + TileSize - 1) / TileSize),
		MaxEntries:   maxEntries,
		NumTriangles: numTriangles,
		TargetWidth:  uint32(targetWidth),
	}
}

// Bytes serializes the block in little-endian order.
func (p *ViewportParams) Bytes() []byte {
	buf := make([]byte, ViewportParamsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], math.Float32bits(p.X))
	le.PutUint32(buf[4:8], math.Float32bits(p.Y))
	le.PutUint32(buf[8:12], math.Float32bits(p.Width))
	le.PutUint32(buf[12:16], math.Float32bits(p.Height))
	le.PutUint32(buf[16:20], p.NumTilesX)
	le.PutUint32(buf[20:24], p.NumTilesY)
	le.PutUint32(buf[24:28], p.MaxEntries)
	le.PutUint32(buf[28:32], p.NumTriangles)
	le.PutUint32(buf[32:36], p.TargetWidth)
	return buf
}

// ShadingParams is the per-frame lighting and material block of the shade
// pass. Light and ambient colors carry their intensity in w.
type ShadingParams struct {
	Ambient        linear.Vec4
	LightColor     linear.Vec4
	LightDirection linear.Vec4
	Eye            linear.Vec4
	BaseColor      linear.Vec4
	// Normal selects the attribute channel interpolated as the surface
	// normal. Components == 0 shades with the face normal.
	Normal AttributeLayout
}

// ShadingParamsSize is the byte size of ShadingParams.
const ShadingParamsSize = 6 * 16

// Bytes serializes the block in little-endian order.
func (p *ShadingParams) Bytes() []byte {
	buf := make([]byte, ShadingParamsSize)
	for i, v := range []linear.Vec4{p.Ambient, p.LightColor, p.LightDirection, p.Eye, p.BaseColor} {
		putVec4(buf[i*16:i*16+16], v)
	}
	p.Normal.put(buf[80:96])
	return buf
}

// ClearParams is the uniform block of the clear kernel.
type ClearParams struct {
	Value uint32
	Count uint32
}

// ClearParamsSize is the byte size of ClearParams, padded to 16 bytes.
const ClearParamsSize = 16

// Bytes serializes the block in little-endian order.
func (p ClearParams) Bytes() []byte {
	buf := make([]byte, ClearParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], p.Value)
	binary.LittleEndian.PutUint32(buf[4:8], p.Count)
	return buf
}

func putVec4(b []byte, v linear.Vec4) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], math.Float32bits(f))
	}
}

func putMat4(b []byte, m linear.Mat4) {
	for c, col := range m {
		putVec4(b[c*16:c*16+16], col)
	}
}
