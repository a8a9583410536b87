// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"math"
	"testing"

	"github.com/gogpu/tileraster/linear"
)

// vertex is a source record: screen-space position plus a normal.
type vertex struct {
	x, y, z    float32
	nx, ny, nz float32
}

const vertexWords = 6

// normalLayout places a float32x3 normal after the position, padded to a
// vec4 in the attribute buffer.
var normalLayout = AttributeLayout{SourceOffset: 3, Components: 3, DestBase: 0, DestStride: 4}

var testShading = ShadingParams{
	Ambient:        linear.Vec4{0.6, 0.7, 1.0, 0.4},
	LightColor:     linear.Vec4{1.0, 0.7, 0.5, 3.0},
	LightDirection: linear.Vec4{0, 0, -1, 0},
	Eye:            linear.Vec4{0, 0, -1, 0},
	BaseColor:      linear.Vec4{1, 1, 0.5, 1},
	Normal:         normalLayout,
}

// scene is a test harness binding one viewport, one buffer set and a pair
// of render targets.
type scene struct {
	w, h int
	bind *Bindings
}

func newScene(t *testing.T, w, h, maxVertices, maxEntries int) *scene {
	t.Helper()
	b := NewBuffers(maxVertices, maxVertices*int(normalLayout.DestStride), maxEntries)
	s := &scene{
		w: w,
		h: h,
		bind: &Bindings{
			Buffers: b,
			Color:   make([]uint32, w*h),
			Depth:   make([]uint32, w*h),
			Vertex: VertexParams{
				WorldViewProj: linear.Identity(),
				SourceStride:  vertexWords,
				NumAttributes: 1,
			},
			Viewport: NewViewportParams(0, 0, w, h, w, uint32(maxEntries), 0),
			Shading:  testShading,
		},
	}
	s.bind.Vertex.Attributes[0] = normalLayout
	return s
}

// toClip maps a screen-space point back to clip space with w = 1.
func (s *scene) toClip(x, y, z float32) (float32, float32, float32) {
	return x/float32(s.w)*2 - 1, 1 - y/float32(s.h)*2, z
}

// setVertices encodes screen-space vertices as the source stream.
func (s *scene) setVertices(vs []vertex) {
	src := make([]uint32, 0, len(vs)*vertexWords)
	for _, v := range vs {
		cx, cy, cz := s.toClip(v.x, v.y, v.z)
		for _, f := range []float32{cx, cy, cz, v.nx, v.ny, v.nz} {
			src = append(src, math.Float32bits(f))
		}
	}
	s.bind.Vertices = src
}

// setPositions writes clip positions directly, bypassing the vertex stage.
func (s *scene) setPositions(vs []vertex) {
	for i, v := range vs {
		cx, cy, cz := s.toClip(v.x, v.y, v.z)
		s.bind.Buffers.Positions[i] = linear.Vec4{cx, cy, cz, 1}
	}
}

// run executes vertex, reset, bin and both pixel passes for count vertices.
func (s *scene) run(e *Executor, count uint32) {
	e.ProcessVertices(s.bind, count, s.bind.Indices != nil)
	e.ResetCounter(s.bind)
	e.BinTriangles(s.bind, count/3)
	s.bind.Viewport.NumTriangles = count / 3
	e.RasterizeTiles(s.bind)
}

func (s *scene) clear(e *Executor, color uint32) {
	e.ClearTarget(s.bind.Color, color)
	e.ClearTarget(s.bind.Depth, DepthMax)
}

func (s *scene) pixel(x, y int) (color, depth uint32) {
	i := y*s.w + x
	return s.bind.Color[i], s.bind.Depth[i]
}

var allOrders = []DispatchOrder{OrderSequential, OrderReversed, OrderParallel}

func colorClose(a, b uint32) bool {
	ar, ag, ab, aa := UnpackRGBA8(a)
	br, bg, bb, ba := UnpackRGBA8(b)
	d := func(x, y uint8) bool { return x-y <= 1 || y-x <= 1 }
	return d(ar, br) && d(ag, bg) && d(ab, bb) && aa == ba
}
