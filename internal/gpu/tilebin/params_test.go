// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/tileraster/linear"
)

func TestVertexParamsBytes(t *testing.T) {
	p := VertexParams{
		WorldViewProj: linear.Translate(linear.Vec3{4, 5, 6}),
		NumVertices:   99,
		SourceStride:  6,
		NumAttributes: 1,
		IndexFormat:   IndexFormatUint16,
	}
	p.Attributes[0] = normalLayout
	p.Attributes[7] = AttributeLayout{1, 2, 3, 4}

	b := p.Bytes()
	if len(b) != VertexParamsSize || VertexParamsSize != 208 {
		t.Fatalf("len = %d, size const = %d, want 208", len(b), VertexParamsSize)
	}
	le := binary.LittleEndian
	f := func(off int) float32 { return math.Float32frombits(le.Uint32(b[off:])) }

	// Column 3 holds the translation.
	if f(48) != 4 || f(52) != 5 || f(56) != 6 || f(60) != 1 {
		t.Errorf("translation column = %v %v %v %v", f(48), f(52), f(56), f(60))
	}
	u32 := []struct {
		off  int
		want uint32
	}{
		{64, 99}, {68, 6}, {72, 1}, {76, IndexFormatUint16},
		{80, 3}, {84, 3}, {88, 0}, {92, 4},
		{192, 1}, {196, 2}, {200, 3}, {204, 4},
	}
	for _, tt := range u32 {
		if got := le.Uint32(b[tt.off:]); got != tt.want {
			t.Errorf("word at %d = %d, want %d", tt.off, got, tt.want)
		}
	}
}

func TestViewportParamsBytes(t *testing.T) {
	p := NewViewportParams(8, 16, 100, 30, 640, 500, 12)
	b := p.Bytes()
	if len(b) != ViewportParamsSize {
		t.Fatalf("len = %d, want %d", len(b), ViewportParamsSize)
	}
	le := binary.LittleEndian
	floats := []float32{8, 16, 100, 30}
	for i, want := range floats {
		if got := math.Float32frombits(le.Uint32(b[i*4:])); got != want {
			t.Errorf("float %d = %v, want %v", i, got, want)
		}
	}
	words := []uint32{13, 4, 500, 12, 640, 0, 0, 0}
	for i, want := range words {
		if got := le.Uint32(b[16+i*4:]); got != want {
			t.Errorf("word %d = %d, want %d", i, got, want)
		}
	}
}

func TestShadingParamsBytes(t *testing.T) {
	b := testShading.Bytes()
	if len(b) != ShadingParamsSize {
		t.Fatalf("len = %d, want %d", len(b), ShadingParamsSize)
	}
	le := binary.LittleEndian
	if got := math.Float32frombits(le.Uint32(b[28:])); got != 3 {
		t.Errorf("light intensity = %v, want 3", got)
	}
	if got := math.Float32frombits(le.Uint32(b[72:])); got != 0.5 {
		t.Errorf("base color blue = %v, want 0.5", got)
	}
	if got := le.Uint32(b[84:]); got != 3 {
		t.Errorf("normal components = %d, want 3", got)
	}
}

func TestClearParamsBytes(t *testing.T) {
	b := ClearParams{Value: 0xDEADBEEF, Count: 4096}.Bytes()
	le := binary.LittleEndian
	if len(b) != ClearParamsSize || le.Uint32(b) != 0xDEADBEEF || le.Uint32(b[4:]) != 4096 {
		t.Errorf("ClearParams.Bytes() = %x", b)
	}
}
