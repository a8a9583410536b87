// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"sync/atomic"

	"github.com/gogpu/tileraster/linear"
)

// Entry is one slot of the tiled primitive list.
type Entry struct {
	Tile     uint32
	Triangle uint32
}

// Buffers is the fixed-capacity buffer set of one pipeline.
// Capacities never change after NewBuffers.
type Buffers struct {
	// Positions holds one clip-space position per processed vertex.
	Positions []linear.Vec4

	// Attributes holds every attribute channel, packed by AttributeLayout.
	Attributes []float32

	// Counter is the {count, 1, 1, dropped} record. Its first three words
	// are the pixel stage's indirect dispatch arguments.
	Counter []uint32

	// Entries is the tiled primitive list.
	Entries []Entry

	// Reset is the immutable word copied over the counter each frame.
	Reset []uint32
}

// NewBuffers allocates a buffer set.
func NewBuffers(maxVertices, attributeWords, maxEntries int) *Buffers {
	return &Buffers{
		Positions:  make([]linear.Vec4, maxVertices),
		Attributes: make([]float32, attributeWords),
		Counter:    []uint32{0, 1, 1, 0},
		Entries:    make([]Entry, maxEntries),
		Reset:      []uint32{0},
	}
}

// Count returns the live tile counter.
func (b *Buffers) Count() uint32 { return atomic.LoadUint32(&b.Counter[0]) }

// Dropped returns the number of pairs the bin stage could not store.
func (b *Buffers) Dropped() uint32 { return atomic.LoadUint32(&b.Counter[3]) }

// TileEntries returns the stored part of the tiled primitive list.
func (b *Buffers) TileEntries() []Entry {
	return b.Entries[:min(int(b.Count()), len(b.Entries))]
}
