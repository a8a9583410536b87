package tileraster

import (
	"github.com/gogpu/tileraster/internal/frame"
	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// capacityConfig sizes the fixed-capacity buffers of a backend.
type capacityConfig struct {
	label          string
	maxVertices    uint32
	maxTileEntries uint32
	debugReadback  bool
}

// drawCall is one recorded draw with everything a backend needs to run it.
type drawCall struct {
	commands []frame.Command
	initial  frame.States

	vertex   tilebin.VertexParams
	viewport tilebin.ViewportParams
	shading  tilebin.ShadingParams

	vertices *storage
	indices  *storage // nil for non-indexed draws
	color    *storage
	depth    *storage
}

// executor runs recorded draws. cpuExecutor and gpuExecutor implement it.
type executor interface {
	// allocate creates the fixed-capacity buffers: positions, counter,
	// tiled primitive list, reset word and the optional readback mirror.
	allocate(cfg capacityConfig) error

	// setup creates the attribute buffer of attributeWords words and
	// builds the stage pipelines.
	setup(attributeWords uint32) error

	// newStorage creates a buffer of size bytes and uploads data at
	// offset 0.
	newStorage(label string, size uint64, data []byte) (*storage, error)
	freeStorage(s *storage)

	submit(d *drawCall) error

	// read returns the contents of s as words.
	read(s *storage) ([]uint32, error)

	// readCounter returns the debug mirror of the counter record.
	readCounter() ([tilebin.CounterWords]uint32, error)

	close()
}
