package tileraster

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// cpuExecutor replays draws with the Go mirror of every kernel.
type cpuExecutor struct {
	exec     *tilebin.Executor
	bufs     *tilebin.Buffers
	readback []uint32
	built    bool
}

func newCPUExecutor(order DispatchOrder, workers int) *cpuExecutor {
	return &cpuExecutor{exec: tilebin.NewExecutor(order, workers)}
}

func (c *cpuExecutor) allocate(cfg capacityConfig) error {
	c.bufs = tilebin.NewBuffers(int(cfg.maxVertices), 0, int(cfg.maxTileEntries))
	if cfg.debugReadback {
		c.readback = make([]uint32, tilebin.CounterWords)
	}
	return nil
}

func (c *cpuExecutor) setup(attributeWords uint32) error {
	if c.bufs == nil {
		return ErrNotInitialized
	}
	c.bufs.Attributes = make([]float32, attributeWords)
	c.built = true
	return nil
}

func (c *cpuExecutor) newStorage(label string, size uint64, data []byte) (*storage, error) {
	if uint64(len(data)) > size {
		return nil, fmt.Errorf("%w: %s: %d bytes of data for a %d-byte buffer", ErrInvalidArgument, label, len(data), size)
	}
	words := make([]uint32, (size+3)/4)
	for i := 0; i < len(data); i += 4 {
		var w [4]byte
		copy(w[:], data[i:])
		words[i/4] = binary.LittleEndian.Uint32(w[:])
	}
	return &storage{label: label, size: size, words: words}, nil
}

func (c *cpuExecutor) freeStorage(s *storage) {
	s.words = nil
}

func (c *cpuExecutor) submit(d *drawCall) error {
	if c.bufs == nil || !c.built {
		return ErrLayoutNotBuilt
	}
	bind := &tilebin.Bindings{
		Buffers:  c.bufs,
		Vertices: d.vertices.words,
		Color:    d.color.words,
		Depth:    d.depth.words,
		Readback: c.readback,
		Vertex:   d.vertex,
		Viewport: d.viewport,
		Shading:  d.shading,
	}
	if d.indices != nil {
		bind.Indices = d.indices.words
	}
	return c.exec.Execute(d.commands, d.initial, bind)
}

func (c *cpuExecutor) read(s *storage) ([]uint32, error) {
	return slices.Clone(s.words), nil
}

func (c *cpuExecutor) readCounter() ([tilebin.CounterWords]uint32, error) {
	var out [tilebin.CounterWords]uint32
	copy(out[:], c.readback)
	return out, nil
}

func (c *cpuExecutor) close() {
	c.exec.Close()
	c.bufs = nil
}
