//go:build !nogpu

package tileraster

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/tileraster/internal/gpu"
	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// gpuExecutor encodes draws into HAL command buffers.
type gpuExecutor struct {
	dev  *gpu.Device
	disp *gpu.RasterDispatcher
}

func newGPUExecutor(dev *gpu.Device) *gpuExecutor {
	return &gpuExecutor{dev: dev}
}

// openGPU opens the provider's device, or a standalone Vulkan device when
// no provider is set.
func (p *Pipeline) openGPU() (executor, error) {
	var (
		dev *gpu.Device
		err error
	)
	if p.opts.provider != nil {
		dev, err = gpu.DeviceFromProvider(p.opts.provider)
	} else {
		dev, err = gpu.OpenDevice()
	}
	if err != nil {
		return nil, gpuError(err)
	}
	if p.opts.provider != nil {
		info := p.opts.provider.AdapterInfo()
		p.log.Info("tileraster: using provider device", "adapter", info.Name, "type", info.Type.String())
	}
	return newGPUExecutor(dev), nil
}

// gpuError maps backend sentinels onto the package's.
func gpuError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gpu.ErrAllocation):
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	case errors.Is(err, gpu.ErrNotInitialized):
		return fmt.Errorf("%w: %w", ErrLayoutNotBuilt, err)
	case errors.Is(err, gpu.ErrNoDevice):
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	default:
		return err
	}
}

func (g *gpuExecutor) allocate(cfg capacityConfig) error {
	g.disp = gpu.NewRasterDispatcher(g.dev.Device, g.dev.Queue, gpu.Config{
		Label:          cfg.label,
		MaxVertices:    cfg.maxVertices,
		MaxTileEntries: cfg.maxTileEntries,
		DebugReadback:  cfg.debugReadback,
	})
	return gpuError(g.disp.Allocate())
}

func (g *gpuExecutor) setup(attributeWords uint32) error {
	if err := g.disp.SetAttributeWords(attributeWords); err != nil {
		return gpuError(err)
	}
	return gpuError(g.disp.Init())
}

func (g *gpuExecutor) newStorage(label string, size uint64, data []byte) (*storage, error) {
	if uint64(len(data)) > size {
		return nil, fmt.Errorf("%w: %s: %d bytes of data for a %d-byte buffer", ErrInvalidArgument, label, len(data), size)
	}
	// WriteBuffer needs whole words.
	if r := len(data) % 4; r != 0 {
		data = append(data[:len(data):len(data)], make([]byte, 4-r)...)
	}
	size = (size + 3) &^ 3
	buf, err := g.disp.NewBuffer(label, size, data)
	if err != nil {
		return nil, gpuError(err)
	}
	return &storage{label: label, size: size, buf: buf}, nil
}

func (g *gpuExecutor) freeStorage(s *storage) {
	g.disp.DestroyBuffer(s.buf)
	s.buf = nil
}

func (g *gpuExecutor) submit(d *drawCall) error {
	f := &gpu.Frame{
		Commands:    d.commands,
		Vertex:      d.vertex,
		Viewport:    d.viewport,
		Shading:     d.shading,
		Vertices:    d.vertices.buf,
		Color:       d.color.buf,
		Depth:       d.depth.buf,
		TargetWords: uint32(d.color.size / 4),
	}
	if d.indices != nil {
		f.Indices = d.indices.buf
	}
	_, err := g.disp.Submit(f)
	return gpuError(err)
}

func (g *gpuExecutor) read(s *storage) ([]uint32, error) {
	raw, err := g.disp.ReadBuffer(s.buf, s.size)
	if err != nil {
		return nil, gpuError(err)
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return words, nil
}

func (g *gpuExecutor) readCounter() ([tilebin.CounterWords]uint32, error) {
	c, err := g.disp.ReadCounter()
	return c, gpuError(err)
}

func (g *gpuExecutor) close() {
	if g.disp != nil {
		g.disp.Close()
	}
	g.dev.Close()
}
