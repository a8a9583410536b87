package tileraster

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// CreateVertexBuffer uploads count vertex records of stride bytes. Each
// record starts with a float32x3 position followed by the declared
// attribute channels.
func (p *Pipeline) CreateVertexBuffer(data []byte, count, stride int) (*VertexBuffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return nil, err
	}
	switch {
	case count <= 0:
		return nil, fmt.Errorf("%w: vertex count %d", ErrInvalidArgument, count)
	case stride < 12 || stride%4 != 0:
		return nil, fmt.Errorf("%w: vertex stride %d", ErrInvalidArgument, stride)
	case len(data) < count*stride:
		return nil, fmt.Errorf("%w: %d bytes for %d vertices of %d bytes", ErrInvalidArgument, len(data), count, stride)
	}
	size := uint64(count * stride)
	s, err := p.exec.newStorage("vertices", size, data[:size])
	if err != nil {
		return nil, fmt.Errorf("tileraster: create vertex buffer: %w", err)
	}
	p.owned = append(p.owned, s)
	p.log.Debug("tileraster: vertex buffer created", "vertices", count, "stride", stride)
	return &VertexBuffer{store: s, count: count, stride: stride}, nil
}

// CreateIndexBuffer uploads count indices in the given format.
func (p *Pipeline) CreateIndexBuffer(data []byte, count int, format gputypes.IndexFormat) (*IndexBuffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return nil, err
	}
	if format != gputypes.IndexFormatUint16 && format != gputypes.IndexFormatUint32 {
		return nil, fmt.Errorf("%w: index format %s", ErrUnsupportedFormat, format)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: index count %d", ErrInvalidArgument, count)
	}
	size := uint64(count) * uint64(format.Size())
	if uint64(len(data)) < size {
		return nil, fmt.Errorf("%w: %d bytes for %d %s indices", ErrInvalidArgument, len(data), count, format)
	}
	s, err := p.exec.newStorage("indices", size, data[:size])
	if err != nil {
		return nil, fmt.Errorf("tileraster: create index buffer: %w", err)
	}
	p.owned = append(p.owned, s)
	return &IndexBuffer{store: s, count: count, format: format}, nil
}

// SetVertexBuffer binds the vertex stream of subsequent draws.
func (p *Pipeline) SetVertexBuffer(vb *VertexBuffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return err
	}
	p.vertices = vb
	return nil
}

// SetIndexBuffer binds the index stream of subsequent indexed draws.
func (p *Pipeline) SetIndexBuffer(ib *IndexBuffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return err
	}
	p.indices = ib
	return nil
}

// CreateTarget creates a render target of the pipeline's size. Its
// contents start zeroed.
func (p *Pipeline) CreateTarget(kind TargetKind) (*Target, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return nil, err
	}
	if kind != KindColor && kind != KindDepth {
		return nil, fmt.Errorf("%w: target kind %s", ErrUnsupportedFormat, kind)
	}
	s, err := p.exec.newStorage(kind.String()+"_target", uint64(p.width*p.height)*4, nil)
	if err != nil {
		return nil, fmt.Errorf("tileraster: create %s target: %w", kind, err)
	}
	p.owned = append(p.owned, s)
	return &Target{owner: p, kind: kind, width: p.width, height: p.height, store: s}, nil
}

// SetRenderTargets binds the color and depth targets of subsequent draws.
func (p *Pipeline) SetRenderTargets(color, depth *Target) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return err
	}
	if color == nil || depth == nil {
		return fmt.Errorf("%w: both a color and a depth target are required", ErrInvalidArgument)
	}
	if color.owner != p || depth.owner != p {
		return fmt.Errorf("%w: target belongs to another pipeline", ErrInvalidArgument)
	}
	if color.kind != KindColor || depth.kind != KindDepth {
		return fmt.Errorf("%w: targets are %s and %s, want color and depth", ErrInvalidArgument, color.kind, depth.kind)
	}
	if color == depth {
		return fmt.Errorf("%w: color and depth are the same target", ErrInvalidArgument)
	}
	p.color, p.depth = color, depth
	return nil
}

// ReadTarget waits for all submitted draws and returns the target's words
// in row-major order.
func (p *Pipeline) ReadTarget(t *Target) ([]uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return nil, err
	}
	if !p.layoutBuilt {
		return nil, ErrLayoutNotBuilt
	}
	if t == nil || t.owner != p {
		return nil, fmt.Errorf("%w: target does not belong to this pipeline", ErrInvalidArgument)
	}
	words, err := p.exec.read(t.store)
	if err != nil {
		return nil, fmt.Errorf("tileraster: read %s target: %w", t.kind, err)
	}
	return words[:t.width*t.height], nil
}
