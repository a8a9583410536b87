package tileraster

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"

	"github.com/gogpu/tileraster/internal/frame"
	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// attribute is one declared attribute channel.
type attribute struct {
	declared bool
	stride   int // bytes, in the packed attribute buffer
	format   gputypes.VertexFormat
}

// components returns the number of 32-bit words the format reads from the
// vertex record.
func (a attribute) components() int {
	return int(a.format.Size() / 4)
}

// Pipeline is a tile-binning rasterizer: a vertex stage, a bin stage and
// an indirectly dispatched pixel stage, recorded per draw and executed by
// the selected backend.
//
// Setup order:
//
//	p := tileraster.New()
//	p.Init(width, height, maxAttributes)
//	p.SetAttribute(0, 12, gputypes.VertexFormatFloat32x3)  // optional
//	p.CreateVertexShaderLayout()
//	vb, _ := p.CreateVertexBuffer(data, count, stride)
//	color, _ := p.CreateTarget(tileraster.KindColor)
//	depth, _ := p.CreateTarget(tileraster.KindDepth)
//	p.SetVertexBuffer(vb)
//	p.SetRenderTargets(color, depth)
//	p.ClearFloat(color, [4]float32{0, 0, 0, 1})
//	p.ClearDepth(depth, 1)
//	p.Draw(count)
//
// A Pipeline is safe for concurrent use.
type Pipeline struct {
	mu sync.Mutex

	id   string
	opts options
	log  *slog.Logger

	exec executor

	width, height int
	viewport      Viewport
	maxAttributes int
	attrs         []attribute
	normalSlot    int
	layoutBuilt   bool

	// attribute layouts resolved by CreateVertexShaderLayout
	layouts        []tilebin.AttributeLayout
	sourceWords    int
	attributeWords uint32

	tracker *frame.Tracker
	pending []pendingClear

	vertices *VertexBuffer
	indices  *IndexBuffer
	color    *Target
	depth    *Target

	owned []*storage

	uniforms Uniforms
	stats    FrameStats

	initialized bool
	closed      bool
}

// pendingClear is a clear recorded by Clear and flushed by the next draw.
type pendingClear struct {
	target *Target
	value  uint32
}

// New creates a pipeline. Init must be called before any other method.
func New(opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.NewString()
	base := o.logger
	if base == nil {
		base = Logger()
	}
	return &Pipeline{
		id:         id,
		opts:       o,
		log:        base.With("pipeline", id),
		normalSlot: -1,
		uniforms:   DefaultUniforms(),
		tracker:    frame.NewTracker(frame.States{}),
	}
}

// ID returns the pipeline's unique id. It labels log records and GPU
// objects.
func (p *Pipeline) ID() string { return p.id }

// Backend returns the execution backend.
func (p *Pipeline) Backend() Backend { return p.opts.backend }

// Init sets the render size and attribute capacity, opens the backend and
// allocates the fixed-capacity buffers: positions, tile counter, tiled
// primitive list and reset word. It fails with ErrAllocation when any of
// them cannot be created.
func (p *Pipeline) Init(width, height, maxAttributes int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.initialized {
		return fmt.Errorf("%w: Init called twice", ErrInvalidArgument)
	}
	switch {
	case width <= 0 || height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidArgument, width, height)
	case width*height > MaxPixelCount:
		return fmt.Errorf("%w: %dx%d pixels, limit %d", ErrCapacityExceeded, width, height, MaxPixelCount)
	case maxAttributes < 0 || maxAttributes > tilebin.MaxAttributes:
		return fmt.Errorf("%w: %d attributes, limit %d", ErrCapacityExceeded, maxAttributes, tilebin.MaxAttributes)
	case p.opts.maxVertices < 3 || p.opts.maxVertices > MaxVertexCount:
		return fmt.Errorf("%w: max vertices %d", ErrInvalidArgument, p.opts.maxVertices)
	case p.opts.maxTileEntries <= 0:
		return fmt.Errorf("%w: max tile entries %d", ErrInvalidArgument, p.opts.maxTileEntries)
	case p.opts.maxTileEntries > MaxTileEntries:
		return fmt.Errorf("%w: max tile entries %d, limit %d", ErrCapacityExceeded, p.opts.maxTileEntries, MaxTileEntries)
	}

	exec, err := p.openBackend()
	if err != nil {
		return err
	}
	if err := exec.allocate(capacityConfig{
		label:          p.label(),
		maxVertices:    uint32(p.opts.maxVertices),
		maxTileEntries: uint32(p.opts.maxTileEntries),
		debugReadback:  p.opts.debugReadback,
	}); err != nil {
		exec.close()
		return fmt.Errorf("tileraster: allocate buffers: %w", err)
	}
	p.exec = exec
	p.width, p.height = width, height
	p.viewport = Viewport{Width: width, Height: height}
	p.maxAttributes = maxAttributes
	p.attrs = make([]attribute, maxAttributes)
	p.initialized = true

	p.log.Info("tileraster: pipeline initialized",
		"backend", p.opts.backend.String(),
		"width", width,
		"height", height,
		"max_attributes", maxAttributes,
		"max_vertices", p.opts.maxVertices,
		"max_tile_entries", p.opts.maxTileEntries)
	return nil
}

func (p *Pipeline) openBackend() (executor, error) {
	switch p.opts.backend {
	case BackendCPU:
		return newCPUExecutor(p.opts.order, p.opts.workers), nil
	case BackendGPU:
		return p.openGPU()
	default:
		return nil, fmt.Errorf("%w: backend %d", ErrInvalidArgument, int(p.opts.backend))
	}
}

func (p *Pipeline) label() string {
	return p.opts.label + "_" + p.id[:8]
}

// checkReady reports the first configuration-order error. Callers hold
// p.mu.
func (p *Pipeline) checkReady() error {
	switch {
	case p.closed:
		return ErrClosed
	case !p.initialized:
		return ErrNotInitialized
	}
	return nil
}

// SetAttribute declares attribute channel slot. stride is the element
// stride in the attribute buffer, in bytes; it must be a multiple of 4 and
// at least the format size. Channels read their source words from the
// vertex record in slot order, after the float32x3 position.
func (p *Pipeline) SetAttribute(slot, stride int, format gputypes.VertexFormat) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return err
	}
	if p.layoutBuilt {
		return ErrLayoutSealed
	}
	if slot < 0 || slot >= p.maxAttributes {
		return fmt.Errorf("%w: attribute slot %d, table holds %d", ErrCapacityExceeded, slot, p.maxAttributes)
	}
	switch format {
	case gputypes.VertexFormatFloat32, gputypes.VertexFormatFloat32x2,
		gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4:
	default:
		return fmt.Errorf("%w: attribute format %s", ErrUnsupportedFormat, format)
	}
	if stride%4 != 0 || uint64(stride) < format.Size() {
		return fmt.Errorf("%w: stride %d for %s", ErrInvalidArgument, stride, format)
	}
	p.attrs[slot] = attribute{declared: true, stride: stride, format: format}
	return nil
}

// SetNormalAttribute selects the attribute slot interpolated as the
// surface normal in the shade pass. -1 shades with the face normal.
func (p *Pipeline) SetNormalAttribute(slot int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return err
	}
	if slot < -1 || slot >= p.maxAttributes {
		return fmt.Errorf("%w: normal slot %d", ErrInvalidArgument, slot)
	}
	if slot >= 0 && !p.attrs[slot].declared {
		return fmt.Errorf("%w: normal slot %d not declared", ErrInvalidArgument, slot)
	}
	p.normalSlot = slot
	return nil
}

// CreateVertexShaderLayout seals the attribute table, allocates the
// attribute buffer and builds every stage pipeline.
func (p *Pipeline) CreateVertexShaderLayout() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return err
	}
	if p.layoutBuilt {
		return ErrLayoutSealed
	}

	maxVertices := uint32(p.opts.maxVertices)
	var (
		layouts []tilebin.AttributeLayout
		base    uint32
	)
	source := 3 // position
	for _, a := range p.attrs {
		if !a.declared {
			layouts = append(layouts, tilebin.AttributeLayout{DestBase: base})
			continue
		}
		stride := uint32(a.stride / 4)
		layouts = append(layouts, tilebin.AttributeLayout{
			SourceOffset: uint32(source),
			Components:   uint32(a.components()),
			DestBase:     base,
			DestStride:   stride,
		})
		source += a.components()
		words := uint64(base) + uint64(maxVertices)*uint64(stride)
		if words > 1<<32-1 {
			return fmt.Errorf("%w: attribute buffer of %d words", ErrCapacityExceeded, words)
		}
		base = uint32(words)
	}

	if err := p.exec.setup(base); err != nil {
		return fmt.Errorf("tileraster: create layout: %w", err)
	}

	p.layouts = layouts
	p.sourceWords = source
	p.attributeWords = base
	p.layoutBuilt = true

	p.log.Info("tileraster: vertex layout built",
		"attributes", len(layouts),
		"record_words", source,
		"attribute_words", base,
		"max_vertices", maxVertices)
	return nil
}

// SetViewport sets the rectangle of the render targets draws map onto.
// The default is the full target.
func (p *Pipeline) SetViewport(v Viewport) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkReady(); err != nil {
		return err
	}
	if v.Width <= 0 || v.Height <= 0 || v.X < 0 || v.Y < 0 ||
		v.X+v.Width > p.width || v.Y+v.Height > p.height {
		return fmt.Errorf("%w: viewport %s outside %dx%d", ErrInvalidArgument, v, p.width, p.height)
	}
	p.viewport = v
	return nil
}

// Viewport returns the current viewport.
func (p *Pipeline) Viewport() Viewport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewport
}

// SetUniforms sets the per-frame data used by subsequent draws.
func (p *Pipeline) SetUniforms(u Uniforms) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uniforms = u
}

// LastFrameStats returns the counter mirror of the last draw. It is zero
// unless the pipeline was created WithDebugReadback.
func (p *Pipeline) LastFrameStats() FrameStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close releases every buffer and the backend. Further calls return
// ErrClosed.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.closed = true
	if p.exec == nil {
		return nil
	}
	for _, s := range p.owned {
		p.exec.freeStorage(s)
	}
	p.owned = nil
	p.exec.close()
	p.log.Debug("tileraster: pipeline closed")
	return nil
}
