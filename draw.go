package tileraster

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileraster/internal/frame"
	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// Clear queues a clear of target, executed by the next draw right before
// its pixel stage. With asUint the bits of value[0] are stored unchanged;
// otherwise value is converted to the target's format: packed RGBA8 for
// color targets and quantized depth from value[0] for depth targets.
//
// Only the targets bound at the time of the draw are cleared; clears of
// other targets are dropped.
func (p *Pipeline) Clear(target *Target, value [4]float32, asUint bool) {
	if target == nil {
		return
	}
	var v uint32
	switch {
	case asUint:
		v = math.Float32bits(value[0])
	case target.kind == KindDepth:
		v = tilebin.QuantizeDepth(min(max(value[0], 0), 1))
	default:
		v = tilebin.PackRGBA8(value[0], value[1], value[2], value[3])
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, pendingClear{target: target, value: v})
}

// ClearFloat queues a clear of a color target to the RGBA color rgba.
func (p *Pipeline) ClearFloat(target *Target, rgba [4]float32) {
	p.Clear(target, rgba, false)
}

// ClearDepth queues a clear of a depth target to depth in [0, 1].
func (p *Pipeline) ClearDepth(target *Target, depth float32) {
	p.Clear(target, [4]float32{depth}, false)
}

// Draw rasterizes count vertices as a triangle list, reading vertex i
// from record i of the bound vertex buffer.
func (p *Pipeline) Draw(count int) error {
	return p.draw(count, false)
}

// DrawIndexed rasterizes count indices as a triangle list, reading vertex
// i from the record named by index i.
func (p *Pipeline) DrawIndexed(count int) error {
	return p.draw(count, true)
}

// checkDraw validates the configuration of a draw. Callers hold p.mu.
func (p *Pipeline) checkDraw(count int, indexed bool) error {
	if err := p.checkReady(); err != nil {
		return err
	}
	switch {
	case !p.layoutBuilt:
		return ErrLayoutNotBuilt
	case p.color == nil || p.depth == nil:
		return ErrNoRenderTargets
	case p.vertices == nil:
		return ErrNoVertexBuffer
	case indexed && p.indices == nil:
		return ErrNoIndexBuffer
	case count < 0:
		return fmt.Errorf("%w: count %d", ErrInvalidArgument, count)
	case count > p.opts.maxVertices:
		return fmt.Errorf("%w: %d vertices, capacity %d", ErrCapacityExceeded, count, p.opts.maxVertices)
	case indexed && count > p.indices.count:
		return fmt.Errorf("%w: %d indices, buffer holds %d", ErrInvalidArgument, count, p.indices.count)
	case !indexed && count > p.vertices.count:
		return fmt.Errorf("%w: %d vertices, buffer holds %d", ErrInvalidArgument, count, p.vertices.count)
	case p.vertices.stride < p.sourceWords*4:
		return fmt.Errorf("%w: vertex stride %d, layout reads %d bytes", ErrInvalidArgument, p.vertices.stride, p.sourceWords*4)
	}
	return nil
}

// binding pairs a bound storage with its resource slot.
type binding struct {
	r frame.Resource
	s *storage
}

func (p *Pipeline) draw(count int, indexed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkDraw(count, indexed); err != nil {
		return err
	}

	// Bound buffers carry their own states between bindings.
	bound := []binding{
		{frame.ResourceVertices, p.vertices.store},
		{frame.ResourceColor, p.color.store},
		{frame.ResourceDepth, p.depth.store},
	}
	if indexed {
		bound = append(bound, binding{frame.ResourceIndices, p.indices.store})
	}
	for _, b := range bound {
		p.tracker.Set(b.r, b.s.state)
	}
	initial := p.tracker.Snapshot()

	fills := p.flushClears()
	triangles := count / 3
	l := frame.RecordDraw(p.tracker, frame.Draw{
		Indexed:      indexed,
		VertexGroups: tilebin.GroupsFor(uint32(count)),
		BinGroups:    tilebin.GroupsFor(uint32(triangles)),
		Fills:        fills,
		Readback:     p.opts.debugReadback,
	})
	if err := l.Err(); err != nil {
		p.tracker = frame.NewTracker(initial)
		return fmt.Errorf("tileraster: record draw: %w", err)
	}

	d := &drawCall{
		commands: l.Commands(),
		initial:  initial,
		vertex:   p.vertexParams(count, indexed),
		viewport: tilebin.NewViewportParams(
			p.viewport.X, p.viewport.Y, p.viewport.Width, p.viewport.Height,
			p.width, uint32(p.opts.maxTileEntries), uint32(triangles)),
		shading:  p.uniforms.shadingParams(p.normalLayout()),
		vertices: p.vertices.store,
		color:    p.color.store,
		depth:    p.depth.store,
	}
	if indexed {
		d.indices = p.indices.store
	}

	if err := p.exec.submit(d); err != nil {
		p.tracker = frame.NewTracker(initial)
		return fmt.Errorf("tileraster: draw: %w", err)
	}
	p.pending = p.pending[:0]
	for _, b := range bound {
		b.s.state = p.tracker.State(b.r)
	}

	p.log.Debug("tileraster: draw submitted",
		"indexed", indexed,
		"vertices", count,
		"triangles", triangles,
		"clears", len(fills),
		"commands", len(d.commands))

	if p.opts.debugReadback {
		return p.updateStats(triangles)
	}
	return nil
}

// flushClears turns the pending clears of bound targets into fills.
// Callers hold p.mu.
func (p *Pipeline) flushClears() []frame.Fill {
	var fills []frame.Fill
	for _, c := range p.pending {
		switch c.target {
		case p.color:
			fills = append(fills, frame.Fill{Target: frame.ResourceColor, Value: c.value})
		case p.depth:
			fills = append(fills, frame.Fill{Target: frame.ResourceDepth, Value: c.value})
		default:
			p.log.Warn("tileraster: clear of unbound target dropped", "kind", c.target.kind.String())
		}
	}
	return fills
}

func (p *Pipeline) vertexParams(count int, indexed bool) tilebin.VertexParams {
	vp := tilebin.VertexParams{
		WorldViewProj: p.uniforms.WorldViewProj(),
		NumVertices:   uint32(count),
		SourceStride:  uint32(p.vertices.stride / 4),
		NumAttributes: uint32(len(p.layouts)),
	}
	copy(vp.Attributes[:], p.layouts)
	if indexed && p.indices.format == gputypes.IndexFormatUint16 {
		vp.IndexFormat = tilebin.IndexFormatUint16
	}
	return vp
}

func (p *Pipeline) normalLayout() tilebin.AttributeLayout {
	if p.normalSlot < 0 {
		return tilebin.AttributeLayout{}
	}
	return p.layouts[p.normalSlot]
}

// updateStats reads the counter mirror of the draw just submitted.
// Callers hold p.mu.
func (p *Pipeline) updateStats(triangles int) error {
	c, err := p.exec.readCounter()
	if err != nil {
		return fmt.Errorf("tileraster: read counter: %w", err)
	}
	p.stats = FrameStats{
		Triangles:    triangles,
		TileEntries:  c[0],
		Dropped:      c[3],
		DispatchArgs: [3]uint32{c[0], c[1], c[2]},
	}
	if c[3] > 0 {
		p.log.Warn("tileraster: tile list overflow",
			"stored", c[0],
			"dropped", c[3],
			"capacity", p.opts.maxTileEntries)
	}
	return nil
}
