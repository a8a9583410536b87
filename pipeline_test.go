package tileraster

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileraster/linear"
)

// fullscreen returns a triangle covering the whole viewport at depth z.
func fullscreen(z float32, n linear.Vec3) Mesh {
	return Mesh{
		Positions: []linear.Vec3{{-1, -1, z}, {3, -1, z}, {-1, 3, z}},
		Normals:   []linear.Vec3{n, n, n},
	}
}

// newTestPipeline returns an initialized CPU pipeline of size w x h with
// bound color and depth targets. With normals, attribute slot 0 is a
// float32x3 normal.
func newTestPipeline(t *testing.T, w, h int, normals bool, opts ...Option) (*Pipeline, *Target, *Target) {
	t.Helper()
	opts = append([]Option{WithDispatchOrder(OrderSequential)}, opts...)
	p := New(opts...)
	t.Cleanup(func() { p.Close() })

	attrs := 0
	if normals {
		attrs = 1
	}
	if err := p.Init(w, h, attrs); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if normals {
		if err := p.SetAttribute(0, 12, gputypes.VertexFormatFloat32x3); err != nil {
			t.Fatalf("SetAttribute() = %v", err)
		}
		if err := p.SetNormalAttribute(0); err != nil {
			t.Fatalf("SetNormalAttribute() = %v", err)
		}
	}
	if err := p.CreateVertexShaderLayout(); err != nil {
		t.Fatalf("CreateVertexShaderLayout() = %v", err)
	}
	color, err := p.CreateTarget(KindColor)
	if err != nil {
		t.Fatalf("CreateTarget(color) = %v", err)
	}
	depth, err := p.CreateTarget(KindDepth)
	if err != nil {
		t.Fatalf("CreateTarget(depth) = %v", err)
	}
	if err := p.SetRenderTargets(color, depth); err != nil {
		t.Fatalf("SetRenderTargets() = %v", err)
	}
	return p, color, depth
}

// bindMesh uploads m as the pipeline's vertex buffer and, when it has
// indices, as its index buffer.
func bindMesh(t *testing.T, p *Pipeline, m Mesh) {
	t.Helper()
	vb, err := p.CreateVertexBuffer(m.VertexBytes(), len(m.Positions), MeshStride)
	if err != nil {
		t.Fatalf("CreateVertexBuffer() = %v", err)
	}
	if err := p.SetVertexBuffer(vb); err != nil {
		t.Fatalf("SetVertexBuffer() = %v", err)
	}
	if len(m.Indices) == 0 {
		return
	}
	ib, err := p.CreateIndexBuffer(m.IndexBytes(), len(m.Indices), gputypes.IndexFormatUint32)
	if err != nil {
		t.Fatalf("CreateIndexBuffer() = %v", err)
	}
	if err := p.SetIndexBuffer(ib); err != nil {
		t.Fatalf("SetIndexBuffer() = %v", err)
	}
}

func TestInitValidation(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		w, h  int
		attrs int
		want  error
	}{
		{"zero width", nil, 0, 8, 0, ErrInvalidArgument},
		{"negative height", nil, 8, -1, 0, ErrInvalidArgument},
		{"too many attributes", nil, 8, 8, 9, ErrCapacityExceeded},
		{"negative attributes", nil, 8, 8, -1, ErrCapacityExceeded},
		{"tiny vertex capacity", []Option{WithMaxVertices(2)}, 8, 8, 0, ErrInvalidArgument},
		{"no tile entries", []Option{WithMaxTileEntries(0)}, 8, 8, 0, ErrInvalidArgument},
		{"tile entries over dispatch limit", []Option{WithMaxTileEntries(MaxTileEntries + 1)}, 8, 8, 0, ErrCapacityExceeded},
		{"tile entries past uint32", []Option{WithMaxTileEntries(math.MaxInt)}, 8, 8, 0, ErrCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.opts...)
			defer p.Close()
			if err := p.Init(tt.w, tt.h, tt.attrs); !errors.Is(err, tt.want) {
				t.Errorf("Init() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInitTwice(t *testing.T) {
	p := New()
	defer p.Close()
	if err := p.Init(8, 8, 0); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if err := p.Init(8, 8, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("second Init() = %v, want ErrInvalidArgument", err)
	}
}

func TestConfigurationOrder(t *testing.T) {
	p := New()
	if err := p.SetAttribute(0, 12, gputypes.VertexFormatFloat32x3); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SetAttribute before Init = %v, want ErrNotInitialized", err)
	}
	if err := p.CreateVertexShaderLayout(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateVertexShaderLayout before Init = %v, want ErrNotInitialized", err)
	}
	if err := p.Init(16, 16, 2); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	color, _ := p.CreateTarget(KindColor)
	if _, err := p.ReadTarget(color); !errors.Is(err, ErrLayoutNotBuilt) {
		t.Errorf("ReadTarget before layout = %v, want ErrLayoutNotBuilt", err)
	}
	if err := p.CreateVertexShaderLayout(); err != nil {
		t.Fatalf("CreateVertexShaderLayout() = %v", err)
	}
	if err := p.SetAttribute(0, 12, gputypes.VertexFormatFloat32x3); !errors.Is(err, ErrLayoutSealed) {
		t.Errorf("SetAttribute after layout = %v, want ErrLayoutSealed", err)
	}
	if err := p.CreateVertexShaderLayout(); !errors.Is(err, ErrLayoutSealed) {
		t.Errorf("second CreateVertexShaderLayout = %v, want ErrLayoutSealed", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := p.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
	if err := p.Draw(3); !errors.Is(err, ErrClosed) {
		t.Errorf("Draw after Close = %v, want ErrClosed", err)
	}
}

func TestSetAttributeValidation(t *testing.T) {
	tests := []struct {
		name   string
		slot   int
		stride int
		format gputypes.VertexFormat
		want   error
	}{
		{"slot out of range", 2, 12, gputypes.VertexFormatFloat32x3, ErrCapacityExceeded},
		{"negative slot", -1, 12, gputypes.VertexFormatFloat32x3, ErrCapacityExceeded},
		{"integer format", 0, 4, gputypes.VertexFormatUint32, ErrUnsupportedFormat},
		{"stride below format", 0, 8, gputypes.VertexFormatFloat32x3, ErrInvalidArgument},
		{"unaligned stride", 0, 14, gputypes.VertexFormatFloat32x3, ErrInvalidArgument},
		{"valid", 1, 16, gputypes.VertexFormatFloat32x3, nil},
	}
	p := New()
	defer p.Close()
	if err := p.Init(8, 8, 2); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.SetAttribute(tt.slot, tt.stride, tt.format)
			if !errors.Is(err, tt.want) {
				t.Errorf("SetAttribute() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetNormalAttributeNeedsDeclaredSlot(t *testing.T) {
	p := New()
	defer p.Close()
	if err := p.Init(8, 8, 2); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if err := p.SetNormalAttribute(1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetNormalAttribute(undeclared) = %v, want ErrInvalidArgument", err)
	}
	if err := p.SetNormalAttribute(-1); err != nil {
		t.Errorf("SetNormalAttribute(-1) = %v", err)
	}
}

func TestVertexShaderLayout(t *testing.T) {
	p := New(WithMaxVertices(100))
	defer p.Close()
	if err := p.Init(8, 8, 3); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	// Slot 1 stays undeclared.
	if err := p.SetAttribute(0, 16, gputypes.VertexFormatFloat32x3); err != nil {
		t.Fatal(err)
	}
	if err := p.SetAttribute(2, 8, gputypes.VertexFormatFloat32x2); err != nil {
		t.Fatal(err)
	}
	if err := p.CreateVertexShaderLayout(); err != nil {
		t.Fatalf("CreateVertexShaderLayout() = %v", err)
	}

	if len(p.layouts) != 3 {
		t.Fatalf("layouts = %d, want 3", len(p.layouts))
	}
	want := [3]struct{ src, comps, base, stride uint32 }{
		{3, 3, 0, 4},
		{0, 0, 400, 0},
		{6, 2, 400, 2},
	}
	for i, w := range want {
		l := p.layouts[i]
		if l.SourceOffset != w.src || l.Components != w.comps || l.DestBase != w.base || l.DestStride != w.stride {
			t.Errorf("layout %d = %+v, want %+v", i, l, w)
		}
	}
	if p.sourceWords != 8 {
		t.Errorf("sourceWords = %d, want 8", p.sourceWords)
	}
	if p.attributeWords != 600 {
		t.Errorf("attributeWords = %d, want 600", p.attributeWords)
	}
}

func TestInitAllocatesFixedBuffers(t *testing.T) {
	p := New(WithMaxVertices(100), WithMaxTileEntries(40), WithDebugReadback(true))
	defer p.Close()
	if err := p.Init(8, 8, 1); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	c, ok := p.exec.(*cpuExecutor)
	if !ok {
		t.Fatalf("exec is %T, want *cpuExecutor", p.exec)
	}
	if c.bufs == nil {
		t.Fatal("Init did not allocate the buffer set")
	}
	if got := len(c.bufs.Positions); got != 100 {
		t.Errorf("len(Positions) = %d, want 100", got)
	}
	if got := len(c.bufs.Entries); got != 40 {
		t.Errorf("len(Entries) = %d, want 40", got)
	}
	if got := c.bufs.Counter; len(got) != 4 || got[1] != 1 || got[2] != 1 {
		t.Errorf("Counter = %v, want {0, 1, 1, 0}", got)
	}
	if len(c.readback) != 4 {
		t.Errorf("len(readback) = %d, want 4", len(c.readback))
	}
	if len(c.bufs.Attributes) != 0 {
		t.Errorf("len(Attributes) = %d before the layout, want 0", len(c.bufs.Attributes))
	}

	if err := p.SetAttribute(0, 12, gputypes.VertexFormatFloat32x3); err != nil {
		t.Fatalf("SetAttribute() = %v", err)
	}
	if err := p.CreateVertexShaderLayout(); err != nil {
		t.Fatalf("CreateVertexShaderLayout() = %v", err)
	}
	if got := len(c.bufs.Attributes); got != 300 {
		t.Errorf("len(Attributes) = %d, want 300", got)
	}
}

func TestCreateBufferValidation(t *testing.T) {
	p := New()
	defer p.Close()
	if err := p.Init(8, 8, 0); err != nil {
		t.Fatalf("Init() = %v", err)
	}

	data := make([]byte, 36)
	if _, err := p.CreateVertexBuffer(data, 0, 12); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero count = %v, want ErrInvalidArgument", err)
	}
	if _, err := p.CreateVertexBuffer(data, 3, 10); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short stride = %v, want ErrInvalidArgument", err)
	}
	if _, err := p.CreateVertexBuffer(data, 4, 12); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short data = %v, want ErrInvalidArgument", err)
	}
	vb, err := p.CreateVertexBuffer(data, 3, 12)
	if err != nil {
		t.Fatalf("CreateVertexBuffer() = %v", err)
	}
	if vb.Count() != 3 || vb.Stride() != 12 {
		t.Errorf("vertex buffer = %d x %d, want 3 x 12", vb.Count(), vb.Stride())
	}

	if _, err := p.CreateIndexBuffer(data, 3, gputypes.IndexFormatUndefined); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("undefined index format = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := p.CreateIndexBuffer(data[:4], 3, gputypes.IndexFormatUint16); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short index data = %v, want ErrInvalidArgument", err)
	}
	ib, err := p.CreateIndexBuffer(data[:6], 3, gputypes.IndexFormatUint16)
	if err != nil {
		t.Fatalf("CreateIndexBuffer() = %v", err)
	}
	if ib.Count() != 3 || ib.Format() != gputypes.IndexFormatUint16 {
		t.Errorf("index buffer = %d %s, want 3 uint16", ib.Count(), ib.Format())
	}
}

func TestSetRenderTargetsValidation(t *testing.T) {
	p := New()
	defer p.Close()
	if err := p.Init(8, 8, 0); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	other := New()
	defer other.Close()
	if err := other.Init(8, 8, 0); err != nil {
		t.Fatalf("Init() = %v", err)
	}

	color, _ := p.CreateTarget(KindColor)
	depth, _ := p.CreateTarget(KindDepth)
	foreign, _ := other.CreateTarget(KindDepth)

	tests := []struct {
		name         string
		color, depth *Target
	}{
		{"nil depth", color, nil},
		{"swapped", depth, color},
		{"same target", color, color},
		{"foreign target", color, foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.SetRenderTargets(tt.color, tt.depth); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("SetRenderTargets() = %v, want ErrInvalidArgument", err)
			}
		})
	}
	if err := p.SetRenderTargets(color, depth); err != nil {
		t.Errorf("SetRenderTargets() = %v", err)
	}
}

func TestSetViewportValidation(t *testing.T) {
	p := New()
	defer p.Close()
	if err := p.Init(16, 8, 0); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if got := p.Viewport(); got != (Viewport{Width: 16, Height: 8}) {
		t.Errorf("default viewport = %s, want 16x8+0+0", got)
	}
	bad := []Viewport{
		{Width: 0, Height: 8},
		{X: -1, Width: 4, Height: 4},
		{X: 8, Width: 9, Height: 8},
		{Y: 4, Width: 16, Height: 5},
	}
	for _, v := range bad {
		if err := p.SetViewport(v); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetViewport(%s) = %v, want ErrInvalidArgument", v, err)
		}
	}
	v := Viewport{X: 8, Y: 0, Width: 8, Height: 8}
	if err := p.SetViewport(v); err != nil {
		t.Fatalf("SetViewport(%s) = %v", v, err)
	}
	if got := p.Viewport(); got != v {
		t.Errorf("Viewport() = %s, want %s", got, v)
	}
}

func TestPipelineIDsAreUnique(t *testing.T) {
	a, b := New(), New()
	if a.ID() == b.ID() {
		t.Errorf("two pipelines share id %s", a.ID())
	}
	if got := a.label(); got != "tileraster_"+a.ID()[:8] {
		t.Errorf("label() = %q", got)
	}
}
