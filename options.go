package tileraster

import (
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// Backend selects where a Pipeline executes its recorded frames.
type Backend int

const (
	// BackendCPU replays frames with the Go mirror of every kernel.
	BackendCPU Backend = iota

	// BackendGPU encodes frames into HAL compute command buffers.
	BackendGPU
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendCPU:
		return "cpu"
	case BackendGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// DispatchOrder selects how the CPU backend schedules workgroups.
type DispatchOrder = tilebin.DispatchOrder

// Dispatch orders of the CPU backend.
const (
	OrderSequential = tilebin.OrderSequential
	OrderReversed   = tilebin.OrderReversed
	OrderParallel   = tilebin.OrderParallel
)

// Capacity limits.
const (
	// DefaultMaxVertices is the default capacity of the position and
	// attribute buffers, in vertices.
	DefaultMaxVertices = 1 << 16

	// MaxTileEntries bounds the capacity of the tiled primitive list. The
	// entry count is the X dimension of the pixel stage's indirect
	// dispatch, so it stays within the per-dimension workgroup limit.
	MaxTileEntries = 65535

	// DefaultMaxTileEntries is the default capacity of the tiled primitive
	// list.
	DefaultMaxTileEntries = MaxTileEntries

	// MaxVertexCount bounds WithMaxVertices.
	MaxVertexCount = (1<<32-1)>>8 + 1

	// MaxPixelCount bounds the pixel count of a pipeline.
	MaxPixelCount = (1<<32-1)>>4 + 1
)

// Option configures a Pipeline during creation.
//
// Example:
//
//	p := tileraster.New(
//	    tileraster.WithBackend(tileraster.BackendGPU),
//	    tileraster.WithDebugReadback(true),
//	)
type Option func(*options)

// options holds optional configuration for Pipeline creation.
type options struct {
	backend        Backend
	workers        int
	order          DispatchOrder
	maxVertices    int
	maxTileEntries int
	debugReadback  bool
	logger         *slog.Logger
	label          string
	provider       gpucontext.DeviceProvider
}

func defaultOptions() options {
	return options{
		backend:        BackendCPU,
		order:          OrderParallel,
		maxVertices:    DefaultMaxVertices,
		maxTileEntries: DefaultMaxTileEntries,
		label:          "tileraster",
	}
}

// WithBackend selects the execution backend. The default is BackendCPU.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithWorkers sets the worker count of the CPU backend's parallel
// dispatch. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithDispatchOrder sets the CPU backend's workgroup order. The default is
// OrderParallel; the other orders make runs reproducible.
func WithDispatchOrder(order DispatchOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithMaxVertices sets the vertex capacity. Values outside
// [3, MaxVertexCount] make Init fail with ErrInvalidArgument.
func WithMaxVertices(n int) Option {
	return func(o *options) {
		o.maxVertices = n
	}
}

// WithMaxTileEntries sets the capacity of the tiled primitive list. Init
// fails with ErrInvalidArgument for values below 1 and with
// ErrCapacityExceeded for values above MaxTileEntries.
func WithMaxTileEntries(n int) Option {
	return func(o *options) {
		o.maxTileEntries = n
	}
}

// WithDebugReadback mirrors the tile counter into a host-visible buffer
// after every draw and exposes it through LastFrameStats.
func WithDebugReadback(enabled bool) Option {
	return func(o *options) {
		o.debugReadback = enabled
	}
}

// WithLogger sets the logger of one pipeline. Without it the package
// logger from SetLogger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLabel sets the prefix of GPU object labels.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
