package tileraster

import (
	"errors"

	"github.com/gogpu/tileraster/internal/frame"
)

// Configuration order errors.
var (
	// ErrNotInitialized is returned by operations that need Init first.
	ErrNotInitialized = errors.New("tileraster: pipeline not initialized")

	// ErrLayoutSealed is returned by SetAttribute after
	// CreateVertexShaderLayout.
	ErrLayoutSealed = errors.New("tileraster: vertex layout already built")

	// ErrLayoutNotBuilt is returned by draws and readbacks before
	// CreateVertexShaderLayout.
	ErrLayoutNotBuilt = errors.New("tileraster: vertex layout not built")

	// ErrNoRenderTargets is returned by draws without SetRenderTargets.
	ErrNoRenderTargets = errors.New("tileraster: no render targets bound")

	// ErrNoVertexBuffer is returned by draws without SetVertexBuffer.
	ErrNoVertexBuffer = errors.New("tileraster: no vertex buffer bound")

	// ErrNoIndexBuffer is returned by DrawIndexed without SetIndexBuffer.
	ErrNoIndexBuffer = errors.New("tileraster: no index buffer bound")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("tileraster: pipeline closed")
)

// Resource and input errors.
var (
	// ErrAllocation is returned when a buffer, pipeline or bind group
	// cannot be created.
	ErrAllocation = errors.New("tileraster: allocation failed")

	// ErrNoDevice is returned by the GPU backend when no device is
	// available.
	ErrNoDevice = errors.New("tileraster: no GPU device")

	// ErrCapacityExceeded is returned when a host-known count exceeds a
	// fixed capacity.
	ErrCapacityExceeded = errors.New("tileraster: capacity exceeded")

	// ErrUnsupportedFormat is returned for attribute and index formats the
	// kernels cannot read.
	ErrUnsupportedFormat = errors.New("tileraster: unsupported format")

	// ErrInvalidArgument is returned for malformed caller input.
	ErrInvalidArgument = errors.New("tileraster: invalid argument")

	// ErrHazard is returned by the CPU backend when a recorded command
	// touches a resource that was not transitioned to the state it needs.
	ErrHazard = frame.ErrHazard
)
