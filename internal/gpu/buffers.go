// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// Buffer usages. Bound buffers (vertex streams and render targets) are
// storage buffers that can also be filled and read back with copies.
const (
	usageStorage  = gputypes.BufferUsageStorage
	usageCounter  = gputypes.BufferUsageStorage | gputypes.BufferUsageIndirect | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	usageReset    = gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	usageReadback = gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
	usageUniform  = gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	usageBound    = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
)

// bufferSet holds the fixed-capacity buffers owned by a dispatcher.
type bufferSet struct {
	Positions       hal.Buffer
	Attributes      hal.Buffer
	Counter         hal.Buffer
	TiledPrimitives hal.Buffer
	Reset           hal.Buffer
	Readback        hal.Buffer // nil unless Config.DebugReadback
}

func (b *bufferSet) all() []hal.Buffer {
	return []hal.Buffer{b.Positions, b.Attributes, b.Counter, b.TiledPrimitives, b.Reset, b.Readback}
}

// createBuffer creates a single GPU buffer with a minimum size guarantee.
func (d *RasterDispatcher) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	const minBufSize = 4
	if size < minBufSize {
		size = minBufSize
	}
	return d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
}

// allocateBuffers creates the fixed buffer set and uploads the initial
// counter record and the reset word. The attribute buffer is sized by the
// vertex layout and created by Init.
func (d *RasterDispatcher) allocateBuffers() (*bufferSet, error) {
	bufs := &bufferSet{}

	type bufSpec struct {
		dst   *hal.Buffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}
	specs := []bufSpec{
		{&bufs.Positions, "positions", uint64(d.cfg.MaxVertices) * 16, usageStorage},
		{&bufs.Counter, "tile_counter", tilebin.CounterWords * 4, usageCounter},
		{&bufs.TiledPrimitives, "tiled_primitives", uint64(d.cfg.MaxTileEntries) * 8, usageStorage},
		{&bufs.Reset, "reset", 4, usageReset},
	}
	if d.cfg.DebugReadback {
		specs = append(specs, bufSpec{&bufs.Readback, "readback", tilebin.CounterWords * 4, usageReadback})
	}

	var total uint64
	for _, s := range specs {
		buf, err := d.createBuffer(d.label(s.label), s.size, s.usage)
		if err != nil {
			d.destroyBuffers(bufs)
			return nil, fmt.Errorf("%w: %s buffer (%d bytes): %v", ErrAllocation, s.label, s.size, err)
		}
		*s.dst = buf
		total += s.size
	}

	// {count, 1, 1, dropped}: the y and z dispatch dimensions are never
	// touched again.
	if err := d.queue.WriteBuffer(bufs.Counter, 0, wordsToBytes([]uint32{0, 1, 1, 0})); err != nil {
		d.destroyBuffers(bufs)
		return nil, fmt.Errorf("%w: upload counter: %v", ErrAllocation, err)
	}
	if err := d.queue.WriteBuffer(bufs.Reset, 0, wordsToBytes([]uint32{0})); err != nil {
		d.destroyBuffers(bufs)
		return nil, fmt.Errorf("%w: upload reset word: %v", ErrAllocation, err)
	}

	slogger().Debug("tileraster gpu: buffers allocated", "bytes", total)
	return bufs, nil
}

func (d *RasterDispatcher) destroyBuffers(bufs *bufferSet) {
	if bufs == nil {
		return
	}
	for _, b := range bufs.all() {
		if b != nil {
			d.device.DestroyBuffer(b)
		}
	}
}

// NewBuffer creates a caller-owned buffer usable as a vertex stream, index
// stream or render target. When data is non-nil it is uploaded at offset 0.
func (d *RasterDispatcher) NewBuffer(label string, size uint64, data []byte) (hal.Buffer, error) {
	if uint64(len(data)) > size {
		return nil, fmt.Errorf("tileraster gpu: %s: %d bytes of data for a %d-byte buffer", label, len(data), size)
	}
	buf, err := d.createBuffer(d.label(label), size, usageBound)
	if err != nil {
		return nil, fmt.Errorf("%w: %s buffer (%d bytes): %v", ErrAllocation, label, size, err)
	}
	if len(data) > 0 {
		if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
			d.device.DestroyBuffer(buf)
			return nil, fmt.Errorf("tileraster gpu: upload %s: %w", label, err)
		}
	}
	return buf, nil
}

// WriteBuffer uploads data into a caller-owned buffer.
func (d *RasterDispatcher) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	return d.queue.WriteBuffer(buf, offset, data)
}

// DestroyBuffer releases a buffer created by NewBuffer. It waits for the
// device to go idle so no in-flight submission still references it.
func (d *RasterDispatcher) DestroyBuffer(buf hal.Buffer) {
	if buf == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.device.WaitIdle(); err != nil {
		slogger().Warn("tileraster gpu: wait idle before destroy", "error", err)
	}
	d.retire(^uint64(0))
	d.device.DestroyBuffer(buf)
}

// ReadCounter waits for all submitted work and returns the debug mirror of
// the counter record written by the last draw.
func (d *RasterDispatcher) ReadCounter() ([tilebin.CounterWords]uint32, error) {
	var out [tilebin.CounterWords]uint32

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return out, ErrNotInitialized
	}
	if d.bufs.Readback == nil {
		return out, ErrNoReadback
	}
	if err := d.device.WaitIdle(); err != nil {
		return out, fmt.Errorf("tileraster gpu: wait idle: %w", err)
	}
	d.retire(^uint64(0))

	raw, err := d.mapRead(d.bufs.Readback, tilebin.CounterWords*4)
	if err != nil {
		return out, err
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out, nil
}

// ReadBuffer copies size bytes of a caller-owned storage buffer into host
// memory. It blocks until the copy has executed.
func (d *RasterDispatcher) ReadBuffer(buf hal.Buffer, size uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if buf == nil {
		return nil, fmt.Errorf("%w: read of nil buffer", ErrUnbound)
	}

	staging, err := d.createBuffer(d.label("staging"), size, usageReadback)
	if err != nil {
		return nil, fmt.Errorf("%w: staging buffer (%d bytes): %v", ErrAllocation, size, err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label("readback")})
	if err != nil {
		return nil, fmt.Errorf("tileraster gpu: create readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding(d.label("readback")); err != nil {
		return nil, fmt.Errorf("tileraster gpu: begin readback encoding: %w", err)
	}
	encoder.TransitionBuffers([]hal.BufferBarrier{{
		Buffer: buf,
		Usage:  hal.BufferUsageTransition{OldUsage: gputypes.BufferUsageStorage, NewUsage: gputypes.BufferUsageCopySrc},
	}})
	encoder.CopyBufferToBuffer(buf, staging, []hal.BufferCopy{{Size: size}})
	encoder.TransitionBuffers([]hal.BufferBarrier{{
		Buffer: buf,
		Usage:  hal.BufferUsageTransition{OldUsage: gputypes.BufferUsageCopySrc, NewUsage: gputypes.BufferUsageStorage},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("tileraster gpu: end readback encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, fmt.Errorf("tileraster gpu: submit readback: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("tileraster gpu: wait idle: %w", err)
	}
	d.retire(^uint64(0))

	return d.mapRead(staging, size)
}

// mapRead copies size bytes out of a host-visible buffer.
func (d *RasterDispatcher) mapRead(buf hal.Buffer, size uint64) ([]byte, error) {
	mapping, err := d.device.MapBuffer(buf, 0, size)
	if err != nil {
		return nil, fmt.Errorf("tileraster gpu: map buffer: %w", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := d.device.UnmapBuffer(buf); err != nil {
		return nil, fmt.Errorf("tileraster gpu: unmap buffer: %w", err)
	}
	return out, nil
}

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
