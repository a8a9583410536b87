// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tileraster/internal/frame"
	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// Frame is one recorded draw together with the per-draw uniform blocks and
// the caller-owned buffers bound for it.
type Frame struct {
	Commands []frame.Command

	Vertex   tilebin.VertexParams
	Viewport tilebin.ViewportParams
	Shading  tilebin.ShadingParams

	Vertices hal.Buffer
	Indices  hal.Buffer // nil for non-indexed draws
	Color    hal.Buffer
	Depth    hal.Buffer

	// TargetWords is the word count of each bound render target.
	TargetWords uint32
}

// submission tracks the per-draw GPU objects that must outlive encoding
// until the queue reports the draw complete.
type submission struct {
	index      uint64
	cmdBuf     hal.CommandBuffer
	bindGroups []hal.BindGroup
	uniforms   []hal.Buffer
}

func (s *submission) release(device hal.Device) {
	if s.cmdBuf != nil {
		device.FreeCommandBuffer(s.cmdBuf)
	}
	for _, g := range s.bindGroups {
		device.DestroyBindGroup(g)
	}
	for _, b := range s.uniforms {
		device.DestroyBuffer(b)
	}
}

// retire releases every in-flight submission with an index <= completed.
// Callers hold d.mu.
func (d *RasterDispatcher) retire(completed uint64) {
	n := 0
	for _, s := range d.inflight {
		if s.index > completed {
			break
		}
		s.release(d.device)
		n++
	}
	if n == 0 {
		return
	}
	clear(d.inflight[:n])
	d.inflight = d.inflight[n:]
}

// Inflight returns the number of submissions not yet retired.
func (d *RasterDispatcher) Inflight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// usageFor maps a tracked resource state to the HAL buffer usage it
// implies.
func usageFor(s frame.State) gputypes.BufferUsage {
	switch s {
	case frame.StateCopyDest:
		return gputypes.BufferUsageCopyDst
	case frame.StateCopySource:
		return gputypes.BufferUsageCopySrc
	case frame.StateUnorderedAccess, frame.StateShaderRead:
		return gputypes.BufferUsageStorage
	case frame.StateIndirectArgument:
		return gputypes.BufferUsageIndirect
	default:
		return gputypes.BufferUsageNone
	}
}

// frameEncoding is the state of one Submit call.
type frameEncoding struct {
	f         *Frame
	sub       *submission
	resources [frame.ResourceCount]hal.Buffer

	vertexUniform   hal.Buffer
	viewportUniform hal.Buffer
	shadingUniform  hal.Buffer

	groups [frame.StageCount]hal.BindGroup
}

// Submit encodes a recorded frame into one command buffer and submits it.
// It returns the queue's submission index. Completed submissions from
// earlier frames are retired first.
func (d *RasterDispatcher) Submit(f *Frame) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return 0, ErrNotInitialized
	}
	d.retire(d.queue.PollCompleted())

	enc := &frameEncoding{f: f, sub: &submission{}}
	enc.resources = [frame.ResourceCount]hal.Buffer{
		frame.ResourcePositions:       d.bufs.Positions,
		frame.ResourceAttributes:      d.bufs.Attributes,
		frame.ResourceTileCounter:     d.bufs.Counter,
		frame.ResourceTiledPrimitives: d.bufs.TiledPrimitives,
		frame.ResourceReset:           d.bufs.Reset,
		frame.ResourceReadback:        d.bufs.Readback,
		frame.ResourceVertices:        f.Vertices,
		frame.ResourceIndices:         f.Indices,
		frame.ResourceColor:           f.Color,
		frame.ResourceDepth:           f.Depth,
	}

	cmdBuf, err := d.encode(enc)
	if err != nil {
		enc.sub.release(d.device)
		return 0, err
	}
	enc.sub.cmdBuf = cmdBuf

	idx, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		enc.sub.release(d.device)
		return 0, fmt.Errorf("tileraster gpu: submit: %w", err)
	}
	enc.sub.index = idx
	d.inflight = append(d.inflight, enc.sub)

	slogger().Debug("tileraster gpu: frame submitted",
		"index", idx,
		"commands", len(f.Commands),
		"bind_groups", len(enc.sub.bindGroups))
	return idx, nil
}

func (d *RasterDispatcher) encode(enc *frameEncoding) (hal.CommandBuffer, error) {
	if err := d.uploadUniforms(enc); err != nil {
		return nil, err
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label("draw")})
	if err != nil {
		return nil, fmt.Errorf("tileraster gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(d.label("draw")); err != nil {
		return nil, fmt.Errorf("tileraster gpu: begin encoding: %w", err)
	}

	for i, c := range enc.f.Commands {
		if err := d.encodeCommand(encoder, enc, c); err != nil {
			encoder.DiscardEncoding()
			return nil, fmt.Errorf("tileraster gpu: command %d (%s): %w", i, c, err)
		}
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("tileraster gpu: end encoding: %w", err)
	}
	return cmdBuf, nil
}

func (d *RasterDispatcher) encodeCommand(encoder hal.CommandEncoder, enc *frameEncoding, c frame.Command) error {
	switch c.Op {
	case frame.OpBarrier:
		barriers := make([]hal.BufferBarrier, 0, len(c.Transitions))
		for _, t := range c.Transitions {
			buf, err := enc.buffer(t.Resource)
			if err != nil {
				return err
			}
			barriers = append(barriers, hal.BufferBarrier{
				Buffer: buf,
				Usage: hal.BufferUsageTransition{
					OldUsage: usageFor(t.Before),
					NewUsage: usageFor(t.After),
				},
			})
		}
		encoder.TransitionBuffers(barriers)

	case frame.OpCopy:
		src, err := enc.buffer(c.Src)
		if err != nil {
			return err
		}
		dst, err := enc.buffer(c.Dst)
		if err != nil {
			return err
		}
		regions := make([]hal.BufferCopy, len(c.Regions))
		for i, r := range c.Regions {
			regions[i] = hal.BufferCopy{SrcOffset: r.SrcOffset, DstOffset: r.DstOffset, Size: r.Size}
		}
		encoder.CopyBufferToBuffer(src, dst, regions)

	case frame.OpDispatch:
		if c.Groups == 0 {
			return nil
		}
		bg, err := d.bindGroup(enc, c.Stage)
		if err != nil {
			return err
		}
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: d.label(c.Stage.String())})
		pass.SetPipeline(d.pipelines[c.Stage])
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(c.Groups, 1, 1)
		pass.End()

	case frame.OpDispatchIndirect:
		args, err := enc.buffer(c.Args)
		if err != nil {
			return err
		}
		bg, err := d.bindGroup(enc, c.Stage)
		if err != nil {
			return err
		}
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: d.label(c.Stage.String())})
		pass.SetPipeline(d.pipelines[c.Stage])
		pass.SetBindGroup(0, bg, nil)
		pass.DispatchIndirect(args, c.ArgsOffset)
		pass.End()

	case frame.OpClear:
		dst, err := enc.buffer(c.Target)
		if err != nil {
			return err
		}
		words := enc.f.TargetWords
		params := tilebin.ClearParams{Value: c.Value, Count: words}
		uniform, err := d.uniform(enc.sub, "clear_params", params.Bytes())
		if err != nil {
			return err
		}
		bg, err := d.createBindGroup(enc.sub, frame.StageClear, []gputypes.BindGroupEntry{
			bufferEntry(0, uniform),
			bufferEntry(1, dst),
		})
		if err != nil {
			return err
		}
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: d.label("clear")})
		pass.SetPipeline(d.pipelines[frame.StageClear])
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(ComputeWorkgroupCount(frame.StageClear, words), 1, 1)
		pass.End()

	default:
		return fmt.Errorf("unknown op %s", c.Op)
	}
	return nil
}

func (enc *frameEncoding) buffer(r frame.Resource) (hal.Buffer, error) {
	if r >= frame.ResourceCount || enc.resources[r] == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, r)
	}
	return enc.resources[r], nil
}

// uploadUniforms creates and fills the per-draw uniform buffers.
func (d *RasterDispatcher) uploadUniforms(enc *frameEncoding) error {
	var err error
	if enc.vertexUniform, err = d.uniform(enc.sub, "vertex_params", enc.f.Vertex.Bytes()); err != nil {
		return err
	}
	if enc.viewportUniform, err = d.uniform(enc.sub, "viewport_params", enc.f.Viewport.Bytes()); err != nil {
		return err
	}
	if enc.shadingUniform, err = d.uniform(enc.sub, "shading_params", enc.f.Shading.Bytes()); err != nil {
		return err
	}
	return nil
}

func (d *RasterDispatcher) uniform(sub *submission, name string, data []byte) (hal.Buffer, error) {
	buf, err := d.createBuffer(d.label(name), uint64(len(data)), usageUniform)
	if err != nil {
		return nil, fmt.Errorf("%w: %s uniform: %v", ErrAllocation, name, err)
	}
	sub.uniforms = append(sub.uniforms, buf)
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, fmt.Errorf("tileraster gpu: upload %s: %w", name, err)
	}
	return buf, nil
}

// bindGroup returns the bind group of a pipeline stage for this frame,
// creating it on first use.
func (d *RasterDispatcher) bindGroup(enc *frameEncoding, stage frame.Stage) (hal.BindGroup, error) {
	if bg := enc.groups[stage]; bg != nil {
		return bg, nil
	}
	entries, err := stageBindGroupEntries(stage, enc)
	if err != nil {
		return nil, err
	}
	bg, err := d.createBindGroup(enc.sub, stage, entries)
	if err != nil {
		return nil, err
	}
	enc.groups[stage] = bg
	return bg, nil
}

func (d *RasterDispatcher) createBindGroup(sub *submission, stage frame.Stage, entries []gputypes.BindGroupEntry) (hal.BindGroup, error) {
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   d.label(stage.String() + "_bg"),
		Layout:  d.bgLayouts[stage],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: bind group for %s: %v", ErrAllocation, stage, err)
	}
	sub.bindGroups = append(sub.bindGroups, bg)
	return bg, nil
}

// stageBindGroupEntries lists the buffers bound to a stage, in binding
// order. It mirrors stageBindGroupLayoutEntries.
func stageBindGroupEntries(stage frame.Stage, enc *frameEncoding) ([]gputypes.BindGroupEntry, error) {
	var bufs []hal.Buffer
	var resources []frame.Resource
	switch stage {
	case frame.StageVertex:
		bufs = []hal.Buffer{enc.vertexUniform}
		resources = []frame.Resource{frame.ResourceVertices, frame.ResourcePositions, frame.ResourceAttributes}
	case frame.StageVertexIndexed:
		bufs = []hal.Buffer{enc.vertexUniform}
		resources = []frame.Resource{frame.ResourceVertices, frame.ResourceIndices, frame.ResourcePositions, frame.ResourceAttributes}
	case frame.StageBin:
		bufs = []hal.Buffer{enc.viewportUniform}
		resources = []frame.Resource{frame.ResourcePositions, frame.ResourceTileCounter, frame.ResourceTiledPrimitives}
	case frame.StagePixelDepth:
		bufs = []hal.Buffer{enc.viewportUniform}
		resources = []frame.Resource{frame.ResourcePositions, frame.ResourceTiledPrimitives, frame.ResourceDepth}
	case frame.StagePixelShade:
		bufs = []hal.Buffer{enc.viewportUniform, enc.shadingUniform}
		resources = []frame.Resource{
			frame.ResourcePositions, frame.ResourceTiledPrimitives, frame.ResourceAttributes,
			frame.ResourceDepth, frame.ResourceColor,
		}
	default:
		return nil, fmt.Errorf("tileraster gpu: stage %s has no shared bind group", stage)
	}

	for _, r := range resources {
		buf, err := enc.buffer(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage, err)
		}
		bufs = append(bufs, buf)
	}

	entries := make([]gputypes.BindGroupEntry, len(bufs))
	for i, b := range bufs {
		entries[i] = bufferEntry(uint32(i), b)
	}
	return entries, nil
}

func bufferEntry(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{
		Binding: binding,
		Resource: gputypes.BufferBinding{
			Buffer: buf.NativeHandle(),
			Offset: 0,
			Size:   0, // 0 = entire buffer
		},
	}
}
