// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// dispatcher.go owns the compute pipelines of the rasterizer: shader
// modules, bind group layouts and pipelines for every frame.Stage, plus the
// fixed-capacity buffer set they run against.

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tileraster/internal/frame"
	"github.com/gogpu/tileraster/internal/gpu/tilebin"
)

// Sentinel errors of the GPU backend.
var (
	ErrNotInitialized = errors.New("tileraster gpu: dispatcher not initialized")
	ErrAllocation     = errors.New("tileraster gpu: allocation failed")
	ErrUnbound        = errors.New("tileraster gpu: resource not bound")
	ErrNoReadback     = errors.New("tileraster gpu: debug readback disabled")
)

// Config sizes the buffers of a dispatcher. AttributeWords may be set later
// with SetAttributeWords, before Init.
type Config struct {
	// Label prefixes every GPU object label.
	Label string

	MaxVertices    uint32
	AttributeWords uint32
	MaxTileEntries uint32

	// DebugReadback allocates the host-visible counter mirror.
	DebugReadback bool
}

// RasterDispatcher runs recorded frames on a HAL device.
//
// Pipelines (one per stage):
//  1. vertex, vertex_indexed -- source stream -> positions + attributes
//  2. bin                    -- positions -> counter + tiled primitives
//  3. pixel_depth            -- indirect, tiled primitives -> depth target
//  4. pixel_shade            -- indirect, tiled primitives -> color target
//  5. clear                  -- fills a render target
//
// Every draw is one command buffer. Per-draw uniforms and bind groups live
// until the queue reports the submission complete.
type RasterDispatcher struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	cfg    Config

	pipelines       [frame.StageCount]hal.ComputePipeline
	pipelineLayouts [frame.StageCount]hal.PipelineLayout
	bgLayouts       [frame.StageCount]hal.BindGroupLayout
	shaderModules   [frame.StageCount]hal.ShaderModule
	shaderSources   [frame.StageCount]string

	bufs *bufferSet

	// inflight holds submissions not yet known to be complete, in
	// submission order.
	inflight []*submission

	initialized bool
}

// NewRasterDispatcher creates a dispatcher on the given device and queue.
// Init must be called before Submit.
func NewRasterDispatcher(device hal.Device, queue hal.Queue, cfg Config) *RasterDispatcher {
	d := &RasterDispatcher{
		device: device,
		queue:  queue,
		cfg:    cfg,
	}
	for s := frame.Stage(0); s < frame.StageCount; s++ {
		d.shaderSources[s] = ShaderSource(s)
	}
	return d
}

func (d *RasterDispatcher) label(name string) string {
	if d.cfg.Label == "" {
		return "tileraster_" + name
	}
	return d.cfg.Label + "_" + name
}

// stageBindGroupLayoutEntries returns the bind group layout entries for a
// stage. They match the @group(0) @binding(N) declarations of its shader.
func stageBindGroupLayoutEntries(stage frame.Stage) []gputypes.BindGroupLayoutEntry {
	uniform := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	switch stage {
	case frame.StageVertex:
		// @binding(0) uniform params
		// @binding(1) storage(read) vertices
		// @binding(2) storage(read_write) positions
		// @binding(3) storage(read_write) attributes
		return []gputypes.BindGroupLayoutEntry{
			uniform(0), storageRO(1), storageRW(2), storageRW(3),
		}
	case frame.StageVertexIndexed:
		// @binding(0) uniform params
		// @binding(1) storage(read) vertices
		// @binding(2) storage(read) indices
		// @binding(3) storage(read_write) positions
		// @binding(4) storage(read_write) attributes
		return []gputypes.BindGroupLayoutEntry{
			uniform(0), storageRO(1), storageRO(2), storageRW(3), storageRW(4),
		}
	case frame.StageBin:
		// @binding(0) uniform view
		// @binding(1) storage(read) positions
		// @binding(2) storage(read_write) counter
		// @binding(3) storage(read_write) entries
		return []gputypes.BindGroupLayoutEntry{
			uniform(0), storageRO(1), storageRW(2), storageRW(3),
		}
	case frame.StagePixelDepth:
		// @binding(0) uniform view
		// @binding(1) storage(read) positions
		// @binding(2) storage(read) entries
		// @binding(3) storage(read_write) depth
		return []gputypes.BindGroupLayoutEntry{
			uniform(0), storageRO(1), storageRO(2), storageRW(3),
		}
	case frame.StagePixelShade:
		// @binding(0) uniform view
		// @binding(1) uniform shading
		// @binding(2) storage(read) positions
		// @binding(3) storage(read) entries
		// @binding(4) storage(read) attributes
		// @binding(5) storage(read_write) depth  -- atomicLoad needs read_write
		// @binding(6) storage(read_write) color
		return []gputypes.BindGroupLayoutEntry{
			uniform(0), uniform(1),
			storageRO(2), storageRO(3), storageRO(4),
			storageRW(5), storageRW(6),
		}
	case frame.StageClear:
		// @binding(0) uniform params
		// @binding(1) storage(read_write) dst
		return []gputypes.BindGroupLayoutEntry{uniform(0), storageRW(1)}
	default:
		return nil
	}
}

// Allocate creates the fixed-capacity buffers: positions, the counter
// record, the tiled primitive list, the reset word and the optional
// readback mirror. It is a no-op when they already exist.
func (d *RasterDispatcher) Allocate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocateLocked()
}

func (d *RasterDispatcher) allocateLocked() error {
	if d.bufs != nil {
		return nil
	}
	bufs, err := d.allocateBuffers()
	if err != nil {
		return err
	}
	d.bufs = bufs
	return nil
}

// SetAttributeWords sets the size of the attribute buffer Init creates, in
// 32-bit words.
func (d *RasterDispatcher) SetAttributeWords(words uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return errors.New("tileraster gpu: attribute buffer already created")
	}
	d.cfg.AttributeWords = words
	return nil
}

// Init creates every compute pipeline and the attribute buffer, allocating
// the fixed buffers first if Allocate has not run. It is a no-op when
// already initialized.
func (d *RasterDispatcher) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}
	if err := d.allocateLocked(); err != nil {
		return err
	}

	for i := frame.Stage(0); i < frame.StageCount; i++ {
		src := d.shaderSources[i]
		if src == "" {
			return fmt.Errorf("tileraster gpu: missing shader source for stage %s", i)
		}
		stageName := d.label(i.String())

		module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  stageName,
			Source: hal.ShaderSource{WGSL: src},
		})
		if err != nil {
			d.destroyPartialInit(i)
			return fmt.Errorf("%w: shader module for %s: %v", ErrAllocation, i, err)
		}
		d.shaderModules[i] = module

		entries := stageBindGroupLayoutEntries(i)
		bgLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   stageName + "_bgl",
			Entries: entries,
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("%w: bind group layout for %s: %v", ErrAllocation, i, err)
		}
		d.bgLayouts[i] = bgLayout

		pipelineLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            stageName + "_pl",
			BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("%w: pipeline layout for %s: %v", ErrAllocation, i, err)
		}
		d.pipelineLayouts[i] = pipelineLayout

		pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  stageName,
			Layout: pipelineLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: "main",
			},
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("%w: compute pipeline for %s: %v", ErrAllocation, i, err)
		}
		d.pipelines[i] = pipeline

		slogger().Debug("tileraster gpu: pipeline created",
			"stage", i.String(),
			"bindings", len(entries),
			"shader_bytes", len(src))
	}

	attrSize := uint64(d.cfg.AttributeWords) * 4
	attrs, err := d.createBuffer(d.label("attributes"), attrSize, usageStorage)
	if err != nil {
		d.destroyPartialInit(frame.StageCount)
		return fmt.Errorf("%w: attributes buffer (%d bytes): %v", ErrAllocation, attrSize, err)
	}
	d.bufs.Attributes = attrs

	slogger().Info("tileraster gpu: pipelines initialized",
		"stages", int(frame.StageCount),
		"max_vertices", d.cfg.MaxVertices,
		"max_tile_entries", d.cfg.MaxTileEntries)
	d.initialized = true
	return nil
}

// destroyPartialInit releases the pipeline objects of stages [0, upTo).
func (d *RasterDispatcher) destroyPartialInit(upTo frame.Stage) {
	for j := frame.Stage(0); j < upTo; j++ {
		if d.pipelines[j] != nil {
			d.device.DestroyComputePipeline(d.pipelines[j])
			d.pipelines[j] = nil
		}
		if d.pipelineLayouts[j] != nil {
			d.device.DestroyPipelineLayout(d.pipelineLayouts[j])
			d.pipelineLayouts[j] = nil
		}
		if d.bgLayouts[j] != nil {
			d.device.DestroyBindGroupLayout(d.bgLayouts[j])
			d.bgLayouts[j] = nil
		}
		if d.shaderModules[j] != nil {
			d.device.DestroyShaderModule(d.shaderModules[j])
			d.shaderModules[j] = nil
		}
	}
}

// Close waits for the device to go idle and releases every GPU object the
// dispatcher created.
func (d *RasterDispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized && d.bufs == nil {
		return
	}
	if err := d.device.WaitIdle(); err != nil {
		slogger().Warn("tileraster gpu: wait idle on close", "error", err)
	}
	d.retire(^uint64(0))
	d.destroyBuffers(d.bufs)
	d.bufs = nil
	d.destroyPartialInit(frame.StageCount)
	d.initialized = false
}

// Initialized reports whether Init has succeeded.
func (d *RasterDispatcher) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// ComputeWorkgroupCount returns the workgroups a direct dispatch of stage
// needs for elementCount elements. Pixel stages are dispatched indirectly
// with one workgroup per tile entry.
func ComputeWorkgroupCount(stage frame.Stage, elementCount uint32) uint32 {
	switch stage {
	case frame.StagePixelDepth, frame.StagePixelShade:
		return elementCount
	default:
		return (elementCount + tilebin.WorkgroupSize - 1) / tilebin.WorkgroupSize
	}
}
