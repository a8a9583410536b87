// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/tileraster/internal/frame"
	"github.com/gogpu/tileraster/internal/parallel"
)

// ErrUnboundResource is returned when a command touches a slot that has no
// storage in the Bindings.
var ErrUnboundResource = errors.New("tilebin: resource not bound")

// DispatchOrder selects how an Executor schedules the groups of a dispatch.
type DispatchOrder int

const (
	// OrderSequential runs groups in ascending order on the calling goroutine.
	OrderSequential DispatchOrder = iota

	// OrderReversed runs groups in descending order on the calling goroutine.
	OrderReversed

	// OrderParallel spreads groups over a worker pool, in no fixed order.
	OrderParallel
)

// String returns the order name.
func (o DispatchOrder) String() string {
	switch o {
	case OrderSequential:
		return "sequential"
	case OrderReversed:
		return "reversed"
	case OrderParallel:
		return "parallel"
	default:
		return fmt.Sprintf("DispatchOrder(%d)", int(o))
	}
}

// Bindings is the storage and uniform data one frame executes against.
type Bindings struct {
	Buffers  *Buffers
	Vertices []uint32
	Indices  []uint32
	Color    []uint32
	Depth    []uint32
	Readback []uint32

	Vertex   VertexParams
	Viewport ViewportParams
	Shading  ShadingParams
}

// Executor replays recorded frames on the CPU.
type Executor struct {
	order DispatchOrder
	pool  *parallel.WorkerPool
}

// NewExecutor returns an executor. workers is only used by OrderParallel;
// 0 means GOMAXPROCS.
func NewExecutor(order DispatchOrder, workers int) *Executor {
	e := &Executor{order: order}
	if order == OrderParallel {
		e.pool = parallel.NewWorkerPool(workers)
	}
	return e
}

// Order returns the dispatch order.
func (e *Executor) Order() DispatchOrder { return e.order }

// Close stops the executor's workers.
func (e *Executor) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

func (e *Executor) dispatch(groups uint32, fn func(group uint32)) {
	switch e.order {
	case OrderReversed:
		for g := groups; g > 0; g-- {
			fn(g - 1)
		}
	case OrderParallel:
		e.pool.Dispatch(groups, fn)
	default:
		for g := range groups {
			fn(g)
		}
	}
}

// Execute replays cmds. initial is the resource states before the first
// command; every command is validated against the states its predecessors
// left, and execution stops at the first hazard.
func (e *Executor) Execute(cmds []frame.Command, initial frame.States, bind *Bindings) error {
	tr := frame.NewTracker(initial)
	for i, c := range cmds {
		if err := tr.Apply(c); err != nil {
			return fmt.Errorf("tilebin: command %d (%s): %w", i, c, err)
		}
		if err := e.run(c, bind); err != nil {
			return fmt.Errorf("tilebin: command %d (%s): %w", i, c, err)
		}
	}
	return nil
}

func (e *Executor) run(c frame.Command, bind *Bindings) error {
	switch c.Op {
	case frame.OpBarrier:
		// Dispatches complete before the next command starts, so host
		// memory is already coherent.
		return nil

	case frame.OpCopy:
		src, dst := words(c.Src, bind), words(c.Dst, bind)
		if src == nil || dst == nil {
			return ErrUnboundResource
		}
		for _, r := range c.Regions {
			s, d, n := r.SrcOffset/4, r.DstOffset/4, r.Size/4
			if s+n > uint64(len(src)) || d+n > uint64(len(dst)) {
				return fmt.Errorf("tilebin: copy region %+v out of bounds", r)
			}
			for k := range n {
				atomic.StoreUint32(&dst[d+k], atomic.LoadUint32(&src[s+k]))
			}
		}
		return nil

	case frame.OpDispatch:
		return e.runStage(c.Stage, c.Groups, bind)

	case frame.OpDispatchIndirect:
		args := words(c.Args, bind)
		off := c.ArgsOffset / 4
		if args == nil || off+3 > uint64(len(args)) {
			return ErrUnboundResource
		}
		groups := atomic.LoadUint32(&args[off]) *
			atomic.LoadUint32(&args[off+1]) *
			atomic.LoadUint32(&args[off+2])
		return e.runStage(c.Stage, groups, bind)

	case frame.OpClear:
		target := words(c.Target, bind)
		if target == nil {
			return ErrUnboundResource
		}
		e.ClearTarget(target, c.Value)
		return nil
	}
	return fmt.Errorf("tilebin: unknown op %s", c.Op)
}

func (e *Executor) runStage(stage frame.Stage, groups uint32, bind *Bindings) error {
	b := bind.Buffers
	if b == nil {
		return ErrUnboundResource
	}
	switch stage {
	case frame.StageVertex, frame.StageVertexIndexed:
		indexed := stage == frame.StageVertexIndexed
		if bind.Vertices == nil || (indexed && bind.Indices == nil) {
			return ErrUnboundResource
		}
		e.dispatch(groups, func(g uint32) {
			vertexGroup(g, &bind.Vertex, bind.Vertices, bind.Indices, indexed, b)
		})
	case frame.StageBin:
		e.dispatch(groups, func(g uint32) { binGroup(g, &bind.Viewport, b) })
	case frame.StagePixelDepth:
		if bind.Depth == nil {
			return ErrUnboundResource
		}
		e.dispatch(groups, func(g uint32) { depthGroup(g, &bind.Viewport, b, bind.Depth) })
	case frame.StagePixelShade:
		if bind.Depth == nil || bind.Color == nil {
			return ErrUnboundResource
		}
		e.dispatch(groups, func(g uint32) {
			shadeGroup(g, &bind.Viewport, &bind.Shading, b, bind.Depth, bind.Color)
		})
	default:
		return fmt.Errorf("tilebin: stage %s is not dispatchable", stage)
	}
	return nil
}

func words(r frame.Resource, bind *Bindings) []uint32 {
	switch r {
	case frame.ResourceTileCounter:
		if bind.Buffers != nil {
			return bind.Buffers.Counter
		}
	case frame.ResourceReset:
		if bind.Buffers != nil {
			return bind.Buffers.Reset
		}
	case frame.ResourceVertices:
		return bind.Vertices
	case frame.ResourceIndices:
		return bind.Indices
	case frame.ResourceColor:
		return bind.Color
	case frame.ResourceDepth:
		return bind.Depth
	case frame.ResourceReadback:
		return bind.Readback
	}
	return nil
}

// =============================================================================
// Stage entry points
// =============================================================================

// ProcessVertices runs the vertex stage over count logical vertices, reading
// through the index stream when indexed is set.
func (e *Executor) ProcessVertices(bind *Bindings, count uint32, indexed bool) {
	p := bind.Vertex
	p.NumVertices = count
	e.dispatch(GroupsFor(count), func(g uint32) {
		vertexGroup(g, &p, bind.Vertices, bind.Indices, indexed, bind.Buffers)
	})
}

// ResetCounter performs the per-frame reset copy: words 0 and 3 of the
// counter are overwritten with the reset word.
func (e *Executor) ResetCounter(bind *Bindings) {
	b := bind.Buffers
	atomic.StoreUint32(&b.Counter[0], b.Reset[0])
	atomic.StoreUint32(&b.Counter[3], b.Reset[0])
}

// BinTriangles runs the bin stage over triangleCount triangles. The counter
// must have been reset.
func (e *Executor) BinTriangles(bind *Bindings, triangleCount uint32) {
	vp := bind.Viewport
	vp.NumTriangles = triangleCount
	e.dispatch(GroupsFor(triangleCount), func(g uint32) { binGroup(g, &vp, bind.Buffers) })
}

// RasterizeTiles runs both pixel passes with one group per stored tile
// entry, the group count the indirect dispatch reads from the counter.
func (e *Executor) RasterizeTiles(bind *Bindings) {
	groups := bind.Buffers.Count()
	e.dispatch(groups, func(g uint32) { depthGroup(g, &bind.Viewport, bind.Buffers, bind.Depth) })
	e.dispatch(groups, func(g uint32) {
		shadeGroup(g, &bind.Viewport, &bind.Shading, bind.Buffers, bind.Depth, bind.Color)
	})
}

// ClearTarget fills target with value.
func (e *Executor) ClearTarget(target []uint32, value uint32) {
	p := ClearParams{Value: value, Count: uint32(len(target))}
	e.dispatch(GroupsFor(p.Count), func(g uint32) { clearGroup(g, p, target) })
}

// GroupsFor returns the workgroups a direct dispatch over n elements needs.
func GroupsFor(n uint32) uint32 {
	return (n + WorkgroupSize - 1) / WorkgroupSize
}
