// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tilebin is the CPU mirror of the tile-binning compute pipeline.
//
// Every WGSL kernel in internal/gpu/shaders has a Go counterpart here that
// works on the same buffer layouts: the vertex kernels write clip-space
// positions and packed attributes, the bin kernel allocates tile-list slots
// with an atomic counter, and the two pixel passes resolve depth with an
// atomic minimum before shading. An Executor replays a recorded frame.List
// over Go slices, validating every barrier on the way, and schedules
// workgroups sequentially, in reverse, or in parallel. Deterministic orders
// make the pipeline testable without a GPU.
package tilebin
