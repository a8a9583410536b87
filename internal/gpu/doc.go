// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu runs the tile-binning rasterizer on a HAL compute device.
//
// The package is the GPU half of the rasterizer. Frames are recorded by the
// root package into a frame.List and handed to RasterDispatcher.Submit,
// which encodes every barrier, copy and dispatch into a single command
// buffer. The WGSL kernels under shaders/ mirror the CPU reference in
// package tilebin line for line:
//
//	vertex / vertex_indexed -> positions + attributes
//	bin                     -> tile counter + tiled primitive list
//	pixel_depth             -> depth target   (indirect, one group per entry)
//	pixel_shade             -> color target   (indirect, one group per entry)
//	clear                   -> any render target
//
// # Indirect dispatch
//
// The tile counter record is {count, 1, 1, dropped}. Its first twelve bytes
// are the dispatch arguments of both pixel passes, so the number of pixel
// workgroups is decided on the GPU and never read back by the CPU.
//
// # Devices
//
// OpenDevice creates a standalone Vulkan device. DeviceFromProvider shares
// the device of a host application that exposes HalDevice and HalQueue.
//
// # Lifetime
//
// Per-draw uniform buffers and bind groups are retired once the queue
// reports the submission complete. Close waits for the device to go idle.
package gpu
