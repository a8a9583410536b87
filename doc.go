// Package tileraster is a compute-only triangle rasterizer built from
// three stages: a vertex stage that transforms positions and packs
// attribute channels, a bin stage that sorts triangles into 8x8 pixel
// tiles, and a pixel stage dispatched indirectly with one workgroup per
// (tile, triangle) pair.
//
// # Quick Start
//
//	p := tileraster.New(tileraster.WithBackend(tileraster.BackendCPU))
//	defer p.Close()
//
//	p.Init(256, 256, 1)
//	p.SetAttribute(0, 12, gputypes.VertexFormatFloat32x3)
//	p.SetNormalAttribute(0)
//	p.CreateVertexShaderLayout()
//
//	mesh := tileraster.FallbackMesh()
//	vb, _ := p.CreateVertexBuffer(mesh.VertexBytes(), len(mesh.Positions), tileraster.MeshStride)
//	color, _ := p.CreateTarget(tileraster.KindColor)
//	depth, _ := p.CreateTarget(tileraster.KindDepth)
//
//	p.SetVertexBuffer(vb)
//	p.SetRenderTargets(color, depth)
//	p.ClearFloat(color, [4]float32{0, 0, 0, 1})
//	p.ClearDepth(depth, 1)
//	p.Draw(3)
//
//	img, _ := color.Image()
//
// # Backends
//
// BackendGPU records every draw into a HAL command buffer and runs the
// WGSL kernels on a Vulkan device, or on the device of a host application
// via NewWithProvider. BackendCPU runs the same command list with Go
// implementations of the kernels over host memory, one goroutine pool
// per pipeline; it needs no GPU and is what the tests use.
//
// # Frame Structure
//
// A draw is a fixed sequence: the vertex stage fills the position and
// attribute buffers, the tile counter is reset by a buffer copy, the bin
// stage appends tile entries, pending clears run, and the pixel stage
// resolves depth and then shades. Each step is preceded by the resource
// transitions it needs.
//
// The tile list has a fixed capacity (WithMaxTileEntries). Entries that do
// not fit are dropped and counted; with WithDebugReadback the count is
// reported by LastFrameStats.
//
// # Logging
//
// tileraster logs through log/slog and is silent by default. See
// SetLogger.
package tileraster
