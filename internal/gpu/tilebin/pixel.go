// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"sync/atomic"

	"github.com/gogpu/tileraster/linear"
)

// Fragment is one covered pixel of a tile entry.
type Fragment struct {
	// Index is the pixel's offset in the render targets.
	Index uint32
	// Bary holds the barycentric weights of the triangle's vertices.
	Bary linear.Vec3
	// Depth is the quantized depth.
	Depth uint32
}

// rasterEntry walks the pixels of one tile entry (one pixel workgroup) and
// calls fn for every pixel whose center is inside the triangle and whose
// depth is within [0, 1]. Edges are inclusive; both windings are accepted.
func rasterEntry(entry uint32, vp *ViewportParams, b *Buffers, fn func(Fragment)) {
	if entry >= vp.MaxEntries || int(entry) >= len(b.Entries) || vp.NumTilesX == 0 {
		return
	}
	e := b.Entries[entry]
	tri, ok := SetupTriangle(b.Positions, e.Triangle, vp)
	if !ok {
		return
	}
	tx, ty := e.Tile%vp.NumTilesX, e.Tile/vp.NumTilesX
	s := tri.S
	inv := 1 / tri.Area

	for lid := uint32(0); lid < WorkgroupSize; lid++ {
		px := tx*TileSize + lid%TileSize
		py := ty*TileSize + lid/TileSize
		if float32(px) >= vp.Width || float32(py) >= vp.Height {
			continue
		}
		cx := vp.X + float32(px) + 0.5
		cy := vp.Y + float32(py) + 0.5

		b0 := edge(s[1], s[2], cx, cy) * inv
		b1 := edge(s[2], s[0], cx, cy) * inv
		b2 := edge(s[0], s[1], cx, cy) * inv
		if b0 < 0 || b1 < 0 || b2 < 0 {
			continue
		}
		z := b0*s[0][2] + b1*s[1][2] + b2*s[2][2]
		if !(z >= 0 && z <= 1) {
			continue
		}
		fn(Fragment{
			Index: (uint32(vp.X)+px) + (uint32(vp.Y)+py)*vp.TargetWidth,
			Bary:  linear.Vec3{b0, b1, b2},
			Depth: QuantizeDepth(z),
		})
	}
}

// depthGroup runs one workgroup of the depth pass (pixel_depth.wgsl).
func depthGroup(entry uint32, vp *ViewportParams, b *Buffers, depth []uint32) {
	rasterEntry(entry, vp, b, func(f Fragment) {
		if int(f.Index) < len(depth) {
			atomicMin(&depth[f.Index], f.Depth)
		}
	})
}

// shadeGroup runs one workgroup of the shade pass (pixel_shade.wgsl). Only
// fragments whose depth equals the resolved depth are written, which makes
// the color independent of the order the depth pass ran in.
func shadeGroup(entry uint32, vp *ViewportParams, sp *ShadingParams, b *Buffers, depth, color []uint32) {
	rasterEntry(entry, vp, b, func(f Fragment) {
		if int(f.Index) >= len(depth) || int(f.Index) >= len(color) {
			return
		}
		if atomic.LoadUint32(&depth[f.Index]) != f.Depth {
			return
		}
		tri := b.Entries[entry].Triangle
		n := InterpolateNormal(b, tri, f.Bary, sp.Normal)
		atomic.StoreUint32(&color[f.Index], Shade(n, sp))
	})
}

// InterpolateNormal blends the normal channel of triangle tri's vertices.
func InterpolateNormal(b *Buffers, tri uint32, bary linear.Vec3, l AttributeLayout) linear.Vec3 {
	if l.Components == 0 {
		return FaceNormal
	}
	var n linear.Vec3
	for k := range uint32(3) {
		base := l.DestBase + (3*tri+k)*l.DestStride
		for c := range min(l.Components, 3) {
			if int(base+c) < len(b.Attributes) {
				n[c] += bary[k] * b.Attributes[base+c]
			}
		}
	}
	return n
}

func atomicMin(p *uint32, v uint32) {
	for {
		old := atomic.LoadUint32(p)
		if v >= old || atomic.CompareAndSwapUint32(p, old, v) {
			return
		}
	}
}

// clearGroup runs one workgroup of the clear kernel (clear.wgsl).
func clearGroup(group uint32, p ClearParams, target []uint32) {
	for lid := uint32(0); lid < WorkgroupSize; lid++ {
		i := group*WorkgroupSize + lid
		if i >= p.Count || int(i) >= len(target) {
			return
		}
		atomic.StoreUint32(&target[i], p.Value)
	}
}
