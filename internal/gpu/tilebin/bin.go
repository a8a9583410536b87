// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"math"
	"sync/atomic"

	"github.com/gogpu/tileraster/linear"
)

// ToScreen projects a clip-space position into target pixel coordinates.
// The returned z is the NDC depth.
func ToScreen(c linear.Vec4, vp *ViewportParams) linear.Vec3 {
	nx, ny, nz := c[0]/c[3], c[1]/c[3], c[2]/c[3]
	return linear.Vec3{
		vp.X + (nx*0.5+0.5)*vp.Width,
		vp.Y + (0.5-ny*0.5)*vp.Height,
		nz,
	}
}

// edge is the 2D edge function of a->b evaluated at p. Its sign tells on
// which side of the edge p lies.
func edge(a, b linear.Vec3, px, py float32) float32 {
	return (b[0]-a[0])*(py-a[1]) - (b[1]-a[1])*(px-a[0])
}

// Triangle is a projected triangle ready for binning and rasterization.
type Triangle struct {
	S    [3]linear.Vec3
	Area float32
}

// SetupTriangle projects the triangle t of the position buffer. It reports
// false for triangles that cannot produce fragments: a vertex behind the eye
// (no near clipping is done) or a zero or non-finite signed area.
func SetupTriangle(positions []linear.Vec4, t uint32, vp *ViewportParams) (Triangle, bool) {
	var tri Triangle
	for k := range 3 {
		c := positions[3*t+uint32(k)]
		if !(c[3] > 0) {
			return tri, false
		}
		tri.S[k] = ToScreen(c, vp)
	}
	tri.Area = edge(tri.S[0], tri.S[1], tri.S[2][0], tri.S[2][1])
	if !(tri.Area > 0 || tri.Area < 0) {
		return tri, false
	}
	return tri, true
}

// PixelRect is an inclusive rectangle of viewport-relative pixels.
type PixelRect struct {
	X0, Y0, X1, Y1 uint32
}

// Tiles returns the inclusive tile rectangle covering r.
func (r PixelRect) Tiles() PixelRect {
	return PixelRect{r.X0 / TileSize, r.Y0 / TileSize, r.X1 / TileSize, r.Y1 / TileSize}
}

// Bounds returns the viewport pixels whose centers lie inside the
// triangle's bounding box. It reports false when there are none: the box
// is off-screen or falls between pixel centers.
func (tri *Triangle) Bounds(vp *ViewportParams) (PixelRect, bool) {
	s := tri.S
	minX := min(s[0][0], s[1][0], s[2][0]) - vp.X
	maxX := max(s[0][0], s[1][0], s[2][0]) - vp.X
	minY := min(s[0][1], s[1][1], s[2][1]) - vp.Y
	maxY := max(s[0][1], s[1][1], s[2][1]) - vp.Y

	x0 := max(ceil32(minX-0.5), 0)
	y0 := max(ceil32(minY-0.5), 0)
	x1 := min(floor32(maxX-0.5), vp.Width-1)
	y1 := min(floor32(maxY-0.5), vp.Height-1)
	if x0 > x1 || y0 > y1 {
		return PixelRect{}, false
	}
	return PixelRect{uint32(x0), uint32(y0), uint32(x1), uint32(y1)}, true
}

func ceil32(v float32) float32  { return float32(math.Ceil(float64(v))) }
func floor32(v float32) float32 { return float32(math.Floor(float64(v))) }

// binGroup runs one workgroup of the bin kernel (bin.wgsl). Each invocation
// owns one triangle and appends one entry per covered tile. The returned
// value of the atomic add is the entry's slot; slots past the list capacity
// are given back and counted as dropped.
func binGroup(group uint32, vp *ViewportParams, b *Buffers) {
	for lid := uint32(0); lid < WorkgroupSize; lid++ {
		t := group*WorkgroupSize + lid
		if t >= vp.NumTriangles {
			return
		}
		tri, ok := SetupTriangle(b.Positions, t, vp)
		if !ok {
			continue
		}
		rect, ok := tri.Bounds(vp)
		if !ok {
			continue
		}
		tiles := rect.Tiles()
		for ty := tiles.Y0; ty <= tiles.Y1; ty++ {
			for tx := tiles.X0; tx <= tiles.X1; tx++ {
				slot := atomic.AddUint32(&b.Counter[0], 1) - 1
				if slot < vp.MaxEntries && int(slot) < len(b.Entries) {
					b.Entries[slot] = Entry{Tile: ty*vp.NumTilesX + tx, Triangle: t}
					continue
				}
				atomic.AddUint32(&b.Counter[0], ^uint32(0))
				atomic.AddUint32(&b.Counter[3], 1)
			}
		}
	}
}

// TileOverlaps is the reference tile-overlap function: it returns the ids of
// every tile containing at least one pixel center that lies inside the
// triangle's screen bounding box. It scans the whole grid pixel by pixel and
// shares no code with the bin kernel's rectangle math.
func TileOverlaps(positions []linear.Vec4, t uint32, vp *ViewportParams) []uint32 {
	tri, ok := SetupTriangle(positions, t, vp)
	if !ok {
		return nil
	}
	s := tri.S
	minX := min(s[0][0], s[1][0], s[2][0])
	maxX := max(s[0][0], s[1][0], s[2][0])
	minY := min(s[0][1], s[1][1], s[2][1])
	maxY := max(s[0][1], s[1][1], s[2][1])

	w, h := uint32(vp.Width), uint32(vp.Height)
	var out []uint32
	for ty := uint32(0); ty < vp.NumTilesY; ty++ {
		for tx := uint32(0); tx < vp.NumTilesX; tx++ {
			if tileHasCenterIn(tx, ty, w, h, vp, minX, maxX, minY, maxY) {
				out = append(out, ty*vp.NumTilesX+tx)
			}
		}
	}
	return out
}

func tileHasCenterIn(tx, ty, w, h uint32, vp *ViewportParams, minX, maxX, minY, maxY float32) bool {
	for py := ty * TileSize; py < (ty+1)*TileSize && py < h; py++ {
		cy := vp.Y + float32(py) + 0.5
		if cy < minY || cy > maxY {
			continue
		}
		for px := tx * TileSize; px < (tx+1)*TileSize && px < w; px++ {
			cx := vp.X + float32(px) + 0.5
			if cx >= minX && cx <= maxX {
				return true
			}
		}
	}
	return false
}
