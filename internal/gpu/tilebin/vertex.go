// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tilebin

import (
	"math"

	"github.com/gogpu/tileraster/linear"
)

// word reads a source word with robust-access semantics: reads past the
// end return zero, as bounds-checked storage reads do on the GPU.
func word(src []uint32, i uint32) uint32 {
	if int(i) >= len(src) {
		return 0
	}
	return src[i]
}

// FetchIndex returns the i-th index of a u32 or packed u16 index stream.
func FetchIndex(indices []uint32, i, format uint32) uint32 {
	if format == IndexFormatUint16 {
		return (word(indices, i/2) >> ((i & 1) * 16)) & 0xFFFF
	}
	return word(indices, i)
}

// vertexGroup runs one workgroup of the vertex kernel (vertex_common.wgsl).
func vertexGroup(group uint32, p *VertexParams, src, indices []uint32, indexed bool, b *Buffers) {
	for lid := uint32(0); lid < WorkgroupSize; lid++ {
		i := group*WorkgroupSize + lid
		if i >= p.NumVertices || int(i) >= len(b.Positions) {
			return
		}

		s := i
		if indexed {
			s = FetchIndex(indices, i, p.IndexFormat)
		}
		base := s * p.SourceStride

		pos := linear.Vec4{
			math.Float32frombits(word(src, base)),
			math.Float32frombits(word(src, base+1)),
			math.Float32frombits(word(src, base+2)),
			1,
		}
		b.Positions[i] = p.WorldViewProj.MulVec4(pos)

		for a := uint32(0); a < p.NumAttributes && a < MaxAttributes; a++ {
			l := p.Attributes[a]
			dst := l.DestBase + i*l.DestStride
			for c := uint32(0); c < l.DestStride; c++ {
				var v float32
				if c < l.Components {
					v = math.Float32frombits(word(src, base+l.SourceOffset+c))
				}
				if int(dst+c) < len(b.Attributes) {
					b.Attributes[dst+c] = v
				}
			}
		}
	}
}
