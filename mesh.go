package tileraster

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/tileraster/linear"
)

// Mesh is an indexed triangle list with interleaved position and normal.
type Mesh struct {
	Positions []linear.Vec3
	Normals   []linear.Vec3
	Indices   []uint32
}

// MeshStride is the record size of Mesh.VertexBytes: float32x3 position
// followed by a float32x3 normal.
const MeshStride = 24

// FallbackMesh returns the single triangle drawn when no model is
// supplied.
func FallbackMesh() Mesh {
	n := linear.Vec3{0, 0, -1}
	return Mesh{
		Positions: []linear.Vec3{{0, 9, 0}, {5, -1, 0}, {-5, -1, 0}},
		Normals:   []linear.Vec3{n, n, n},
		Indices:   []uint32{0, 1, 2},
	}
}

// VertexBytes packs the vertex records little-endian, MeshStride bytes
// each. Missing normals are written as zero.
func (m *Mesh) VertexBytes() []byte {
	out := make([]byte, len(m.Positions)*MeshStride)
	for i, p := range m.Positions {
		rec := out[i*MeshStride:]
		putVec3(rec[0:12], p)
		if i < len(m.Normals) {
			putVec3(rec[12:24], m.Normals[i])
		}
	}
	return out
}

// IndexBytes packs the indices as little-endian u32.
func (m *Mesh) IndexBytes() []byte {
	out := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}

func putVec3(b []byte, v linear.Vec3) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
}
