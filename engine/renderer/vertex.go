package renderer

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the size in bytes of one packed Vertex.
const VertexStride = 32

// Vertex is position, color and texture coordinate, tightly packed.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexAttributes describes Vertex to a pipeline at locations 0, 1 and 2.
func VertexAttributes() []VertexAttribute {
	return []VertexAttribute{
		{Location: 0, Format: FormatR32G32B32Sfloat, Offset: 0},
		{Location: 1, Format: FormatR32G32B32Sfloat, Offset: 12},
		{Location: 2, Format: FormatR32G32Sfloat, Offset: 24},
	}
}

// PackVertices writes vertices little-endian, VertexStride bytes each.
func PackVertices(dst []byte, vertices []Vertex) {
	for i, v := range vertices {
		o := i * VertexStride
		putFloats(dst[o:], v.Position[:]...)
		putFloats(dst[o+12:], v.Color[:]...)
		putFloats(dst[o+24:], v.UV[:]...)
	}
}

// PackIndices writes 32-bit indices little-endian.
func PackIndices(dst []byte, indices []uint32) {
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(dst[i*4:], idx)
	}
}

func putFloats(dst []byte, values ...float32) {
	for i, f := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}
