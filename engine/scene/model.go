package scene

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

type modelKey struct {
	vertex int
	uv     int
}

// DecodeModel reads a Wavefront OBJ stream. Polygons are fanned into
// triangles and identical position/uv pairs share one vertex. mtl may be nil.
func DecodeModel(name string, objReader, mtl io.Reader) (*Model, error) {
	if mtl == nil {
		mtl = strings.NewReader("")
	}
	decoder, err := obj.DecodeReader(objReader, mtl)
	if err != nil {
		err = errors.Wrapf(err, "decoding model '%s'", name)
		core.LogError(err.Error())
		return nil, err
	}

	model := &Model{Name: name}
	unique := make(map[modelKey]uint32)
	add := func(face obj.Face, i int) {
		key := modelKey{vertex: face.Vertices[i], uv: -1}
		// Faces without texture coordinates carry an out of range index.
		if i < len(face.Uvs) && face.Uvs[i] >= 0 && face.Uvs[i]*2+1 < len(decoder.Uvs) {
			key.uv = face.Uvs[i]
		}
		index, ok := unique[key]
		if !ok {
			v := renderer.Vertex{
				Position: mgl32.Vec3{
					decoder.Vertices[key.vertex*3],
					decoder.Vertices[key.vertex*3+1],
					decoder.Vertices[key.vertex*3+2],
				},
				Color: white,
			}
			if key.uv >= 0 {
				// OBJ puts v=0 at the bottom of the image.
				v.UV = mgl32.Vec2{decoder.Uvs[key.uv*2], 1.0 - decoder.Uvs[key.uv*2+1]}
			}
			index = uint32(len(model.Vertices))
			model.Vertices = append(model.Vertices, v)
			unique[key] = index
		}
		model.Indices = append(model.Indices, index)
	}

	for _, o := range decoder.Objects {
		for _, face := range o.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				add(face, 0)
				add(face, i-1)
				add(face, i)
			}
		}
	}
	if len(model.Indices) == 0 {
		err := errors.Newf("model '%s' has no faces", name)
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("decoded model '%s': %d vertices, %d indices", name, len(model.Vertices), len(model.Indices))
	return model, nil
}
