package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/scene"
)

type cubeFace struct {
	normal, u, v mgl32.Vec3
	color        mgl32.Vec3
}

// u x v == normal, so each face winds counter-clockwise seen from outside.
var cubeFaces = []cubeFace{
	{normal: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 1, 0}, v: mgl32.Vec3{0, 0, 1}, color: mgl32.Vec3{1, 0.4, 0.4}},
	{normal: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}, color: mgl32.Vec3{0.6, 0.1, 0.1}},
	{normal: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{1, 0, 0}, color: mgl32.Vec3{0.4, 1, 0.4}},
	{normal: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}, color: mgl32.Vec3{0.1, 0.6, 0.1}},
	{normal: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}, color: mgl32.Vec3{0.4, 0.4, 1}},
	{normal: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{0, 1, 0}, v: mgl32.Vec3{1, 0, 0}, color: mgl32.Vec3{0.1, 0.1, 0.6}},
}

// Cube is an axis aligned cube centered on the origin with the whole texture
// on every face.
func Cube(size float32) scene.StaticMesh {
	half := size / 2
	mesh := scene.StaticMesh{
		Vertices: make([]renderer.Vertex, 0, len(cubeFaces)*4),
		Indices:  make([]uint32, 0, len(cubeFaces)*6),
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range cubeFaces {
		base := uint32(len(mesh.Vertices))
		center := f.normal.Mul(half)
		for _, c := range corners {
			pos := center.Add(f.u.Mul(c[0] * half)).Add(f.v.Mul(c[1] * half))
			mesh.Vertices = append(mesh.Vertices, renderer.Vertex{
				Position: pos,
				Color:    f.color,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		for _, i := range []uint32{0, 1, 2, 2, 3, 0} {
			mesh.Indices = append(mesh.Indices, base+i)
		}
	}
	return mesh
}
