package scene_test

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/scene"
)

const quadOBJ = `o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func TestDecodeModel(t *testing.T) {
	model, err := scene.DecodeModel("quad", strings.NewReader(quadOBJ), nil)
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}
	if len(model.Vertices) != 4 {
		t.Errorf("got %d vertices, want 4 shared corners", len(model.Vertices))
	}
	if len(model.Indices) != 6 {
		t.Fatalf("got %d indices, want a quad fanned into 2 triangles", len(model.Indices))
	}
	// v is flipped: OBJ v=0 is the bottom row of the image.
	if got := model.Vertices[0].UV; got != (mgl32.Vec2{0, 1}) {
		t.Errorf("first uv = %v, want (0, 1)", got)
	}
	vertices, indices := scene.Vertices(model)
	if len(vertices) != 4 || len(indices) != 6 {
		t.Errorf("Vertices(model) = %d/%d", len(vertices), len(indices))
	}
}

func TestDecodeModelWithoutFaces(t *testing.T) {
	if _, err := scene.DecodeModel("empty", strings.NewReader("o empty\nv 0 0 0\n"), nil); err == nil {
		t.Fatal("model without faces decoded")
	}
}
