package testbed

import (
	"testing"
)

func TestCubeGeometry(t *testing.T) {
	mesh := Cube(2)
	if len(mesh.Vertices) != 24 || len(mesh.Indices) != 36 {
		t.Fatalf("expected 24 vertices and 36 indices, got %d and %d", len(mesh.Vertices), len(mesh.Indices))
	}
	for _, v := range mesh.Vertices {
		for i := 0; i < 3; i++ {
			if c := v.Position[i]; c != 1 && c != -1 {
				t.Fatalf("vertex %v is not on a unit corner", v.Position)
			}
		}
	}
}

func TestCubeWindsOutward(t *testing.T) {
	mesh := Cube(1)
	for i := 0; i < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]].Position
		b := mesh.Vertices[mesh.Indices[i+1]].Position
		c := mesh.Vertices[mesh.Indices[i+2]].Position
		normal := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		if normal.Dot(centroid) <= 0 {
			t.Fatalf("triangle %d faces inward", i/3)
		}
	}
}
