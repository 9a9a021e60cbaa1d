package rendertest

import "github.com/spaghettifunk/rosella/engine/renderer"

// Scene is a plain renderer.Scene for tests.
type Scene struct {
	materials []*renderer.Material
	objects   []*renderer.RenderObject
	released  []*renderer.RenderObject
	dirty     bool
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) AddMaterial(m *renderer.Material) {
	s.materials = append(s.materials, m)
	s.dirty = true
}

func (s *Scene) AddObject(o *renderer.RenderObject) {
	s.objects = append(s.objects, o)
	s.dirty = true
}

func (s *Scene) RemoveObject(o *renderer.RenderObject) {
	for i, obj := range s.objects {
		if obj == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			s.released = append(s.released, o)
			s.dirty = true
			return
		}
	}
}

func (s *Scene) Materials() []*renderer.Material {
	return s.materials
}

func (s *Scene) Objects() []*renderer.RenderObject {
	return s.objects
}

func (s *Scene) Released() []*renderer.RenderObject {
	released := s.released
	s.released = nil
	return released
}

func (s *Scene) Dirty() bool {
	return s.dirty
}

func (s *Scene) MarkClean() {
	s.dirty = false
}

var _ renderer.Scene = (*Scene)(nil)
