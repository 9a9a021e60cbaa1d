package scene

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

type entry struct {
	id     uuid.UUID
	object *renderer.RenderObject
}

// Registry owns the materials and render objects of a scene and tracks the
// changes the renderer has not yet picked up. It is used from the render
// thread only.
type Registry struct {
	materials     []*renderer.Material
	materialIndex map[core.Identifier]*renderer.Material

	objects     []entry
	objectIndex map[uuid.UUID]int

	released []*renderer.RenderObject
	dirty    bool
}

func NewRegistry() *Registry {
	return &Registry{
		materialIndex: make(map[core.Identifier]*renderer.Material),
		objectIndex:   make(map[uuid.UUID]int),
	}
}

// RegisterMaterial makes a material available to AddObject. Identifiers are
// unique.
func (r *Registry) RegisterMaterial(m *renderer.Material) error {
	if m == nil || m.ID.IsZero() {
		err := errors.New("material needs an identifier")
		core.LogError(err.Error())
		return err
	}
	if _, ok := r.materialIndex[m.ID]; ok {
		err := errors.Newf("material '%s' is already registered", m.ID)
		core.LogError(err.Error())
		return err
	}
	r.materials = append(r.materials, m)
	r.materialIndex[m.ID] = m
	r.dirty = true
	core.LogDebug("registered material '%s'", m.ID)
	return nil
}

func (r *Registry) Material(id core.Identifier) (*renderer.Material, error) {
	m, ok := r.materialIndex[id]
	if !ok {
		return nil, core.NewNotFoundError("material", id.String())
	}
	return m, nil
}

// AddObject builds a render object from a geometry source drawn with the
// named material.
func (r *Registry) AddObject(material core.Identifier, src Source) (uuid.UUID, *renderer.RenderObject, error) {
	m, err := r.Material(material)
	if err != nil {
		core.LogError(err.Error())
		return uuid.Nil, nil, err
	}
	vertices, indices := Vertices(src)
	obj, err := renderer.NewRenderObject(m, vertices, indices)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return r.AddRenderObject(obj), obj, nil
}

func (r *Registry) AddRenderObject(obj *renderer.RenderObject) uuid.UUID {
	id := uuid.New()
	r.objectIndex[id] = len(r.objects)
	r.objects = append(r.objects, entry{id: id, object: obj})
	r.dirty = true
	return id
}

func (r *Registry) Object(id uuid.UUID) (*renderer.RenderObject, error) {
	i, ok := r.objectIndex[id]
	if !ok {
		return nil, core.NewNotFoundError("render object", id.String())
	}
	return r.objects[i].object, nil
}

// RemoveObject drops the object from the scene. Its GPU resources are freed
// by the renderer once it collects Released.
func (r *Registry) RemoveObject(id uuid.UUID) error {
	i, ok := r.objectIndex[id]
	if !ok {
		err := core.NewNotFoundError("render object", id.String())
		core.LogError(err.Error())
		return err
	}
	r.released = append(r.released, r.objects[i].object)
	r.objects = append(r.objects[:i], r.objects[i+1:]...)
	delete(r.objectIndex, id)
	for j := i; j < len(r.objects); j++ {
		r.objectIndex[r.objects[j].id] = j
	}
	r.dirty = true
	return nil
}

func (r *Registry) Len() int {
	return len(r.objects)
}

func (r *Registry) Materials() []*renderer.Material {
	return r.materials
}

func (r *Registry) Objects() []*renderer.RenderObject {
	out := make([]*renderer.RenderObject, len(r.objects))
	for i, e := range r.objects {
		out[i] = e.object
	}
	return out
}

func (r *Registry) Released() []*renderer.RenderObject {
	released := r.released
	r.released = nil
	return released
}

func (r *Registry) Dirty() bool {
	return r.dirty
}

func (r *Registry) MarkClean() {
	r.dirty = false
}

var _ renderer.Scene = (*Registry)(nil)
