package scene_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/scene"
)

func newRegistry(t *testing.T) (*scene.Registry, core.Identifier) {
	t.Helper()
	r := scene.NewRegistry()
	id := core.NewIdentifier("rosella", "gui")
	if err := r.RegisterMaterial(renderer.NewMaterial(id, nil, nil)); err != nil {
		t.Fatalf("RegisterMaterial: %v", err)
	}
	r.MarkClean()
	return r, id
}

func TestRegistryMaterials(t *testing.T) {
	r, id := newRegistry(t)
	if err := r.RegisterMaterial(renderer.NewMaterial(id, nil, nil)); err == nil {
		t.Error("duplicate material registered")
	}
	if m, err := r.Material(id); err != nil || m.ID != id {
		t.Errorf("Material(%s) = %v, %v", id, m, err)
	}
	_, err := r.Material(core.NewIdentifier("rosella", "missing"))
	if !core.IsNotFound(err) {
		t.Errorf("missing material error = %v, want NotFoundError", err)
	}
}

func TestRegistryAddRemove(t *testing.T) {
	r, mat := newRegistry(t)

	a, objA, err := r.AddObject(mat, scene.GuiQuad{})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	b, _, err := r.AddObject(mat, scene.ColoredQuad{})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	if a == b || a == uuid.Nil {
		t.Fatalf("ids %s and %s are not unique", a, b)
	}
	if !r.Dirty() || r.Len() != 2 {
		t.Fatalf("dirty = %v, len = %d after two adds", r.Dirty(), r.Len())
	}
	r.MarkClean()

	if err := r.RemoveObject(a); err != nil {
		t.Fatalf("RemoveObject: %v", err)
	}
	if !r.Dirty() {
		t.Error("remove did not mark the scene dirty")
	}
	released := r.Released()
	if len(released) != 1 || released[0] != objA {
		t.Errorf("Released() = %v, want the removed object", released)
	}
	if len(r.Released()) != 0 {
		t.Error("Released() handed the same objects out twice")
	}
	if _, err := r.Object(b); err != nil {
		t.Errorf("remaining object lookup failed after remove: %v", err)
	}
	if err := r.RemoveObject(a); !core.IsNotFound(err) {
		t.Errorf("second remove error = %v, want NotFoundError", err)
	}
}

func TestRegistryAddObjectUnknownMaterial(t *testing.T) {
	r, _ := newRegistry(t)
	_, _, err := r.AddObject(core.NewIdentifier("rosella", "nope"), scene.GuiQuad{})
	if !core.IsNotFound(err) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if r.Dirty() {
		t.Error("failed add marked the scene dirty")
	}
}
