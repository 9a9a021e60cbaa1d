package core

import "testing"

func TestEventSystemDispatch(t *testing.T) {
	es := NewEventSystem()
	var gotW, gotH uint32
	listener := &struct{}{}
	ok := es.Register(EVENT_CODE_RESIZED, listener, func(code SystemEventCode, sender, inst interface{}, data EventContext) bool {
		gotW, gotH = data.Data.U32[0], data.Data.U32[1]
		return true
	})
	if !ok {
		t.Fatalf("registration failed")
	}
	if es.Register(EVENT_CODE_RESIZED, listener, func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }) {
		t.Errorf("duplicate listener should be rejected")
	}

	ctx := EventContext{}
	ctx.Data.U32[0], ctx.Data.U32[1] = 800, 600
	if !es.Fire(EVENT_CODE_RESIZED, nil, ctx) {
		t.Errorf("event should be handled")
	}
	if gotW != 800 || gotH != 600 {
		t.Errorf("unexpected payload %dx%d", gotW, gotH)
	}

	if !es.Unregister(EVENT_CODE_RESIZED, listener) {
		t.Errorf("unregister failed")
	}
	if es.Fire(EVENT_CODE_RESIZED, nil, ctx) {
		t.Errorf("no listeners should remain")
	}
}

func TestInputFiresOnChangeOnly(t *testing.T) {
	es := NewEventSystem()
	presses := 0
	es.Register(EVENT_CODE_KEY_PRESSED, "test", func(code SystemEventCode, sender, inst interface{}, data EventContext) bool {
		if KeyCode(data.Data.U32[0]) == KEY_ESCAPE {
			presses++
		}
		return true
	})
	in := NewInput(es)
	in.ProcessKey(KEY_ESCAPE, true)
	in.ProcessKey(KEY_ESCAPE, true)
	if presses != 1 {
		t.Errorf("expected one press event, got %d", presses)
	}
	if !in.IsKeyDown(KEY_ESCAPE) || in.WasKeyDown(KEY_ESCAPE) {
		t.Errorf("unexpected key state")
	}
	in.Update(0)
	if !in.WasKeyDown(KEY_ESCAPE) {
		t.Errorf("previous state should be copied on update")
	}
}
