package core

// Key code definitions
type KeyCode uint16

const (
	KEY_ENTER  KeyCode = 0x0D
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_LEFT   KeyCode = 0x25
	KEY_UP     KeyCode = 0x26
	KEY_RIGHT  KeyCode = 0x27
	KEY_DOWN   KeyCode = 0x28
	KEY_A      KeyCode = 0x41
	KEY_D      KeyCode = 0x44
	KEY_M      KeyCode = 0x4D
	KEY_R      KeyCode = 0x52
	KEY_S      KeyCode = 0x53
	KEY_W      KeyCode = 0x57
	KEY_F1     KeyCode = 0x70
)

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// Input holds the current and previous keyboard state and turns changes into
// key events.
type Input struct {
	events   *EventSystem
	current  KeyboardState
	previous KeyboardState
}

func NewInput(events *EventSystem) *Input {
	return &Input{events: events}
}

// Update copies the current state to the previous one. Call it last in a frame.
func (in *Input) Update(deltaTime float64) {
	in.previous = in.current
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	return in.current.Keys[key]
}

func (in *Input) IsKeyUp(key KeyCode) bool {
	return !in.current.Keys[key]
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	return in.previous.Keys[key]
}

func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if int(key) >= len(in.current.Keys) {
		return
	}
	// Only handle this if the state actually changed.
	if in.current.Keys[key] == pressed {
		return
	}
	in.current.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	ctx := EventContext{}
	ctx.Data.U32[0] = uint32(key)
	in.events.Fire(code, in, ctx)
}
