package rendertest

// Window reports a scripted framebuffer size. Each WaitEvents call moves to
// the next entry of Pending, the way a platform event batch would deliver a
// resize.
type Window struct {
	Width, Height int
	Pending       [][2]int
	WaitCalls     int
}

func NewWindow(width, height int) *Window {
	return &Window{Width: width, Height: height}
}

func (w *Window) FramebufferSize() (int, int) {
	return w.Width, w.Height
}

func (w *Window) WaitEvents() {
	w.WaitCalls++
	if len(w.Pending) > 0 {
		w.Width, w.Height = w.Pending[0][0], w.Pending[0][1]
		w.Pending = w.Pending[1:]
	}
}
