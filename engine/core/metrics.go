package core

const AVG_COUNT uint8 = 30

// Metrics keeps rolling frame statistics for one engine instance.
type Metrics struct {
	frameAVGCounter    uint8
	msTimes            [AVG_COUNT]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64

	totalFrames  uint64
	recreations  uint64
	droppedFrame uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Update(frameElapsedTime float64) {
	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.msTimes[m.frameAVGCounter] = frameMS
	if m.frameAVGCounter == AVG_COUNT-1 {
		m.msAvg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.msAvg += m.msTimes[i]
		}
		m.msAvg /= float64(AVG_COUNT)
	}
	m.frameAVGCounter++
	m.frameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}

	// Count all Frames.
	m.frames++
	m.totalFrames++
}

// RecordRecreation counts one swapchain rebuild.
func (m *Metrics) RecordRecreation() {
	m.recreations++
}

// RecordDroppedFrame counts a loop iteration that ended before submission.
func (m *Metrics) RecordDroppedFrame() {
	m.droppedFrame++
}

func (m *Metrics) FPS() float64 {
	return m.fps
}

func (m *Metrics) FrameTime() float64 {
	return m.msAvg
}

func (m *Metrics) Frame() (float64, float64) {
	return m.fps, m.msAvg
}

func (m *Metrics) TotalFrames() uint64 {
	return m.totalFrames
}

func (m *Metrics) Recreations() uint64 {
	return m.recreations
}

func (m *Metrics) DroppedFrames() uint64 {
	return m.droppedFrame
}
