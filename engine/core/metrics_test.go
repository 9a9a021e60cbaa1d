package core

import "testing"

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	if got := m.FrameTime(); got < 15.9 || got > 16.1 {
		t.Errorf("expected ~16ms average, got %f", got)
	}
	if m.TotalFrames() != uint64(AVG_COUNT) {
		t.Errorf("expected %d frames, got %d", AVG_COUNT, m.TotalFrames())
	}
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()
	// 1/32 s is exact in binary, so the one second boundary is crossed on
	// the 33rd frame.
	for i := 0; i < 40; i++ {
		m.Update(0.03125)
	}
	if m.FPS() != 32 {
		t.Errorf("expected 32 fps, got %f", m.FPS())
	}
	m.RecordRecreation()
	m.RecordDroppedFrame()
	if m.Recreations() != 1 || m.DroppedFrames() != 1 {
		t.Errorf("counters not recorded")
	}
}
