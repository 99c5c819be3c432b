package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockSource is a test implementation of Source. It hands out clones of
// queued frames, or blank frames when the queue is empty, so tests can
// drive the pipeline without camera hardware.
type MockSource struct {
	mu     sync.Mutex
	open   bool
	frames []gocv.Mat
	next   int
	err    error
}

// NewMockSource creates a MockSource.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// QueueFrame appends a frame to be served by ReadFrame. The mock clones
// the frame internally; the caller keeps ownership of its Mat.
func (m *MockSource) QueueFrame(frame gocv.Mat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frame.Clone())
}

// SetError makes subsequent ReadFrame calls fail with err.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Open marks the source as open.
func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	return nil
}

// Close marks the source closed and releases queued frames.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = false
	for i := range m.frames {
		m.frames[i].Close()
	}
	m.frames = nil
	m.next = 0
	return nil
}

// ReadFrame returns a clone of the next queued frame, cycling through
// the queue, or a blank 640x480 frame when nothing is queued.
func (m *MockSource) ReadFrame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil, ErrSourceNotOpen
	}
	if m.err != nil {
		return nil, m.err
	}

	if len(m.frames) == 0 {
		mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		return &mat, nil
	}

	frame := m.frames[m.next].Clone()
	m.next = (m.next + 1) % len(m.frames)
	return &frame, nil
}

// IsOpen returns true after Open and before Close.
func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
