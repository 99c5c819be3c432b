package vision

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrLandmarksUnavailable is returned by detectors whose underlying
// model could not be loaded.
var ErrLandmarksUnavailable = errors.New("landmark model not available")

// Landmark is a single normalized landmark coordinate.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LandmarkSet groups the landmarks of one detected subject.
type LandmarkSet struct {
	// Kind names the landmark family, e.g. "pose" or "hand".
	Kind   string     `json:"kind"`
	Points []Landmark `json:"points"`
}

// LandmarkDetector is the optional multi-model primitive (pose, hand or
// face-mesh landmarks). Implementations follow the same contract as the
// cascade primitives: unavailable models yield empty results rather than
// per-frame errors.
type LandmarkDetector interface {
	Detect(frame *gocv.Mat) ([]LandmarkSet, error)
	Available() bool
	Close() error
}

// DisabledLandmarkDetector is the stand-in used when no landmark model
// is configured. It always yields empty results.
type DisabledLandmarkDetector struct{}

// NewDisabledLandmarkDetector creates a DisabledLandmarkDetector.
func NewDisabledLandmarkDetector() *DisabledLandmarkDetector {
	return &DisabledLandmarkDetector{}
}

// Detect returns no landmarks.
func (d *DisabledLandmarkDetector) Detect(frame *gocv.Mat) ([]LandmarkSet, error) {
	return nil, nil
}

// Available reports false.
func (d *DisabledLandmarkDetector) Available() bool {
	return false
}

// Close is a no-op.
func (d *DisabledLandmarkDetector) Close() error {
	return nil
}

// MockLandmarkDetector is a test implementation of LandmarkDetector.
// It allows tests to control the detection results.
type MockLandmarkDetector struct {
	sets []LandmarkSet
	err  error
}

// NewMockLandmarkDetector creates a MockLandmarkDetector.
func NewMockLandmarkDetector() *MockLandmarkDetector {
	return &MockLandmarkDetector{}
}

// SetSets sets the landmark sets returned by Detect.
func (m *MockLandmarkDetector) SetSets(sets []LandmarkSet) {
	m.sets = sets
}

// SetError sets the error returned by Detect.
func (m *MockLandmarkDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured sets or error.
func (m *MockLandmarkDetector) Detect(frame *gocv.Mat) ([]LandmarkSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sets, nil
}

// Available reports true so the mock participates in analysis.
func (m *MockLandmarkDetector) Available() bool {
	return true
}

// Close is a no-op for the mock detector.
func (m *MockLandmarkDetector) Close() error {
	return nil
}
