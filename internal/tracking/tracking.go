// Package tracking manages single-object tracker sessions. A session
// wraps one OpenCV tracker initialized on a region of interest and
// follows it across subsequent frames until stopped or lost.
package tracking

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// Supported tracker algorithms, in preference order.
const (
	AlgorithmCSRT = "csrt"
	AlgorithmKCF  = "kcf"
	AlgorithmMIL  = "mil"
)

// ErrInitFailed is returned when the tracker rejects the initial region.
var ErrInitFailed = errors.New("failed to initialize tracker")

// Session tracks one object across frames.
type Session struct {
	mu        sync.Mutex
	tracker   gocv.Tracker
	algorithm string
	box       image.Rectangle
	lost      bool
}

// newTracker constructs a tracker for the named algorithm. An empty
// name selects CSRT.
func newTracker(algorithm string) (gocv.Tracker, string, error) {
	switch algorithm {
	case "", AlgorithmCSRT:
		return contrib.NewTrackerCSRT(), AlgorithmCSRT, nil
	case AlgorithmKCF:
		return contrib.NewTrackerKCF(), AlgorithmKCF, nil
	case AlgorithmMIL:
		return gocv.NewTrackerMIL(), AlgorithmMIL, nil
	default:
		return nil, "", fmt.Errorf("unknown tracker algorithm %q", algorithm)
	}
}

// Start creates a session tracking the object inside box on the given
// frame.
func Start(frame *gocv.Mat, box image.Rectangle, algorithm string) (*Session, error) {
	if box.Dx() <= 0 || box.Dy() <= 0 {
		return nil, fmt.Errorf("invalid tracking box %v", box)
	}
	if frame == nil || frame.Empty() {
		return nil, errors.New("cannot start tracking on an empty frame")
	}

	tracker, name, err := newTracker(algorithm)
	if err != nil {
		return nil, err
	}

	if ok := tracker.Init(*frame, box); !ok {
		tracker.Close()
		return nil, ErrInitFailed
	}

	return &Session{
		tracker:   tracker,
		algorithm: name,
		box:       box,
	}, nil
}

// Update advances the tracker with the next frame and returns the new
// box. ok is false once the object is lost; the session stays lost until
// closed.
func (s *Session) Update(frame *gocv.Mat) (image.Rectangle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lost || frame == nil || frame.Empty() {
		return s.box, false
	}

	box, ok := s.tracker.Update(*frame)
	if !ok {
		s.lost = true
		return s.box, false
	}

	s.box = box
	return box, true
}

// Box returns the most recent tracked region.
func (s *Session) Box() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.box
}

// Algorithm returns the tracker algorithm in use.
func (s *Session) Algorithm() string {
	return s.algorithm
}

// Lost reports whether the tracker has lost the object.
func (s *Session) Lost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

// Close releases the native tracker.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Close()
}
