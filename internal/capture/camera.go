// Package capture provides frame sources for the analysis pipeline
// using GoCV (OpenCV): camera devices, video files and a mock source
// for tests.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings.
const (
	DefaultFPS    = 30
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ErrSourceNotOpen is returned when reading from a source that is not open.
var ErrSourceNotOpen = errors.New("frame source is not open")

// Source is a sequential supplier of video frames. Frames are 3-channel
// 8-bit BGR; the caller owns and must close every returned Mat.
type Source interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// cameraSource reads frames from a camera device.
type cameraSource struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a camera Source for the given device ID.
func NewCamera(deviceID int) Source {
	return &cameraSource{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// Open opens the camera and applies the default resolution and FPS.
func (c *cameraSource) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraSource) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrSourceNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// IsOpen returns true if the camera is currently open.
func (c *cameraSource) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
