package capture

import (
	"errors"
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// fileSource reads frames sequentially from a video file, e.g. an
// uploaded clip. ReadFrame returns io.EOF once the file is exhausted.
type fileSource struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewVideoFile creates a Source that plays back the video file at path.
func NewVideoFile(path string) Source {
	return &fileSource{path: path}
}

// Open opens the video file for reading.
func (f *fileSource) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(f.path)
	if err != nil {
		return err
	}

	f.capture = capture
	f.running = true

	return nil
}

// Close closes the video file.
func (f *fileSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running || f.capture == nil {
		f.running = false
		return nil
	}

	err := f.capture.Close()
	f.capture = nil
	f.running = false

	return err
}

// ReadFrame reads the next frame of the file. It returns io.EOF when
// playback reaches the end. The caller closes the returned Mat.
func (f *fileSource) ReadFrame() (*gocv.Mat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running || f.capture == nil {
		return nil, ErrSourceNotOpen
	}

	mat := gocv.NewMat()
	if ok := f.capture.Read(&mat); !ok {
		mat.Close()
		return nil, io.EOF
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("decoded frame is empty")
	}

	return &mat, nil
}

// IsOpen returns true while the file is open for reading.
func (f *fileSource) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.running
}
