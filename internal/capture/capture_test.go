package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestCamera_ReadBeforeOpen(t *testing.T) {
	c := NewCamera(0)

	if c.IsOpen() {
		t.Error("camera should not be open before Open")
	}

	if _, err := c.ReadFrame(); !errors.Is(err, ErrSourceNotOpen) {
		t.Errorf("err = %v, want ErrSourceNotOpen", err)
	}
}

func TestCamera_CloseWithoutOpen(t *testing.T) {
	c := NewCamera(0)

	if err := c.Close(); err != nil {
		t.Errorf("Close on unopened camera: %v", err)
	}
}

func TestVideoFile_ReadBeforeOpen(t *testing.T) {
	f := NewVideoFile("missing.mp4")

	if _, err := f.ReadFrame(); !errors.Is(err, ErrSourceNotOpen) {
		t.Errorf("err = %v, want ErrSourceNotOpen", err)
	}
}

func TestVideoFile_OpenMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires the OpenCV runtime")
	}

	f := NewVideoFile("testdata/does-not-exist.mp4")
	if err := f.Open(); err == nil {
		f.Close()
		t.Error("expected error opening a missing video file")
	}
}

func TestMockSource_Lifecycle(t *testing.T) {
	m := NewMockSource()

	if _, err := m.ReadFrame(); !errors.Is(err, ErrSourceNotOpen) {
		t.Errorf("err before Open = %v, want ErrSourceNotOpen", err)
	}

	if err := m.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !m.IsOpen() {
		t.Error("mock should report open")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if m.IsOpen() {
		t.Error("mock should report closed")
	}
}

func TestMockSource_QueuedFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	m := NewMockSource()
	defer m.Close()
	m.Open()

	frame := gocv.NewMatWithSize(100, 200, gocv.MatTypeCV8UC3)
	defer frame.Close()
	m.QueueFrame(frame)

	// The queue cycles, so repeated reads keep succeeding.
	for i := 0; i < 3; i++ {
		got, err := m.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		if got.Rows() != 100 || got.Cols() != 200 {
			t.Errorf("frame %d size = %dx%d, want 200x100", i, got.Cols(), got.Rows())
		}
		got.Close()
	}
}

func TestMockSource_Error(t *testing.T) {
	m := NewMockSource()
	defer m.Close()
	m.Open()

	wantErr := errors.New("camera unplugged")
	m.SetError(wantErr)

	if _, err := m.ReadFrame(); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
