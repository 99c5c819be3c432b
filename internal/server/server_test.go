package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/asengupta/framesight/internal/analysis"
	"github.com/asengupta/framesight/internal/app"
	"github.com/asengupta/framesight/internal/capture"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer builds a server around a mock frame source. Requires the
// OpenCV runtime because the analyzer owns native detector state.
func testServer(t *testing.T) (*Server, *capture.MockSource) {
	t.Helper()

	source := capture.NewMockSource()
	a := app.New(app.Config{
		Source: source,
		Analyzer: analysis.New(analysis.Config{
			ModelDir: t.TempDir(),
			Logger:   discardLogger(),
		}),
		SavedFramesDir: filepath.Join(t.TempDir(), "saved"),
		ModelDir:       t.TempDir(),
		Logger:         discardLogger(),
	})
	t.Cleanup(func() { a.Close() })

	return New(Config{App: a, Logger: discardLogger()}), source
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()

	testContent := "<html><body>FrameSight</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != testContent {
		t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
	}
}

func TestServer_Stats(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var summary analysis.MetricsSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.TotalFrames != 0 {
		t.Errorf("total frames = %d, want 0", summary.TotalFrames)
	}
}

func TestServer_StatsReset(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	t.Run("resets via POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/stats/reset", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stats/reset", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestServer_Capabilities(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/capabilities", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		Capabilities []analysis.Capability `json:"capabilities"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	names := make(map[string]bool)
	for _, c := range response.Capabilities {
		names[c.Name] = true
	}
	for _, want := range []string{"face_detection", "motion_detection", "edge_detection"} {
		if !names[want] {
			t.Errorf("missing capability %q", want)
		}
	}
}

func TestServer_Processing(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	t.Run("starts disabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/processing", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		var response processingResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Enabled {
			t.Error("processing should start disabled")
		}
	})

	t.Run("toggles via POST", func(t *testing.T) {
		body := strings.NewReader(`{"enabled": true}`)
		req := httptest.NewRequest(http.MethodPost, "/api/processing", body)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response processingResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !response.Enabled {
			t.Error("processing should be enabled after toggle")
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/processing", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestServer_Options(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	body := strings.NewReader(`{"annotate": false, "forward_records": true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/options", body)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var opts app.Options
	if err := json.NewDecoder(rec.Body).Decode(&opts); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if opts.Annotate || !opts.ForwardRecords {
		t.Errorf("options = %+v, want annotate off and forwarding on", opts)
	}
}

func TestServer_CameraControl(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, source := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/camera/start", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !source.IsOpen() {
		t.Error("source should be open after start")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/camera/stop", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("stop: expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if source.IsOpen() {
		t.Error("source should be closed after stop")
	}
}

func TestServer_TrackingStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tracking", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	var response trackingResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Active {
		t.Error("tracking should start inactive")
	}
}

// uploadRequest builds a multipart POST with the given file under the
// "video" form field.
func uploadRequest(t *testing.T, path string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("video", filepath.Base(path))
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/videos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_VideoUpload(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	clipPath := filepath.Join(t.TempDir(), "clip.avi")
	writer, err := gocv.VideoWriterFile(clipPath, "MJPG", 15, 640, 480, true)
	if err != nil {
		t.Fatalf("VideoWriterFile: %v", err)
	}
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	for i := 0; i < 4; i++ {
		if err := writer.Write(frame); err != nil {
			t.Fatalf("Write frame %d: %v", i, err)
		}
	}
	frame.Close()
	writer.Close()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, clipPath))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response clipResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Filename != "clip.avi" {
		t.Errorf("filename = %q, want clip.avi", response.Filename)
	}
	if response.Metrics.TotalFrames != 4 {
		t.Errorf("total frames = %d, want 4", response.Metrics.TotalFrames)
	}
}

func TestServer_VideoUploadMissingFile(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestServer_VideoUploadMethodNotAllowed(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestServer_Export(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if disposition := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(disposition, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", disposition)
	}

	var response exportResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ExportedAt == "" {
		t.Error("expected 'exported_at' field in response")
	}
	if len(response.Capabilities) == 0 {
		t.Error("expected capabilities in export")
	}
	if response.Stream.Format != "mjpeg" {
		t.Errorf("stream format = %q, want mjpeg", response.Stream.Format)
	}
}

func TestRecordsFeed_UpgradeErrorLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := NewRecordsFeedHandler(app.New(app.Config{}), logger)

	// Plain GET without the websocket handshake headers fails upgrade.
	req := httptest.NewRequest(http.MethodGet, "/api/records/live", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if !strings.Contains(buf.String(), "websocket upgrade failed") {
		t.Errorf("upgrade failure not logged, got %q", buf.String())
	}
}

func TestServer_FrameSaveNoCamera(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}

	s, source := testServer(t)
	source.SetError(capture.ErrSourceNotOpen)

	req := httptest.NewRequest(http.MethodPost, "/api/frames/save", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}
