// Package app wires the frame source, analyzer, annotator, cloud
// forwarding and local persistence into one owned pipeline instance.
// Each frame source gets its own App, so the motion background model
// and the rolling metrics are never shared across sources.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/asengupta/framesight/internal/analysis"
	"github.com/asengupta/framesight/internal/capture"
	"github.com/asengupta/framesight/internal/cloud"
	"github.com/asengupta/framesight/internal/store"
	"github.com/asengupta/framesight/internal/tracking"
)

// ErrNoFrame is returned when the source cannot supply a frame.
var ErrNoFrame = errors.New("no frame available")

// Options control the per-frame work applied on top of raw capture.
type Options struct {
	// Annotate renders analysis overlays onto served frames.
	Annotate bool `json:"annotate"`
	// ForwardRecords sends each analysis record to the streaming sink.
	ForwardRecords bool `json:"forward_records"`
}

// Config holds the collaborators of an App. Publisher, Uploader and
// Store are optional; a nil value disables that integration.
type Config struct {
	Source         capture.Source
	Analyzer       *analysis.Analyzer
	Publisher      *cloud.Publisher
	Uploader       *cloud.Uploader
	Store          *store.Store
	SavedFramesDir string
	// ModelDir seeds the dedicated analyzer used for uploaded clips.
	ModelDir string
	Logger   *slog.Logger
}

// App owns one analysis pipeline over one frame source.
type App struct {
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	enabled bool
	options Options
	session *tracking.Session
}

// New creates an App. Processing starts disabled; overlays and record
// forwarding default to on once processing is enabled.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		config:  config,
		logger:  logger,
		options: Options{Annotate: true, ForwardRecords: true},
	}
}

// StartCamera opens the frame source.
func (a *App) StartCamera() error {
	return a.config.Source.Open()
}

// StopCamera closes the frame source.
func (a *App) StopCamera() error {
	return a.config.Source.Close()
}

// CameraRunning reports whether the frame source is open.
func (a *App) CameraRunning() bool {
	return a.config.Source.IsOpen()
}

// SetEnabled turns per-frame analysis on or off.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether per-frame analysis is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Options returns the current processing options.
func (a *App) Options() Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.options
}

// SetOptions replaces the processing options.
func (a *App) SetOptions(opts Options) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.options = opts
}

// Analyzer returns the analyzer owned by this pipeline.
func (a *App) Analyzer() *analysis.Analyzer {
	return a.config.Analyzer
}

// Store returns the metadata store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// NextFrame reads one frame from the source and, when analysis is
// enabled, runs the full pipeline over it: analyze, annotate, update
// any tracking session and forward the record to the streaming sink.
// The caller owns the returned Mat. The record is nil while analysis
// is disabled.
func (a *App) NextFrame(ctx context.Context) (*gocv.Mat, *analysis.Record, error) {
	frame, err := a.config.Source.ReadFrame()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}

	if !a.IsEnabled() {
		return frame, nil, nil
	}

	rec, err := a.config.Analyzer.Analyze(frame)
	if err != nil {
		frame.Close()
		return nil, nil, err
	}

	opts := a.Options()

	out := frame
	if opts.Annotate {
		annotated := analysis.Annotate(frame, rec)
		frame.Close()
		out = &annotated
	}

	a.updateTracking(out)

	if opts.ForwardRecords && a.config.Publisher != nil {
		a.config.Publisher.Publish(ctx, rec)
	}

	return out, rec, nil
}

// updateTracking advances the active tracking session, if any, and
// draws its state onto the frame.
func (a *App) updateTracking(frame *gocv.Mat) {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		return
	}

	red := color.RGBA{R: 255}
	if box, ok := session.Update(frame); ok {
		gocv.Rectangle(frame, box, red, 2)
		gocv.PutText(frame, "Tracking", image.Pt(box.Min.X, box.Min.Y-10), gocv.FontHersheySimplex, 0.7, red, 2)
	} else {
		gocv.PutText(frame, "Tracking Lost", image.Pt(10, 90), gocv.FontHersheySimplex, 0.7, red, 2)
	}
}

// StartTracking begins a tracker session on the next source frame.
func (a *App) StartTracking(box image.Rectangle, algorithm string) error {
	frame, err := a.config.Source.ReadFrame()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	defer frame.Close()

	session, err := tracking.Start(frame, box, algorithm)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		a.session.Close()
	}
	a.session = session

	a.logger.Info("object tracking started", "box", box, "algorithm", session.Algorithm())
	return nil
}

// StopTracking ends the active tracker session, if any.
func (a *App) StopTracking() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		a.session.Close()
		a.session = nil
		a.logger.Info("object tracking stopped")
	}
}

// Tracking reports whether a tracker session is active.
func (a *App) Tracking() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

// SaveFrame captures and processes one frame, writes it to the local
// snapshot directory and best-effort mirrors it (plus the analysis
// record) to the object store. It returns the stored frame metadata.
func (a *App) SaveFrame(ctx context.Context) (*store.SavedFrame, error) {
	frame, rec, err := a.NextFrame(ctx)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{gocv.IMWriteJpegQuality, 85})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	jpeg := buf.GetBytes()

	ts := time.Now()
	if rec != nil {
		ts = rec.Timestamp
	}

	if err := os.MkdirAll(a.config.SavedFramesDir, 0o755); err != nil {
		return nil, err
	}
	localPath := filepath.Join(a.config.SavedFramesDir, fmt.Sprintf("frame_%s.jpg", ts.Format("20060102_150405")))
	if err := os.WriteFile(localPath, jpeg, 0o644); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}

	saved := &store.SavedFrame{
		ID:        uuid.NewString(),
		LocalPath: localPath,
	}
	if rec != nil {
		saved.QualityScore = rec.QualityScore
	}

	if a.config.Uploader != nil {
		key, err := a.config.Uploader.UploadFrame(ctx, ts, jpeg, rec)
		if err != nil {
			a.logger.Warn("cloud upload failed, keeping local copy only", "error", err)
		} else {
			saved.ObjectKey = key
		}
	}

	if a.config.Store != nil {
		if err := a.config.Store.Frames().Create(saved); err != nil {
			a.logger.Warn("failed to persist frame metadata", "error", err)
		}
		if rec != nil {
			a.persistRecord(saved.ID, rec)
		}
	}

	return saved, nil
}

// persistRecord stores the serialized analysis record alongside the
// saved frame. Best effort.
func (a *App) persistRecord(frameID string, rec *analysis.Record) {
	payload, err := recordJSON(rec)
	if err != nil {
		a.logger.Warn("failed to serialize analysis record", "error", err)
		return
	}

	err = a.config.Store.Records().Create(&store.AnalysisRecord{
		ID:           uuid.NewString(),
		FrameID:      frameID,
		Payload:      payload,
		QualityScore: rec.QualityScore,
	})
	if err != nil {
		a.logger.Warn("failed to persist analysis record", "error", err)
	}
}

func recordJSON(rec *analysis.Record) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Close releases the tracker session, analyzer and frame source.
func (a *App) Close() error {
	a.StopTracking()

	var firstErr error
	if err := a.config.Analyzer.Close(); err != nil {
		firstErr = err
	}
	if err := a.config.Source.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
