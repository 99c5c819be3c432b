package analysis

import (
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/asengupta/framesight/internal/vision"
)

// Config holds construction options for an Analyzer.
type Config struct {
	// ModelDir is the directory holding the Haar cascade files.
	ModelDir string
	// Landmarks optionally plugs in a multi-model landmark primitive.
	// When nil the disabled implementation is used.
	Landmarks vision.LandmarkDetector
	Logger    *slog.Logger
}

// Analyzer runs the full battery of detector primitives over single
// frames. It owns the stateful motion background model and the metrics
// tracker, so one Analyzer instance must serve exactly one frame source.
type Analyzer struct {
	faces     *vision.FaceDetector
	motion    *vision.MotionDetector
	corners   *vision.CornerDetector
	colors    *vision.ColorAnalyzer
	edges     *vision.EdgeDetector
	landmarks vision.LandmarkDetector
	metrics   *Tracker
	logger    *slog.Logger
}

// New creates an Analyzer with all primitives constructed up front.
// Primitives whose models fail to load stay registered but report
// themselves unavailable and yield empty results.
func New(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	landmarks := cfg.Landmarks
	if landmarks == nil {
		landmarks = vision.NewDisabledLandmarkDetector()
	}

	return &Analyzer{
		faces:     vision.NewFaceDetector(cfg.ModelDir, logger),
		motion:    vision.NewMotionDetector(),
		corners:   vision.NewCornerDetector(),
		colors:    vision.NewColorAnalyzer(),
		edges:     vision.NewEdgeDetector(),
		landmarks: landmarks,
		metrics:   NewTracker(),
		logger:    logger,
	}
}

// Analyze runs face, motion, corner, color and edge analysis over the
// frame in that order and returns the assembled Record. The record is
// also fed into the metrics tracker before it is returned.
//
// A failing primitive contributes its empty result; only an unusable
// input frame fails the call, with an error wrapping ErrInvalidFrame.
func (a *Analyzer) Analyze(frame *gocv.Mat) (*Record, error) {
	if frame == nil || frame.Empty() {
		return nil, fmt.Errorf("%w: frame is nil or empty", ErrInvalidFrame)
	}
	width, height := frame.Cols(), frame.Rows()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFrame, width, height)
	}

	start := time.Now()
	rec := &Record{
		Timestamp: start,
		Width:     width,
		Height:    height,
		Faces:     []vision.Face{},
		Motion:    vision.MotionSummary{Objects: []vision.MotionObject{}},
		Corners:   []vision.Point{},
	}

	a.guard("face_detection", func() {
		if faces := a.faces.Detect(frame); faces != nil {
			rec.Faces = faces
		}
	})

	a.guard("motion_detection", func() {
		rec.Motion = a.motion.Detect(frame)
	})

	a.guard("corner_detection", func() {
		corners := a.corners.Detect(frame)
		rec.CornersCount = len(corners)
		if len(corners) > MaxTransportCorners {
			corners = corners[:MaxTransportCorners]
		}
		if corners != nil {
			rec.Corners = corners
		}
	})

	a.guard("color_analysis", func() {
		rec.Color = a.colors.Analyze(frame)
	})

	a.guard("edge_detection", func() {
		edges := a.edges.Detect(frame)
		defer edges.Close()
		rec.EdgeDensity = vision.EdgeDensity(edges)
	})

	if a.landmarks.Available() {
		a.guard("landmarks", func() {
			sets, err := a.landmarks.Detect(frame)
			if err != nil {
				a.logger.Warn("landmark detection failed, using empty result", "error", err)
				return
			}
			rec.Landmarks = sets
		})
	}

	rec.QualityScore = QualityScore(rec.Faces, rec.Motion, rec.EdgeDensity)
	rec.ProcessingTime = time.Since(start)

	a.metrics.Record(rec)
	return rec, nil
}

// guard runs one primitive, converting a panic from the native layer
// into that primitive's empty result for this frame.
func (a *Analyzer) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("detector failed on frame, using empty result", "detector", name, "panic", r)
		}
	}()
	fn()
}

// Metrics returns the rolling metrics tracker owned by this analyzer.
func (a *Analyzer) Metrics() *Tracker {
	return a.metrics
}

// ResetMotion discards the adaptive background model, e.g. after the
// frame source changes scene.
func (a *Analyzer) ResetMotion() {
	a.motion.Reset()
}

// Capabilities lists the primitives and their availability.
func (a *Analyzer) Capabilities() []Capability {
	return []Capability{
		{Name: "face_detection", Available: a.faces.Available(), Kind: "opencv"},
		{Name: "motion_detection", Available: true, Kind: "opencv"},
		{Name: "edge_detection", Available: true, Kind: "opencv"},
		{Name: "corner_detection", Available: true, Kind: "opencv"},
		{Name: "color_analysis", Available: true, Kind: "opencv"},
		{Name: "landmarks", Available: a.landmarks.Available(), Kind: "multi-model"},
	}
}

// Close releases all native resources held by the primitives.
func (a *Analyzer) Close() error {
	var firstErr error
	for _, c := range []func() error{
		a.faces.Close,
		a.motion.Close,
		a.edges.Close,
		a.landmarks.Close,
	} {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
