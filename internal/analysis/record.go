// Package analysis orchestrates the detector primitives over single
// frames, producing one Record per frame with a composite quality score,
// and keeps rolling statistics across frames.
package analysis

import (
	"errors"
	"time"

	"github.com/asengupta/framesight/internal/vision"
)

// ErrInvalidFrame is returned by Analyze when the input frame is nil,
// empty or has no usable dimensions.
var ErrInvalidFrame = errors.New("invalid frame")

// MaxTransportCorners caps the corner list carried on a Record. The full
// corner count is still reported via CornersCount.
const MaxTransportCorners = 20

// Record is the aggregate result of analyzing one frame. It is created
// fresh per frame and never modified after Analyze returns it.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`

	Faces        []vision.Face        `json:"faces"`
	Motion       vision.MotionSummary `json:"motion"`
	CornersCount int                  `json:"corners_count"`
	Corners      []vision.Point       `json:"corners"`
	Color        vision.ColorSummary  `json:"color_analysis"`
	EdgeDensity  float64              `json:"edge_density"`
	Landmarks    []vision.LandmarkSet `json:"landmarks,omitempty"`

	QualityScore float64 `json:"quality_score"`
	// ProcessingTime covers the analysis and scoring work only.
	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// Capability describes the availability of one detector primitive.
type Capability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Kind      string `json:"type"`
}
