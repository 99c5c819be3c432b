package vision

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MinMotionArea is the minimum contour area in pixels for a moving
// region to be kept; smaller regions are discarded as noise.
const MinMotionArea = 500

// MotionObject is one moving region found by background subtraction.
type MotionObject struct {
	Box      Box     `json:"bbox"`
	Area     float64 `json:"area"`
	Centroid Point   `json:"centroid"`
}

// MotionSummary aggregates the moving regions of a single frame.
type MotionSummary struct {
	Objects   []MotionObject `json:"objects"`
	TotalArea float64        `json:"total_area"`
	// Intensity is the fraction of the frame area covered by motion.
	Intensity float64 `json:"motion_intensity"`
}

// MotionDetector segments moving regions using an adaptive MOG2
// background model. The model accumulates across calls, so a single
// detector instance must only ever see frames from one source.
type MotionDetector struct {
	subtractor gocv.BackgroundSubtractorMOG2
	kernel     gocv.Mat
	mu         sync.Mutex
}

// NewMotionDetector creates a MotionDetector with a fresh background model.
func NewMotionDetector() *MotionDetector {
	return &MotionDetector{
		subtractor: gocv.NewBackgroundSubtractorMOG2(),
		kernel:     gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3)),
	}
}

// Detect updates the background model with the frame and returns the
// noise-filtered moving regions.
//
// Pipeline:
// 1. Apply MOG2 background subtraction to get a foreground mask
// 2. Morphological open (3x3 ellipse) to suppress speckle noise
// 3. External contour extraction
// 4. Keep contours with area > MinMotionArea
func (m *MotionDetector) Detect(frame *gocv.Mat) MotionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := MotionSummary{Objects: []MotionObject{}}
	if frame == nil || frame.Empty() {
		return summary
	}

	mask := gocv.NewMat()
	defer mask.Close()
	m.subtractor.Apply(*frame, &mask)

	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, m.kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area <= MinMotionArea {
			continue
		}

		r := gocv.BoundingRect(contour)
		summary.Objects = append(summary.Objects, MotionObject{
			Box:      boxFromRect(r),
			Area:     area,
			Centroid: Point{X: r.Min.X + r.Dx()/2, Y: r.Min.Y + r.Dy()/2},
		})
		summary.TotalArea += area
	}

	if total := frame.Rows() * frame.Cols(); total > 0 {
		summary.Intensity = summary.TotalArea / float64(total)
	}

	return summary
}

// Reset discards the accumulated background model, starting fresh on
// the next Detect call.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subtractor.Close()
	m.subtractor = gocv.NewBackgroundSubtractorMOG2()
}

// Close releases the background model and morphology kernel.
func (m *MotionDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.subtractor.Close(); err != nil {
		return err
	}
	return m.kernel.Close()
}
