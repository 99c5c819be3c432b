package vision

import "gocv.io/x/gocv"

// Corner detection parameters.
const (
	// MaxCorners caps how many point features a single frame can yield.
	MaxCorners        = 100
	cornerQuality     = 0.01
	cornerMinDistance = 10
)

// CornerDetector extracts the strongest distinguishable point features
// of a frame, ranked by the underlying Shi-Tomasi quality measure.
type CornerDetector struct{}

// NewCornerDetector creates a CornerDetector.
func NewCornerDetector() *CornerDetector {
	return &CornerDetector{}
}

// Detect returns up to MaxCorners corner points in pixel coordinates.
func (d *CornerDetector) Detect(frame *gocv.Mat) []Point {
	if frame == nil || frame.Empty() {
		return nil
	}

	gray := grayscale(frame)
	defer gray.Close()

	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(gray, &corners, MaxCorners, cornerQuality, cornerMinDistance)

	points := make([]Point, 0, corners.Rows())
	for i := 0; i < corners.Rows(); i++ {
		v := corners.GetVecfAt(i, 0)
		if len(v) < 2 {
			continue
		}
		points = append(points, Point{X: int(v[0]), Y: int(v[1])})
	}

	return points
}
