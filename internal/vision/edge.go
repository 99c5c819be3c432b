package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Edge detection parameters.
const (
	// EdgeBlurSize is the Gaussian blur kernel size applied before Canny.
	EdgeBlurSize = 5
	// CannyLowThreshold and CannyHighThreshold are the Canny hysteresis levels.
	CannyLowThreshold  = 50
	CannyHighThreshold = 150
)

// EdgeDetector produces a binary edge map via blur, Canny and a
// thickening dilate pass. It is stateless and safe to reuse.
type EdgeDetector struct {
	kernel gocv.Mat
}

// NewEdgeDetector creates an EdgeDetector.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2)),
	}
}

// Detect returns the binary edge map for the frame.
// The caller is responsible for closing the returned Mat.
func (d *EdgeDetector) Detect(frame *gocv.Mat) gocv.Mat {
	edges := gocv.NewMat()
	if frame == nil || frame.Empty() {
		return edges
	}

	gray := grayscale(frame)
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(EdgeBlurSize, EdgeBlurSize), 0, 0, gocv.BorderDefault)

	gocv.Canny(blurred, &edges, CannyLowThreshold, CannyHighThreshold)
	gocv.Dilate(edges, &edges, d.kernel)

	return edges
}

// Close releases the dilate kernel.
func (d *EdgeDetector) Close() error {
	return d.kernel.Close()
}

// EdgeDensity returns the fraction of lit pixels in a binary edge map.
func EdgeDensity(edges gocv.Mat) float64 {
	if edges.Empty() {
		return 0
	}
	total := edges.Rows() * edges.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(edges)) / float64(total)
}
