// Package vision provides the per-frame detector primitives used by the
// analysis pipeline: Haar-cascade face detection, background-subtraction
// motion segmentation, Canny edge detection, corner feature extraction and
// color histogram statistics. Each primitive wraps GoCV (OpenCV) calls and
// returns an empty result when its underlying model is unavailable.
package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Box is an axis-aligned detection rectangle in pixel coordinates.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// boxFromRect converts an image.Rectangle to a Box.
func boxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the Box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// grayscale returns a single-channel copy of the frame.
// The caller is responsible for closing the returned Mat.
func grayscale(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	return gray
}
