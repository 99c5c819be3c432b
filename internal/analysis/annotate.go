package analysis

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

// Overlay colors. gocv maps RGBA to OpenCV's BGR ordering internally.
var (
	colorGood   = color.RGBA{G: 255}                 // smiling faces, high quality
	colorFace   = color.RGBA{B: 255}                 // non-smiling faces
	colorMotion = color.RGBA{R: 255, G: 255}         // motion boxes
	colorCorner = color.RGBA{G: 255, B: 255}         // corner markers
	colorMedium = color.RGBA{R: 255, G: 255}         // mid-tier quality
	colorLow    = color.RGBA{R: 255}                 // low-tier quality
	colorText   = color.RGBA{R: 255, G: 255, B: 255} // timing and timestamp
)

// Quality tiers for the score overlay color.
const (
	qualityGoodThreshold   = 70
	qualityMediumThreshold = 40
)

// Annotate renders the analysis overlays onto a copy of the frame:
// face boxes with eye/smile labels, motion boxes, corner markers, the
// quality score colored by tier, the processing time and the record
// timestamp. The input frame is never modified; the caller owns the
// returned Mat.
func Annotate(frame *gocv.Mat, rec *Record) gocv.Mat {
	out := frame.Clone()
	if rec == nil {
		return out
	}

	for _, f := range rec.Faces {
		c := colorFace
		label := fmt.Sprintf("Eyes: %d", f.EyesCount)
		if f.Smile {
			c = colorGood
			label += " | Smile"
		}
		gocv.Rectangle(&out, f.Box.Rect(), c, 2)
		gocv.PutText(&out, label, image.Pt(f.Box.X, f.Box.Y-10), gocv.FontHersheySimplex, 0.5, c, 1)
	}

	for _, obj := range rec.Motion.Objects {
		gocv.Rectangle(&out, obj.Box.Rect(), colorMotion, 2)
		gocv.PutText(&out, "Motion", image.Pt(obj.Box.X, obj.Box.Y-10), gocv.FontHersheySimplex, 0.5, colorMotion, 1)
	}

	for _, p := range rec.Corners {
		gocv.Circle(&out, image.Pt(p.X, p.Y), 3, colorCorner, -1)
	}

	scoreColor := colorLow
	switch {
	case rec.QualityScore > qualityGoodThreshold:
		scoreColor = colorGood
	case rec.QualityScore > qualityMediumThreshold:
		scoreColor = colorMedium
	}
	gocv.PutText(&out, fmt.Sprintf("Quality: %.1f", rec.QualityScore),
		image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, scoreColor, 2)

	procMS := float64(rec.ProcessingTime) / float64(time.Millisecond)
	gocv.PutText(&out, fmt.Sprintf("Processing: %.1fms", procMS),
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.5, colorText, 1)

	gocv.PutText(&out, rec.Timestamp.Format("2006-01-02 15:04:05"),
		image.Pt(10, rec.Height-10), gocv.FontHersheySimplex, 0.5, colorText, 1)

	return out
}
