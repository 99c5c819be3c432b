package vision

import (
	"image"
	"log/slog"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Cascade model files expected under the model directory.
const (
	faceCascadeFile  = "haarcascade_frontalface_default.xml"
	eyeCascadeFile   = "haarcascade_eye.xml"
	smileCascadeFile = "haarcascade_smile.xml"
)

// Face cascade scan parameters.
const (
	faceScaleFactor  = 1.1
	faceMinNeighbors = 4
	// The smile cascade needs a much coarser scan to avoid false positives.
	smileScaleFactor  = 1.8
	smileMinNeighbors = 20
)

// Face describes one detected face region with its sub-detections.
type Face struct {
	Box         Box     `json:"bbox"`
	EyesCount   int     `json:"eyes_count"`
	Smile       bool    `json:"smile_detected"`
	Area        int     `json:"area"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// FaceDetector finds faces with a Haar cascade and inspects each face
// region for eyes and a smile. Cascades are loaded once at construction;
// a cascade that fails to load is logged once and yields empty results
// for the lifetime of the detector.
type FaceDetector struct {
	face  gocv.CascadeClassifier
	eye   gocv.CascadeClassifier
	smile gocv.CascadeClassifier

	faceOK  bool
	eyeOK   bool
	smileOK bool
}

// NewFaceDetector loads the face, eye and smile cascades from modelDir.
func NewFaceDetector(modelDir string, logger *slog.Logger) *FaceDetector {
	d := &FaceDetector{
		face:  gocv.NewCascadeClassifier(),
		eye:   gocv.NewCascadeClassifier(),
		smile: gocv.NewCascadeClassifier(),
	}

	d.faceOK = d.face.Load(filepath.Join(modelDir, faceCascadeFile))
	d.eyeOK = d.eye.Load(filepath.Join(modelDir, eyeCascadeFile))
	d.smileOK = d.smile.Load(filepath.Join(modelDir, smileCascadeFile))

	if !d.faceOK {
		logger.Warn("face cascade not available, face detection disabled", "dir", modelDir)
	}
	if !d.eyeOK {
		logger.Warn("eye cascade not available, eye counts will be zero", "dir", modelDir)
	}
	if !d.smileOK {
		logger.Warn("smile cascade not available, smile flags will be false", "dir", modelDir)
	}

	return d
}

// Available reports whether the face cascade loaded successfully.
func (d *FaceDetector) Available() bool {
	return d.faceOK
}

// Detect scans the frame for faces. For each face the corresponding
// region is scanned for eyes and an open-smile pattern.
func (d *FaceDetector) Detect(frame *gocv.Mat) []Face {
	if !d.faceOK || frame == nil || frame.Empty() {
		return nil
	}

	gray := grayscale(frame)
	defer gray.Close()

	rects := d.face.DetectMultiScaleWithParams(
		gray, faceScaleFactor, faceMinNeighbors, 0, image.Point{}, image.Point{},
	)

	faces := make([]Face, 0, len(rects))
	for _, r := range rects {
		f := Face{
			Box:  boxFromRect(r),
			Area: r.Dx() * r.Dy(),
		}
		if r.Dy() > 0 {
			f.AspectRatio = float64(r.Dx()) / float64(r.Dy())
		}

		roi := gray.Region(r)
		if d.eyeOK {
			f.EyesCount = len(d.eye.DetectMultiScale(roi))
		}
		if d.smileOK {
			smiles := d.smile.DetectMultiScaleWithParams(
				roi, smileScaleFactor, smileMinNeighbors, 0, image.Point{}, image.Point{},
			)
			f.Smile = len(smiles) > 0
		}
		roi.Close()

		faces = append(faces, f)
	}

	return faces
}

// Close releases the cascade classifiers.
func (d *FaceDetector) Close() error {
	d.face.Close()
	d.eye.Close()
	d.smile.Close()
	d.faceOK = false
	d.eyeOK = false
	d.smileOK = false
	return nil
}
