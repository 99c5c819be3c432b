package analysis

import (
	"math"

	"github.com/asengupta/framesight/internal/vision"
)

// Quality score tuning. The 40/30/30 split and the thresholds are kept
// exactly as tuned in production; they have no meaning beyond reproducing
// the established scoring behavior.
const (
	pointsPerFace     = 10
	faceComponentMax  = 40
	faceSizeBonus     = 5
	faceBonusMinArea  = 50
	faceBonusMaxArea  = 10000
	motionFullPoints  = 30
	motionHalfPoints  = 15
	motionIdealLow    = 0.01
	motionIdealHigh   = 0.3
	edgeFullPoints    = 30
	edgeHalfPoints    = 15
	edgeIdealLow      = 0.1
	edgeIdealHigh     = 0.4
	qualityScoreLimit = 100
)

// QualityScore computes the bounded composite quality heuristic for one
// frame from its primitive outputs. The result is always within [0, 100].
func QualityScore(faces []vision.Face, motion vision.MotionSummary, edgeDensity float64) float64 {
	var score float64

	if len(faces) > 0 {
		faceScore := math.Min(float64(len(faces)*pointsPerFace), faceComponentMax)
		for _, f := range faces {
			if f.Area > faceBonusMinArea && f.Area < faceBonusMaxArea {
				faceScore += faceSizeBonus
			}
		}
		score += math.Min(faceScore, faceComponentMax)
	}

	switch intensity := motion.Intensity; {
	case intensity > motionIdealLow && intensity < motionIdealHigh:
		score += motionFullPoints
	case intensity > 0:
		score += motionHalfPoints
	}

	switch {
	case edgeDensity > edgeIdealLow && edgeDensity < edgeIdealHigh:
		score += edgeFullPoints
	case edgeDensity > 0:
		score += edgeHalfPoints
	}

	return math.Min(score, qualityScoreLimit)
}
