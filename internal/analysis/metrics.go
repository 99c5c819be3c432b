package analysis

import (
	"sync"
	"time"
)

// MetricsWindowSize is the capacity of the rolling windows used for
// moving averages. Oldest entries are evicted first.
const MetricsWindowSize = 100

// Tracker accumulates per-frame statistics: lifetime counters plus
// bounded windows of recent processing times and quality scores.
type Tracker struct {
	mu              sync.Mutex
	totalFrames     int64
	facesDetected   int64
	objectsDetected int64
	processingTimes []time.Duration
	qualityScores   []float64
}

// MetricsSummary is a point-in-time snapshot of the tracker.
type MetricsSummary struct {
	TotalFrames     int64   `json:"total_frames_processed"`
	FacesDetected   int64   `json:"total_faces_detected"`
	ObjectsDetected int64   `json:"total_objects_detected"`
	AvgProcessingMS float64 `json:"average_processing_time_ms"`
	EstimatedFPS    float64 `json:"estimated_fps"`
	FacesPerFrame   float64 `json:"faces_per_frame"`
	ObjectsPerFrame float64 `json:"objects_per_frame"`
	AvgQualityScore float64 `json:"avg_quality_score"`
	MinQualityScore float64 `json:"min_quality_score"`
	MaxQualityScore float64 `json:"max_quality_score"`
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		processingTimes: make([]time.Duration, 0, MetricsWindowSize),
		qualityScores:   make([]float64, 0, MetricsWindowSize),
	}
}

// Record folds one analysis record into the tracker, evicting the oldest
// window entries once a window exceeds MetricsWindowSize.
func (t *Tracker) Record(rec *Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalFrames++
	t.facesDetected += int64(len(rec.Faces))
	t.objectsDetected += int64(len(rec.Motion.Objects))

	if len(t.processingTimes) >= MetricsWindowSize {
		copy(t.processingTimes, t.processingTimes[1:])
		t.processingTimes = t.processingTimes[:MetricsWindowSize-1]
	}
	t.processingTimes = append(t.processingTimes, rec.ProcessingTime)

	if len(t.qualityScores) >= MetricsWindowSize {
		copy(t.qualityScores, t.qualityScores[1:])
		t.qualityScores = t.qualityScores[:MetricsWindowSize-1]
	}
	t.qualityScores = append(t.qualityScores, rec.QualityScore)
}

// Summary returns the current aggregate statistics. Averages over empty
// windows and empty frame counts are reported as zero.
func (t *Tracker) Summary() MetricsSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := MetricsSummary{
		TotalFrames:     t.totalFrames,
		FacesDetected:   t.facesDetected,
		ObjectsDetected: t.objectsDetected,
	}

	if n := len(t.processingTimes); n > 0 {
		var total time.Duration
		for _, d := range t.processingTimes {
			total += d
		}
		avg := total / time.Duration(n)
		s.AvgProcessingMS = float64(avg) / float64(time.Millisecond)
		if avg > 0 {
			s.EstimatedFPS = float64(time.Second) / float64(avg)
		}
	}

	if n := len(t.qualityScores); n > 0 {
		minQ, maxQ, sum := t.qualityScores[0], t.qualityScores[0], 0.0
		for _, q := range t.qualityScores {
			if q < minQ {
				minQ = q
			}
			if q > maxQ {
				maxQ = q
			}
			sum += q
		}
		s.MinQualityScore = minQ
		s.MaxQualityScore = maxQ
		s.AvgQualityScore = sum / float64(n)
	}

	frames := t.totalFrames
	if frames < 1 {
		frames = 1
	}
	s.FacesPerFrame = float64(t.facesDetected) / float64(frames)
	s.ObjectsPerFrame = float64(t.objectsDetected) / float64(frames)

	return s
}

// Reset zeroes all counters and clears the windows. Summaries already
// handed out are unaffected.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalFrames = 0
	t.facesDetected = 0
	t.objectsDetected = 0
	t.processingTimes = t.processingTimes[:0]
	t.qualityScores = t.qualityScores[:0]
}
