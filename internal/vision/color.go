package vision

import "gocv.io/x/gocv"

const histogramBins = 256

// ColorSummary holds per-channel color statistics for one frame.
// Channel triplets are ordered R, G, B.
type ColorSummary struct {
	DominantColor [3]int  `json:"dominant_color"`
	MeanColor     [3]int  `json:"mean_color"`
	Brightness    float64 `json:"brightness"`
}

// ColorAnalyzer computes histogram-derived color statistics.
// It is stateless; nothing is cached between frames.
type ColorAnalyzer struct{}

// NewColorAnalyzer creates a ColorAnalyzer.
func NewColorAnalyzer() *ColorAnalyzer {
	return &ColorAnalyzer{}
}

// Analyze returns the dominant and mean color per channel plus the
// overall brightness (mean grayscale intensity).
func (a *ColorAnalyzer) Analyze(frame *gocv.Mat) ColorSummary {
	var summary ColorSummary
	if frame == nil || frame.Empty() || frame.Channels() < 3 {
		return summary
	}

	mask := gocv.NewMat()
	defer mask.Close()

	// Frames are BGR; report as RGB.
	dominant := [3]int{}
	for ch := 0; ch < 3; ch++ {
		hist := gocv.NewMat()
		gocv.CalcHist([]gocv.Mat{*frame}, []int{ch}, mask, &hist, []int{histogramBins}, []float64{0, 256}, false)
		dominant[ch] = histArgmax(hist)
		hist.Close()
	}
	summary.DominantColor = [3]int{dominant[2], dominant[1], dominant[0]}

	mean := frame.Mean()
	summary.MeanColor = [3]int{int(mean.Val3), int(mean.Val2), int(mean.Val1)}

	gray := grayscale(frame)
	defer gray.Close()
	summary.Brightness = gray.Mean().Val1

	return summary
}

// histArgmax returns the bin index with the highest count.
func histArgmax(hist gocv.Mat) int {
	best := 0
	bestVal := float32(-1)
	for i := 0; i < hist.Rows(); i++ {
		if v := hist.GetFloatAt(i, 0); v > bestVal {
			bestVal = v
			best = i
		}
	}
	return best
}
