package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/asengupta/framesight/internal/analysis"
	"github.com/asengupta/framesight/internal/capture"
)

// AnalyzeVideo runs the analysis pipeline over a video file and
// returns the clip's metrics summary. Each clip gets a dedicated
// analyzer, so uploaded footage never disturbs the live source's
// motion model or rolling metrics.
func (a *App) AnalyzeVideo(ctx context.Context, path string) (analysis.MetricsSummary, error) {
	var summary analysis.MetricsSummary

	source := capture.NewVideoFile(path)
	if err := source.Open(); err != nil {
		return summary, fmt.Errorf("open video: %w", err)
	}
	defer source.Close()

	analyzer := analysis.New(analysis.Config{
		ModelDir: a.config.ModelDir,
		Logger:   a.logger,
	})
	defer analyzer.Close()

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		frame, err := source.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return summary, fmt.Errorf("read video frame: %w", err)
		}

		_, err = analyzer.Analyze(frame)
		frame.Close()
		if err != nil {
			// Unreadable frames are skipped, matching the live path
			// where a bad capture never aborts the stream.
			continue
		}
	}

	return analyzer.Metrics().Summary(), nil
}
