// Package metrics provides a small instrumentation interface with a no-op
// default and an optional Prometheus-backed implementation.
package metrics

import (
	"sync"
	"time"
)

// Recorder is the metrics surface used by the pipeline and the HTTP layer.
type Recorder interface {
	IncArticlesProcessed(success bool)
	ObserveStageSeconds(stage string, seconds float64)
	IncExtractionChunks(success bool)
	AddUnresolvedRelationships(n int)
}

type noopRecorder struct{}

func (noopRecorder) IncArticlesProcessed(bool)           {}
func (noopRecorder) ObserveStageSeconds(string, float64) {}
func (noopRecorder) IncExtractionChunks(bool)            {}
func (noopRecorder) AddUnresolvedRelationships(int)      {}

var (
	recMu    sync.RWMutex
	recorder Recorder = noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder. A nil recorder restores the no-op.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = noopRecorder{}
	}
	recorder = r
}

// TimeStage starts timing a pipeline stage. Call the returned func when the
// stage ends.
//
// Example:
//
//	done := metrics.TimeStage("scrape")
//	article, err := s.Scrape(ctx, url)
//	done()
func TimeStage(stage string) func() {
	start := time.Now()
	return func() {
		Default().ObserveStageSeconds(stage, time.Since(start).Seconds())
	}
}
