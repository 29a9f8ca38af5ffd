package service

import (
	"context"
	"log"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// AnalysisWorker is a periodic background job that re-runs the niche
// analysis over recent snapshots so stored opportunity scores stay fresh
// between explicit runs.
type AnalysisWorker struct {
	analysis *AnalysisService
	interval time.Duration
	stopCh   chan struct{}
}

// NewAnalysisWorker creates a worker that ticks every interval.
func NewAnalysisWorker(analysis *AnalysisService, interval time.Duration) *AnalysisWorker {
	return &AnalysisWorker{
		analysis: analysis,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic re-analysis loop. It runs one tick immediately,
// then every interval.
func (w *AnalysisWorker) Start(ctx context.Context) {
	log.Printf("analysis-worker: starting (interval=%s)", w.interval)

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("analysis-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("analysis-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *AnalysisWorker) Stop() {
	close(w.stopCh)
}

// tick runs one full analysis over stored snapshots.
func (w *AnalysisWorker) tick(ctx context.Context) {
	start := time.Now()

	resp, err := w.analysis.Run(ctx, model.AnalysisRequest{})
	if err != nil {
		log.Printf("analysis-worker: error: %v", err)
		return
	}

	elapsed := time.Since(start)
	log.Printf("analysis-worker: tick complete — %d niches scored, %d diagnostics (%s)",
		len(resp.Niches), len(resp.Diagnostics), elapsed.Round(time.Millisecond))
}
