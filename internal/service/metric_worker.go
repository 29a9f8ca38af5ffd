package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/repository"
)

// MetricWorker listens for PostgreSQL NOTIFY on the 'video_snapshots'
// channel and batches derived-metric recomputation. If 50 snapshots of
// video X land in one window, it recomputes once.
type MetricWorker struct {
	pool        *pgxpool.Pool
	metrics     *MetricsService
	videoRepo   *repository.VideoRepo
	channelRepo *repository.ChannelRepo
	cache       *CacheService
	batchWindow time.Duration

	mu      sync.Mutex
	pending map[string]struct{} // video IDs waiting for recomputation
}

// NewMetricWorker creates a metric recomputation worker.
func NewMetricWorker(pool *pgxpool.Pool, metrics *MetricsService, videoRepo *repository.VideoRepo, channelRepo *repository.ChannelRepo, cache *CacheService) *MetricWorker {
	return &MetricWorker{
		pool:        pool,
		metrics:     metrics,
		videoRepo:   videoRepo,
		channelRepo: channelRepo,
		cache:       cache,
		batchWindow: 5 * time.Second,
		pending:     make(map[string]struct{}),
	}
}

// Start begins listening for video_snapshots notifications and processing
// batches. Returns when ctx is cancelled.
func (w *MetricWorker) Start(ctx context.Context) {
	log.Printf("metric-worker: starting (batch window=%s)", w.batchWindow)

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("metric-worker: stopping (context cancelled)")
				return
			}
			log.Printf("metric-worker: listen error, reconnecting in 5s: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Println("metric-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on video_snapshots,
// and collects notifications into batched windows.
func (w *MetricWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN video_snapshots")
	if err != nil {
		return err
	}
	log.Println("metric-worker: listening on video_snapshots")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		videoID := notification.Payload
		if videoID == "" {
			continue
		}

		w.mu.Lock()
		w.pending[videoID] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set and recomputes metrics.
func (w *MetricWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush drains the pending set and recomputes each video's derived metrics
// against the latest known subscriber count.
func (w *MetricWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	recomputed := 0
	for videoID := range batch {
		if err := w.recompute(ctx, videoID); err != nil {
			log.Printf("metric-worker: recompute error for %s: %v", videoID, err)
			continue
		}
		recomputed++
	}

	if recomputed > 0 {
		log.Printf("metric-worker: batch complete: %d videos recomputed (from %d notifications)",
			recomputed, len(batch))
	}
}

func (w *MetricWorker) recompute(ctx context.Context, videoID string) error {
	record, err := w.videoRepo.FindLatestByVideoID(ctx, videoID)
	if err != nil {
		return err
	}

	subs := record.SubscriberCountAtCapture
	if current, err := w.channelRepo.SubscriberMap(ctx, []string{record.ChannelID}); err == nil {
		if s, ok := current[record.ChannelID]; ok {
			subs = s
		}
	}

	m, diags := w.metrics.Compute(*record, subs)
	if len(diags) > 0 {
		log.Printf("metric-worker: %d data-quality warnings for %s", len(diags), videoID)
	}

	if err := w.videoRepo.UpdateMetrics(ctx, videoID, m); err != nil {
		return err
	}

	// Fresh metrics can change the channel's cached profile ranking context.
	if w.cache != nil {
		if err := w.cache.InvalidateChannel(ctx, record.ChannelID); err != nil {
			log.Printf("metric-worker: cache invalidate error for %s: %v", record.ChannelID, err)
		}
	}
	return nil
}
