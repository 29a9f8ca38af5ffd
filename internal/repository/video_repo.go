package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// InsertSnapshots stores a batch of scored video snapshots and notifies the
// metric worker for each video so recomputation can be batched.
func (r *VideoRepo) InsertSnapshots(ctx context.Context, videos []model.ScoredVideo) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, v := range videos {
		_, err = tx.Exec(ctx, `
			INSERT INTO video_snapshots
				(video_id, channel_id, title, description, view_count, like_count,
				 comment_count, vph, published_at, subscriber_count_at_capture, captured_at,
				 engagement_rate, views_per_subscriber, growth_velocity, explosive_score, metrics_valid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (video_id, captured_at) DO NOTHING`,
			v.Record.VideoID, v.Record.ChannelID, v.Record.Title, v.Record.Description,
			v.Record.ViewCount, v.Record.LikeCount, v.Record.CommentCount, v.Record.VPH,
			v.Record.PublishedAt, v.Record.SubscriberCountAtCapture, v.Record.CapturedAt,
			v.Metrics.EngagementRate, v.Metrics.ViewsPerSubscriber,
			v.Metrics.GrowthVelocity, v.Metrics.ExplosiveScore, v.Metrics.Valid)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `SELECT pg_notify('video_snapshots', $1)`, v.Record.VideoID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListRecent returns the latest snapshot per video captured since the given
// time.
func (r *VideoRepo) ListRecent(ctx context.Context, since time.Time, limit int) ([]model.VideoRecord, error) {
	query := `
		SELECT DISTINCT ON (video_id)
		       video_id, channel_id, title, description, view_count, like_count,
		       comment_count, vph, published_at, subscriber_count_at_capture, captured_at
		FROM video_snapshots
		WHERE captured_at > $1
		ORDER BY video_id, captured_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.VideoRecord
	for rows.Next() {
		var v model.VideoRecord
		err := rows.Scan(
			&v.VideoID, &v.ChannelID, &v.Title, &v.Description, &v.ViewCount,
			&v.LikeCount, &v.CommentCount, &v.VPH, &v.PublishedAt,
			&v.SubscriberCountAtCapture, &v.CapturedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, v)
	}
	return records, rows.Err()
}

// FindLatestByVideoID returns the most recent snapshot for one video.
func (r *VideoRepo) FindLatestByVideoID(ctx context.Context, videoID string) (*model.VideoRecord, error) {
	query := `
		SELECT video_id, channel_id, title, description, view_count, like_count,
		       comment_count, vph, published_at, subscriber_count_at_capture, captured_at
		FROM video_snapshots
		WHERE video_id = $1
		ORDER BY captured_at DESC
		LIMIT 1`

	var v model.VideoRecord
	err := r.pool.QueryRow(ctx, query, videoID).Scan(
		&v.VideoID, &v.ChannelID, &v.Title, &v.Description, &v.ViewCount,
		&v.LikeCount, &v.CommentCount, &v.VPH, &v.PublishedAt,
		&v.SubscriberCountAtCapture, &v.CapturedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateMetrics rewrites the derived metric columns on a video's latest
// snapshot after recomputation.
func (r *VideoRepo) UpdateMetrics(ctx context.Context, videoID string, m model.DerivedMetrics) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE video_snapshots
		SET engagement_rate = $1, views_per_subscriber = $2, growth_velocity = $3,
		    explosive_score = $4, metrics_valid = $5
		WHERE video_id = $6
		  AND captured_at = (SELECT MAX(captured_at) FROM video_snapshots WHERE video_id = $6)`,
		m.EngagementRate, m.ViewsPerSubscriber, m.GrowthVelocity,
		m.ExplosiveScore, m.Valid, videoID)
	return err
}

// GetStats returns aggregate engine statistics across all tables.
func (r *VideoRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM video_snapshots) AS total_snapshots,
			(SELECT COUNT(DISTINCT channel_id) FROM channel_snapshots) AS total_channels,
			(SELECT COUNT(DISTINCT analyzed_at) FROM niche_analyses) AS total_analyses,
			(SELECT COUNT(*) FROM video_snapshots WHERE captured_at > NOW() - INTERVAL '24 hours') AS snapshots_24h`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalSnapshots, &stats.TotalChannels,
		&stats.TotalAnalyses, &stats.SnapshotsLast24h,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
