package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

// UpsertSnapshots stores channel profile snapshots, keeping history per
// capture time.
func (r *ChannelRepo) UpsertSnapshots(ctx context.Context, channels []model.ChannelRecord) error {
	for _, ch := range channels {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO channel_snapshots (channel_id, channel_name, subscriber_count, video_count, captured_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (channel_id, captured_at) DO UPDATE
			SET channel_name = EXCLUDED.channel_name,
			    subscriber_count = EXCLUDED.subscriber_count,
			    video_count = EXCLUDED.video_count`,
			ch.ChannelID, ch.ChannelName, ch.SubscriberCount, ch.VideoCount, ch.CapturedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindLatestByChannelID returns the most recent snapshot for a channel.
func (r *ChannelRepo) FindLatestByChannelID(ctx context.Context, channelID string) (*model.ChannelRecord, error) {
	query := `
		SELECT channel_id, channel_name, subscriber_count, video_count, captured_at
		FROM channel_snapshots
		WHERE channel_id = $1
		ORDER BY captured_at DESC
		LIMIT 1`

	var ch model.ChannelRecord
	err := r.pool.QueryRow(ctx, query, channelID).Scan(
		&ch.ChannelID, &ch.ChannelName, &ch.SubscriberCount, &ch.VideoCount, &ch.CapturedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// SubscriberMap returns the latest known subscriber count per channel.
func (r *ChannelRepo) SubscriberMap(ctx context.Context, channelIDs []string) (map[string]int64, error) {
	if len(channelIDs) == 0 {
		return map[string]int64{}, nil
	}

	query := `
		SELECT DISTINCT ON (channel_id) channel_id, subscriber_count
		FROM channel_snapshots
		WHERE channel_id = ANY($1)
		ORDER BY channel_id, captured_at DESC`

	rows, err := r.pool.Query(ctx, query, channelIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make(map[string]int64, len(channelIDs))
	for rows.Next() {
		var id string
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		subs[id] = count
	}
	return subs, rows.Err()
}
