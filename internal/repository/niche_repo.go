package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

type NicheRepo struct {
	pool *pgxpool.Pool
}

func NewNicheRepo(pool *pgxpool.Pool) *NicheRepo {
	return &NicheRepo{pool: pool}
}

// UpsertNiches persists an analysis run's niche groups. A niche ID seen
// again in a later run replaces the earlier row: runs supersede, never
// mutate.
func (r *NicheRepo) UpsertNiches(ctx context.Context, niches []model.NicheGroup) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, n := range niches {
		metrics, err := json.Marshal(n.Metrics)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO niche_analyses (niche_id, name, specificity, keywords, video_ids, metrics, analyzed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (niche_id) DO UPDATE
			SET name = EXCLUDED.name,
			    specificity = EXCLUDED.specificity,
			    keywords = EXCLUDED.keywords,
			    video_ids = EXCLUDED.video_ids,
			    metrics = EXCLUDED.metrics,
			    analyzed_at = EXCLUDED.analyzed_at`,
			n.ID, n.Name, n.Specificity, n.Keywords, n.VideoIDs, metrics, n.AnalyzedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListChangedSince returns niches re-analyzed after the given time, oldest
// first.
func (r *NicheRepo) ListChangedSince(ctx context.Context, since time.Time) ([]model.NicheGroup, error) {
	query := `
		SELECT niche_id, name, specificity, keywords, video_ids, metrics, analyzed_at
		FROM niche_analyses
		WHERE analyzed_at > $1
		ORDER BY analyzed_at ASC`

	return r.queryNiches(ctx, query, since)
}

// ListLatest returns the current analysis results, best opportunity first.
func (r *NicheRepo) ListLatest(ctx context.Context, limit int) ([]model.NicheGroup, error) {
	query := `
		SELECT niche_id, name, specificity, keywords, video_ids, metrics, analyzed_at
		FROM niche_analyses
		ORDER BY (metrics->>'opportunityScore')::float DESC
		LIMIT $1`

	return r.queryNiches(ctx, query, limit)
}

func (r *NicheRepo) queryNiches(ctx context.Context, query string, args ...interface{}) ([]model.NicheGroup, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var niches []model.NicheGroup
	for rows.Next() {
		var n model.NicheGroup
		var metrics []byte
		err := rows.Scan(&n.ID, &n.Name, &n.Specificity, &n.Keywords, &n.VideoIDs, &metrics, &n.AnalyzedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metrics, &n.Metrics); err != nil {
			return nil, err
		}
		niches = append(niches, n)
	}
	return niches, rows.Err()
}
