package service

import (
	"context"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/repository"
)

const fullSyncLimit = 500

// SyncService lets the display layer prime and refresh its local copy of
// the analysis results without re-running any scoring.
type SyncService struct {
	nicheRepo *repository.NicheRepo
}

func NewSyncService(nicheRepo *repository.NicheRepo) *SyncService {
	return &SyncService{nicheRepo: nicheRepo}
}

// DeltaSync returns all niche analysis changes since the given timestamp.
func (s *SyncService) DeltaSync(ctx context.Context, since time.Time) (*model.SyncDeltaResponse, error) {
	changed, err := s.nicheRepo.ListChangedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	entries := make([]model.SyncNicheEntry, 0, len(changed))
	for _, n := range changed {
		entries = append(entries, model.SyncNicheEntry{
			NicheID:          n.ID,
			Name:             n.Name,
			OpportunityScore: n.Metrics.OpportunityScore,
			SaturationScore:  n.Metrics.SaturationScore,
			TrendScore:       n.Metrics.TrendScore,
			Action:           "update",
		})
	}

	return &model.SyncDeltaResponse{
		Niches:        entries,
		SyncTimestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// FullSync returns the complete current analysis result set.
func (s *SyncService) FullSync(ctx context.Context) (*model.SyncFullResponse, error) {
	niches, err := s.nicheRepo.ListLatest(ctx, fullSyncLimit)
	if err != nil {
		return nil, err
	}
	if niches == nil {
		niches = []model.NicheGroup{}
	}

	return &model.SyncFullResponse{
		Niches:      niches,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
