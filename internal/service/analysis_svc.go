package service

import (
	"context"
	"log"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/repository"
)

const (
	// Window of stored snapshots pulled when a run supplies no videos.
	storedSnapshotWindow = 7 * 24 * time.Hour
	storedSnapshotLimit  = 5000
)

// AnalysisService runs the full scoring pipeline: derive per-video metrics,
// group into niche candidates, score saturation/trend/opportunity, filter,
// and rank. Results are persisted as the current analysis run.
type AnalysisService struct {
	metrics     *MetricsService
	niches      *NicheService
	opportunity *OpportunityService
	filter      *FilterService
	videoRepo   *repository.VideoRepo
	channelRepo *repository.ChannelRepo
	nicheRepo   *repository.NicheRepo
}

func NewAnalysisService(
	metrics *MetricsService,
	niches *NicheService,
	opportunity *OpportunityService,
	filter *FilterService,
	videoRepo *repository.VideoRepo,
	channelRepo *repository.ChannelRepo,
	nicheRepo *repository.NicheRepo,
) *AnalysisService {
	return &AnalysisService{
		metrics:     metrics,
		niches:      niches,
		opportunity: opportunity,
		filter:      filter,
		videoRepo:   videoRepo,
		channelRepo: channelRepo,
		nicheRepo:   nicheRepo,
	}
}

// Run executes one analysis. When req.Videos is empty, recent stored
// snapshots are analyzed instead. Individual bad records degrade to
// diagnostics; the run completes for every analyzable member.
func (s *AnalysisService) Run(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResponse, error) {
	videos := req.Videos
	if len(videos) == 0 && s.videoRepo != nil {
		stored, err := s.videoRepo.ListRecent(ctx, time.Now().Add(-storedSnapshotWindow), storedSnapshotLimit)
		if err != nil {
			return nil, err
		}
		videos = stored
	}

	subscribers := subscriberMapFrom(req.Channels)
	if s.channelRepo != nil {
		ids := make([]string, 0, len(videos))
		for _, v := range videos {
			if _, ok := subscribers[v.ChannelID]; !ok {
				ids = append(ids, v.ChannelID)
			}
		}
		stored, err := s.channelRepo.SubscriberMap(ctx, ids)
		if err != nil {
			log.Printf("analysis: subscriber lookup error (falling back to capture-time counts): %v", err)
		} else {
			for id, subs := range stored {
				subscribers[id] = subs
			}
		}
	}

	scored, diags := s.metrics.ComputeBatch(videos, subscribers)

	groups := s.niches.Aggregate(scored, subscribers)
	groups = s.opportunity.ScoreAll(groups, scored)

	spec := DefaultSpec()
	if req.Filter != nil {
		spec = *req.Filter
	}
	groups = s.filter.Apply(groups, spec)
	groups = s.opportunity.Rank(groups, req.TopN)

	if s.nicheRepo != nil && len(groups) > 0 {
		if err := s.nicheRepo.UpsertNiches(ctx, groups); err != nil {
			log.Printf("analysis: persist error (results still returned): %v", err)
		}
	}

	if groups == nil {
		groups = []model.NicheGroup{}
	}

	return &model.AnalysisResponse{
		Niches:      groups,
		Diagnostics: diags,
		AnalyzedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// IngestSnapshots scores and stores a telemetry batch, returning the count
// accepted and any data-quality diagnostics.
func (s *AnalysisService) IngestSnapshots(ctx context.Context, req model.SnapshotBatchRequest) (*model.SnapshotBatchResponse, error) {
	// Stamp capture time server-side when the collector omitted it.
	now := time.Now().UTC()
	for i := range req.Videos {
		if req.Videos[i].CapturedAt.IsZero() {
			req.Videos[i].CapturedAt = now
		}
	}
	for i := range req.Channels {
		if req.Channels[i].CapturedAt.IsZero() {
			req.Channels[i].CapturedAt = now
		}
	}

	if s.channelRepo != nil && len(req.Channels) > 0 {
		if err := s.channelRepo.UpsertSnapshots(ctx, req.Channels); err != nil {
			return nil, err
		}
	}

	scored, diags := s.metrics.ComputeBatch(req.Videos, subscriberMapFrom(req.Channels))

	if s.videoRepo != nil && len(scored) > 0 {
		if err := s.videoRepo.InsertSnapshots(ctx, scored); err != nil {
			return nil, err
		}
	}

	return &model.SnapshotBatchResponse{
		Accepted:    len(scored),
		Diagnostics: diags,
	}, nil
}

func subscriberMapFrom(channels []model.ChannelRecord) map[string]int64 {
	subs := make(map[string]int64, len(channels))
	for _, ch := range channels {
		subs[ch.ChannelID] = ch.SubscriberCount
	}
	return subs
}
