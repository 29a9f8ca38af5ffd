package service

import (
	"math"
	"sort"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// Saturation weighting: a niche dominated by a few large channels is
// saturated even with modest views; many small channels spread thin are not.
const (
	largeShareWeight  = 60.0
	mediumShareWeight = 25.0
	densityWeight     = 15.0

	// Channel count at which the density term saturates.
	densityChannelsMax = 25.0
)

// Opportunity composite weighting: favors high trend, low saturation, and
// healthy view volume.
const (
	trendWeight      = 40.0
	headroomWeight   = 40.0
	volumeWeight     = 20.0
	volumeViewsLog10 = 7.0 // 10M total views saturates the volume term
)

// OpportunityService computes saturation, trend, and opportunity scores for
// niche candidates and produces the ranked top-N view.
type OpportunityService struct{}

func NewOpportunityService() *OpportunityService {
	return &OpportunityService{}
}

// Score returns a scored copy of the niche. members are the niche's member
// videos, used for the trend cohort comparison; the input group is not
// mutated.
func (s *OpportunityService) Score(niche model.NicheGroup, members []model.ScoredVideo) model.NicheGroup {
	niche.Metrics.SaturationScore = s.SaturationScore(niche.Metrics)
	niche.Metrics.TrendScore = s.TrendScore(members)
	niche.Metrics.OpportunityScore = s.OpportunityScore(niche.Metrics)
	return niche
}

// ScoreAll scores every niche against the batch the aggregation ran over.
func (s *OpportunityService) ScoreAll(niches []model.NicheGroup, videos []model.ScoredVideo) []model.NicheGroup {
	byID := make(map[string]model.ScoredVideo, len(videos))
	for _, v := range videos {
		byID[v.Record.VideoID] = v
	}

	scored := make([]model.NicheGroup, 0, len(niches))
	for _, n := range niches {
		members := make([]model.ScoredVideo, 0, len(n.VideoIDs))
		for _, id := range n.VideoIDs {
			if v, ok := byID[id]; ok {
				members = append(members, v)
			}
		}
		scored = append(scored, s.Score(n, members))
	}
	return scored
}

// SaturationScore is 0-100, increasing with the proportion of established
// channels and with channel density.
func (s *OpportunityService) SaturationScore(m model.NicheMetrics) float64 {
	if m.UniqueChannels == 0 {
		return 0
	}

	unique := float64(m.UniqueChannels)
	largeShare := float64(m.ChannelDistribution.Large) / unique
	mediumShare := float64(m.ChannelDistribution.Medium) / unique
	density := math.Min(unique/densityChannelsMax, 1.0)

	score := largeShare*largeShareWeight + mediumShare*mediumShareWeight + density*densityWeight
	return round2(clamp(score, 0, 100))
}

// TrendScore compares the newer half of the niche's videos against the
// older half by mean VPH, expressed as a signed percentage clamped to
// [-100, 100]. Fewer than two videos gives no signal.
func (s *OpportunityService) TrendScore(members []model.ScoredVideo) float64 {
	if len(members) < 2 {
		return 0
	}

	sorted := make([]model.ScoredVideo, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Record.PublishedAt.Before(sorted[b].Record.PublishedAt)
	})

	mid := len(sorted) / 2
	olderAvg := meanVPH(sorted[:mid])
	newerAvg := meanVPH(sorted[mid:])

	if olderAvg == 0 {
		if newerAvg > 0 {
			return 100
		}
		return 0
	}

	trend := (newerAvg - olderAvg) / olderAvg * 100
	return round2(clamp(trend, -100, 100))
}

// OpportunityScore is the 0-100 composite: monotonically increasing in
// trend, decreasing in saturation, with a log-scaled view volume term.
func (s *OpportunityService) OpportunityScore(m model.NicheMetrics) float64 {
	trendFactor := (m.TrendScore + 100) / 200                        // [-100,100] → [0,1]
	headroomFactor := (100 - m.SaturationScore) / 100                // low saturation → high
	volumeFactor := math.Min(math.Log10(float64(m.TotalViews)+1)/volumeViewsLog10, 1.0)

	score := trendFactor*trendWeight + headroomFactor*headroomWeight + volumeFactor*volumeWeight
	return round2(clamp(score, 0, 100))
}

// Rank orders niches by opportunity descending for a top-N view. Ties break
// by higher trend, then lower saturation, then insertion order (stable).
// topN <= 0 returns the full ranking.
func (s *OpportunityService) Rank(niches []model.NicheGroup, topN int) []model.NicheGroup {
	ranked := make([]model.NicheGroup, len(niches))
	copy(ranked, niches)

	sort.SliceStable(ranked, func(a, b int) bool {
		ma, mb := ranked[a].Metrics, ranked[b].Metrics
		if ma.OpportunityScore != mb.OpportunityScore {
			return ma.OpportunityScore > mb.OpportunityScore
		}
		if ma.TrendScore != mb.TrendScore {
			return ma.TrendScore > mb.TrendScore
		}
		if ma.SaturationScore != mb.SaturationScore {
			return ma.SaturationScore < mb.SaturationScore
		}
		return false
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func meanVPH(videos []model.ScoredVideo) float64 {
	if len(videos) == 0 {
		return 0
	}
	var sum float64
	for _, v := range videos {
		sum += v.Record.VPH
	}
	return sum / float64(len(videos))
}
