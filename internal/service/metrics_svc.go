package service

import (
	"math"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// Explosive score sub-score ceilings. Raw velocity dominates; audience-
// relative reach and engagement each contribute moderately.
const (
	vphCeiling        = 40.0
	reachCeiling      = 30.0
	engagementCeiling = 30.0

	// Normalization denominators: 10k VPH, 10x views/sub, 10% engagement
	// each saturate their sub-score.
	vphSaturation        = 10_000.0
	reachSaturation      = 10.0
	engagementSaturation = 10.0
)

// MetricsService converts one VideoRecord plus its channel's subscriber
// count into derived per-video metrics. It never fails: bad inputs are
// coerced to safe defaults and reported as structured diagnostics so a
// batch is never aborted for one bad record.
type MetricsService struct {
	now func() time.Time
}

func NewMetricsService() *MetricsService {
	return &MetricsService{now: time.Now}
}

// NewMetricsServiceAt creates a calculator with a fixed clock, for tests
// and replayed analysis runs.
func NewMetricsServiceAt(now func() time.Time) *MetricsService {
	return &MetricsService{now: now}
}

// Compute derives the metrics for a single video. subscriberCount is the
// owning channel's current count; zero or negative values are clamped to 1
// and flagged as a data-quality warning.
func (s *MetricsService) Compute(record model.VideoRecord, subscriberCount int64) (model.DerivedMetrics, []model.Diagnostic) {
	var diags []model.Diagnostic

	if subscriberCount < 1 {
		diags = append(diags, model.Diagnostic{
			Code:    model.DiagZeroSubscribers,
			Field:   "subscriberCount",
			VideoID: record.VideoID,
		})
		subscriberCount = 1
	}

	var engagementRate float64
	if record.ViewCount > 0 {
		engagementRate = float64(record.LikeCount+record.CommentCount) / float64(record.ViewCount) * 100
	}
	engagementRate = round2(engagementRate)

	viewsPerSubscriber := round2(float64(record.ViewCount) / float64(subscriberCount))

	days := s.daysSinceUpload(record)
	if days < 0 {
		diags = append(diags, model.Diagnostic{
			Code:    model.DiagNegativeAge,
			Field:   "publishedAt",
			VideoID: record.VideoID,
		})
		days = 0
	}

	growthVelocity := record.VPH * 24
	if days > 0 {
		growthVelocity = (record.VPH * 24) / days
	}
	growthVelocity = math.Round(growthVelocity)

	explosive := math.Round(
		math.Min(record.VPH/vphSaturation*vphCeiling, vphCeiling) +
			math.Min(viewsPerSubscriber/reachSaturation*reachCeiling, reachCeiling) +
			math.Min(engagementRate/engagementSaturation*engagementCeiling, engagementCeiling))
	explosive = clamp(explosive, 0, 100)
	if math.IsNaN(explosive) || math.IsInf(explosive, 0) {
		// NaN propagates through clamp; the offending float field is
		// reported by coerceNonFinite below.
		explosive = 0
	}

	m := model.DerivedMetrics{
		EngagementRate:     engagementRate,
		ViewsPerSubscriber: viewsPerSubscriber,
		VPH:                record.VPH,
		GrowthVelocity:     growthVelocity,
		ExplosiveScore:     int(explosive),
		Valid:              true,
	}

	// Invariant: every metric is finite. Anything that slipped through as
	// NaN/Inf is zeroed and the whole result flagged invalid, but still
	// returned so the batch degrades instead of aborting.
	m, diags = coerceNonFinite(m, record.VideoID, diags)

	return m, diags
}

// ComputeBatch scores a slice of records against a channel subscriber map,
// collecting diagnostics across the whole batch.
func (s *MetricsService) ComputeBatch(records []model.VideoRecord, subscribers map[string]int64) ([]model.ScoredVideo, []model.Diagnostic) {
	scored := make([]model.ScoredVideo, 0, len(records))
	var diags []model.Diagnostic

	for _, r := range records {
		subs := subscribers[r.ChannelID]
		if subs == 0 {
			subs = r.SubscriberCountAtCapture
		}
		m, d := s.Compute(r, subs)
		scored = append(scored, model.ScoredVideo{Record: r, Metrics: m})
		diags = append(diags, d...)
	}
	return scored, diags
}

func (s *MetricsService) daysSinceUpload(record model.VideoRecord) float64 {
	ref := record.CapturedAt
	if ref.IsZero() {
		ref = s.now()
	}
	return ref.Sub(record.PublishedAt).Hours() / 24
}

func coerceNonFinite(m model.DerivedMetrics, videoID string, diags []model.Diagnostic) (model.DerivedMetrics, []model.Diagnostic) {
	fields := []struct {
		name string
		val  *float64
	}{
		{"engagementRate", &m.EngagementRate},
		{"viewsPerSubscriber", &m.ViewsPerSubscriber},
		{"vph", &m.VPH},
		{"growthVelocity", &m.GrowthVelocity},
	}

	for _, f := range fields {
		if math.IsNaN(*f.val) || math.IsInf(*f.val, 0) {
			*f.val = 0
			m.Valid = false
			diags = append(diags, model.Diagnostic{
				Code:    model.DiagNaNCoerced,
				Field:   f.name,
				VideoID: videoID,
			})
		}
	}
	return m, diags
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
