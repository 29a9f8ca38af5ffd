package service

import (
	"math"
	"testing"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestCompute_ViralVideo(t *testing.T) {
	svc := NewMetricsService()

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	record := model.VideoRecord{
		VideoID:      "vid00000001",
		ChannelID:    "UCviral",
		ViewCount:    1_000_000,
		LikeCount:    50_000,
		CommentCount: 5_000,
		VPH:          8000,
		PublishedAt:  published,
		CapturedAt:   published.Add(48 * time.Hour),
	}

	m, diags := svc.Compute(record, 20_000)

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !almostEqual(m.EngagementRate, 5.5, 0.001) {
		t.Errorf("engagementRate = %.2f, want 5.50", m.EngagementRate)
	}
	if !almostEqual(m.ViewsPerSubscriber, 50.0, 0.001) {
		t.Errorf("viewsPerSubscriber = %.2f, want 50.00", m.ViewsPerSubscriber)
	}
	// 8000*24/2 days
	if !almostEqual(m.GrowthVelocity, 96_000, 0.5) {
		t.Errorf("growthVelocity = %.0f, want 96000", m.GrowthVelocity)
	}
	// vph 8000/10000*40 = 32, reach capped at 30, engagement 5.5/10*30 = 16.5
	if m.ExplosiveScore != 79 {
		t.Errorf("explosiveScore = %d, want 79", m.ExplosiveScore)
	}
	if !m.Valid {
		t.Error("expected Valid=true for a clean record")
	}
}

func TestCompute_AllSubScoresSaturate(t *testing.T) {
	svc := NewMetricsService()

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	record := model.VideoRecord{
		VideoID:      "vid00000002",
		ChannelID:    "UCmega",
		ViewCount:    2_000_000,
		LikeCount:    200_000,
		CommentCount: 40_000, // 12% engagement, above the 10% ceiling
		VPH:          25_000, // above the 10k ceiling
		PublishedAt:  published,
		CapturedAt:   published.Add(24 * time.Hour),
	}

	// 2M views / 10k subs = 200x, far above the 10x ceiling
	m, _ := svc.Compute(record, 10_000)

	if m.ExplosiveScore != 100 {
		t.Errorf("explosiveScore = %d, want 100 when every sub-score saturates", m.ExplosiveScore)
	}
}

func TestCompute_ExplosiveScoreBounds(t *testing.T) {
	svc := NewMetricsService()

	tests := []struct {
		name   string
		record model.VideoRecord
		subs   int64
	}{
		{"all zero", model.VideoRecord{VideoID: "vidzero"}, 1000},
		{"huge everything", model.VideoRecord{
			VideoID: "vidhuge", ViewCount: 1 << 40, LikeCount: 1 << 39, VPH: 1e9,
		}, 1},
		{"views without likes", model.VideoRecord{VideoID: "vidviews", ViewCount: 500}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := svc.Compute(tt.record, tt.subs)
			if m.ExplosiveScore < 0 || m.ExplosiveScore > 100 {
				t.Errorf("explosiveScore = %d, want within [0,100]", m.ExplosiveScore)
			}
		})
	}
}

func TestCompute_SubscriberClamp(t *testing.T) {
	svc := NewMetricsService()

	record := model.VideoRecord{
		VideoID:   "vidclamp",
		ViewCount: 10_000,
		VPH:       100,
	}

	mZero, diagsZero := svc.Compute(record, 0)
	mOne, diagsOne := svc.Compute(record, 1)

	if mZero.ViewsPerSubscriber != mOne.ViewsPerSubscriber {
		t.Errorf("viewsPerSubscriber with 0 subs = %.2f, with 1 sub = %.2f; want identical",
			mZero.ViewsPerSubscriber, mOne.ViewsPerSubscriber)
	}
	if len(diagsZero) != 1 || diagsZero[0].Code != model.DiagZeroSubscribers {
		t.Errorf("zero subscribers should flag %s, got %v", model.DiagZeroSubscribers, diagsZero)
	}
	if len(diagsOne) != 0 {
		t.Errorf("1 subscriber should not produce diagnostics, got %v", diagsOne)
	}
}

func TestCompute_ZeroViewsZeroEngagement(t *testing.T) {
	svc := NewMetricsService()

	m, _ := svc.Compute(model.VideoRecord{
		VideoID:   "vidnoviews",
		LikeCount: 50, // likes without views: division guard, not a ratio
	}, 1000)

	if m.EngagementRate != 0 {
		t.Errorf("engagementRate = %.2f, want 0 for zero views", m.EngagementRate)
	}
}

func TestCompute_NegativeAge(t *testing.T) {
	svc := NewMetricsService()

	captured := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	record := model.VideoRecord{
		VideoID:     "vidfuture",
		ViewCount:   1000,
		VPH:         200,
		PublishedAt: captured.Add(24 * time.Hour), // published "in the future"
		CapturedAt:  captured,
	}

	m, diags := svc.Compute(record, 1000)

	found := false
	for _, d := range diags {
		if d.Code == model.DiagNegativeAge {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s diagnostic, got %v", model.DiagNegativeAge, diags)
	}
	// Age clamps to 0, so velocity falls back to vph*24
	if !almostEqual(m.GrowthVelocity, 4800, 0.5) {
		t.Errorf("growthVelocity = %.0f, want 4800", m.GrowthVelocity)
	}
}

func TestCompute_NaNCoercion(t *testing.T) {
	svc := NewMetricsService()

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	record := model.VideoRecord{
		VideoID:     "vidnan",
		ViewCount:   1000,
		VPH:         math.NaN(),
		PublishedAt: published,
		CapturedAt:  published.Add(24 * time.Hour),
	}

	m, diags := svc.Compute(record, 1000)

	if m.Valid {
		t.Error("expected Valid=false after NaN coercion")
	}
	if m.VPH != 0 || m.GrowthVelocity != 0 {
		t.Errorf("NaN fields should coerce to 0, got vph=%.2f velocity=%.2f", m.VPH, m.GrowthVelocity)
	}
	if m.ExplosiveScore < 0 || m.ExplosiveScore > 100 {
		t.Errorf("explosiveScore = %d, want within [0,100] even with NaN input", m.ExplosiveScore)
	}

	found := false
	for _, d := range diags {
		if d.Code == model.DiagNaNCoerced && d.VideoID == "vidnan" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s diagnostic, got %v", model.DiagNaNCoerced, diags)
	}
}

func TestComputeBatch_DegradesNotAborts(t *testing.T) {
	svc := NewMetricsService()

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []model.VideoRecord{
		{VideoID: "vidok", ChannelID: "UCa", ViewCount: 5000, VPH: 100,
			PublishedAt: published, CapturedAt: published.Add(24 * time.Hour)},
		{VideoID: "vidbad", ChannelID: "UCb", ViewCount: 5000, VPH: math.Inf(1),
			PublishedAt: published, CapturedAt: published.Add(24 * time.Hour)},
	}
	subscribers := map[string]int64{"UCa": 1000, "UCb": 1000}

	scored, diags := svc.ComputeBatch(records, subscribers)

	if len(scored) != 2 {
		t.Fatalf("scored %d videos, want 2 (bad record must not abort the batch)", len(scored))
	}
	if !scored[0].Metrics.Valid {
		t.Error("clean record should stay valid")
	}
	if scored[1].Metrics.Valid {
		t.Error("infinite-vph record should be flagged invalid")
	}
	if len(diags) == 0 {
		t.Error("expected diagnostics for the bad record")
	}
}

func TestComputeBatch_SubscriberFallback(t *testing.T) {
	svc := NewMetricsService()

	records := []model.VideoRecord{
		{VideoID: "vidfb", ChannelID: "UCmissing", ViewCount: 10_000,
			SubscriberCountAtCapture: 2000},
	}

	scored, _ := svc.ComputeBatch(records, map[string]int64{})

	// Channel absent from the map falls back to the capture-time count
	if !almostEqual(scored[0].Metrics.ViewsPerSubscriber, 5.0, 0.001) {
		t.Errorf("viewsPerSubscriber = %.2f, want 5.00 via capture-time fallback",
			scored[0].Metrics.ViewsPerSubscriber)
	}
}
