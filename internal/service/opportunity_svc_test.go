package service

import (
	"testing"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

func TestSaturationScore(t *testing.T) {
	svc := NewOpportunityService()

	tests := []struct {
		name string
		m    model.NicheMetrics
		want float64
	}{
		{
			name: "no channels",
			m:    model.NicheMetrics{},
			want: 0,
		},
		{
			name: "all large, few channels",
			m: model.NicheMetrics{
				UniqueChannels:      2,
				ChannelDistribution: model.ChannelDistribution{Large: 2},
			},
			// largeShare 1.0*60 + density 2/25*15 = 61.2
			want: 61.2,
		},
		{
			name: "all small, few channels",
			m: model.NicheMetrics{
				UniqueChannels:      2,
				ChannelDistribution: model.ChannelDistribution{Small: 2},
			},
			// only the density term: 2/25*15 = 1.2
			want: 1.2,
		},
		{
			name: "mixed, density saturated",
			m: model.NicheMetrics{
				UniqueChannels:      50,
				ChannelDistribution: model.ChannelDistribution{Small: 25, Medium: 15, Large: 10},
			},
			// 0.2*60 + 0.3*25 + 1.0*15 = 34.5
			want: 34.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.SaturationScore(tt.m)
			if !almostEqual(got, tt.want, 0.01) {
				t.Errorf("SaturationScore() = %.2f, want %.2f", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("SaturationScore() = %.2f, want within [0,100]", got)
			}
		})
	}
}

func memberAt(vph float64, publishedAt time.Time) model.ScoredVideo {
	return model.ScoredVideo{
		Record: model.VideoRecord{VPH: vph, PublishedAt: publishedAt},
	}
}

func TestTrendScore(t *testing.T) {
	svc := NewOpportunityService()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		members []model.ScoredVideo
		want    float64
	}{
		{
			name:    "fewer than two videos gives no signal",
			members: []model.ScoredVideo{memberAt(500, base)},
			want:    0,
		},
		{
			name: "accelerating niche",
			members: []model.ScoredVideo{
				memberAt(100, base),
				memberAt(150, base.Add(24*time.Hour)),
			},
			// newer 150 vs older 100 → +50%
			want: 50,
		},
		{
			name: "declining niche",
			members: []model.ScoredVideo{
				memberAt(200, base),
				memberAt(100, base.Add(24*time.Hour)),
			},
			want: -50,
		},
		{
			name: "dormant older cohort with active newer cohort",
			members: []model.ScoredVideo{
				memberAt(0, base),
				memberAt(300, base.Add(24*time.Hour)),
			},
			want: 100,
		},
		{
			name: "entirely dormant",
			members: []model.ScoredVideo{
				memberAt(0, base),
				memberAt(0, base.Add(24*time.Hour)),
			},
			want: 0,
		},
		{
			name: "explosive growth clamps at +100",
			members: []model.ScoredVideo{
				memberAt(10, base),
				memberAt(10_000, base.Add(24*time.Hour)),
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.TrendScore(tt.members)
			if !almostEqual(got, tt.want, 0.01) {
				t.Errorf("TrendScore() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestOpportunityScore_Monotonicity(t *testing.T) {
	svc := NewOpportunityService()

	base := model.NicheMetrics{TotalViews: 100_000, SaturationScore: 50, TrendScore: 0}

	baseScore := svc.OpportunityScore(base)

	higherTrend := base
	higherTrend.TrendScore = 50
	if svc.OpportunityScore(higherTrend) <= baseScore {
		t.Error("opportunity should increase with trend")
	}

	higherSaturation := base
	higherSaturation.SaturationScore = 90
	if svc.OpportunityScore(higherSaturation) >= baseScore {
		t.Error("opportunity should decrease with saturation")
	}

	moreViews := base
	moreViews.TotalViews = 10_000_000
	if svc.OpportunityScore(moreViews) <= baseScore {
		t.Error("opportunity should increase with view volume")
	}
}

func TestOpportunityScore_Bounds(t *testing.T) {
	svc := NewOpportunityService()

	extremes := []model.NicheMetrics{
		{TotalViews: 0, SaturationScore: 100, TrendScore: -100},
		{TotalViews: 1 << 50, SaturationScore: 0, TrendScore: 100},
	}
	for _, m := range extremes {
		got := svc.OpportunityScore(m)
		if got < 0 || got > 100 {
			t.Errorf("OpportunityScore(%+v) = %.2f, want within [0,100]", m, got)
		}
	}
}

func nicheWithScores(id string, opportunity, trend, saturation float64) model.NicheGroup {
	return model.NicheGroup{
		ID: id,
		Metrics: model.NicheMetrics{
			OpportunityScore: opportunity,
			TrendScore:       trend,
			SaturationScore:  saturation,
		},
	}
}

func TestRank_TieBreaks(t *testing.T) {
	svc := NewOpportunityService()

	niches := []model.NicheGroup{
		nicheWithScores("low", 40, 0, 0),
		nicheWithScores("tie-worse-trend", 80, 10, 20),
		nicheWithScores("tie-better-trend", 80, 30, 20),
		nicheWithScores("tie-all-first", 80, 30, 10),
		nicheWithScores("top", 95, 0, 0),
	}

	ranked := svc.Rank(niches, 0)

	wantOrder := []string{"top", "tie-all-first", "tie-better-trend", "tie-worse-trend", "low"}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Errorf("rank[%d] = %q, want %q", i, ranked[i].ID, want)
		}
	}
}

func TestRank_StableOnFullTies(t *testing.T) {
	svc := NewOpportunityService()

	niches := []model.NicheGroup{
		nicheWithScores("first", 50, 10, 10),
		nicheWithScores("second", 50, 10, 10),
		nicheWithScores("third", 50, 10, 10),
	}

	ranked := svc.Rank(niches, 0)

	for i, want := range []string{"first", "second", "third"} {
		if ranked[i].ID != want {
			t.Errorf("full ties must preserve insertion order: rank[%d] = %q, want %q", i, ranked[i].ID, want)
		}
	}
}

func TestRank_TopN(t *testing.T) {
	svc := NewOpportunityService()

	niches := []model.NicheGroup{
		nicheWithScores("a", 90, 0, 0),
		nicheWithScores("b", 80, 0, 0),
		nicheWithScores("c", 70, 0, 0),
	}

	if got := svc.Rank(niches, 2); len(got) != 2 {
		t.Errorf("Rank(topN=2) returned %d niches, want 2", len(got))
	}
	if got := svc.Rank(niches, 0); len(got) != 3 {
		t.Errorf("Rank(topN=0) returned %d niches, want all 3", len(got))
	}
	if got := svc.Rank(niches, 10); len(got) != 3 {
		t.Errorf("Rank(topN>len) returned %d niches, want all 3", len(got))
	}

	// Input order untouched
	if niches[0].ID != "a" || niches[2].ID != "c" {
		t.Error("Rank must not mutate its input slice")
	}
}

func TestScoreAll_AttachesAllThreeScores(t *testing.T) {
	svc := NewOpportunityService()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	videos := []model.ScoredVideo{
		{Record: model.VideoRecord{VideoID: "vid1", VPH: 100, PublishedAt: base, ViewCount: 40_000}},
		{Record: model.VideoRecord{VideoID: "vid2", VPH: 300, PublishedAt: base.Add(24 * time.Hour), ViewCount: 60_000}},
	}
	niches := []model.NicheGroup{{
		ID:       "niche-test",
		VideoIDs: []string{"vid1", "vid2"},
		Metrics: model.NicheMetrics{
			TotalViews:          100_000,
			UniqueChannels:      2,
			ChannelDistribution: model.ChannelDistribution{Small: 2},
		},
	}}

	scored := svc.ScoreAll(niches, videos)

	if len(scored) != 1 {
		t.Fatalf("scored %d niches, want 1", len(scored))
	}
	m := scored[0].Metrics
	if m.TrendScore != 100 {
		t.Errorf("trendScore = %.2f, want 100 for a 3x newer cohort", m.TrendScore)
	}
	if m.SaturationScore <= 0 {
		t.Errorf("saturationScore = %.2f, want > 0 with two channels", m.SaturationScore)
	}
	if m.OpportunityScore <= 0 || m.OpportunityScore > 100 {
		t.Errorf("opportunityScore = %.2f, want within (0,100]", m.OpportunityScore)
	}
	// Input must stay unscored
	if niches[0].Metrics.OpportunityScore != 0 {
		t.Error("ScoreAll must not mutate its input")
	}
}
