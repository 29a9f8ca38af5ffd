package service

import (
	"testing"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

func scoredVideo(videoID, channelID, title string, views int64, subsAtCapture int64) model.ScoredVideo {
	return model.ScoredVideo{
		Record: model.VideoRecord{
			VideoID:                  videoID,
			ChannelID:                channelID,
			Title:                    title,
			ViewCount:                views,
			VPH:                      100,
			SubscriberCountAtCapture: subsAtCapture,
		},
		Metrics: model.DerivedMetrics{Valid: true},
	}
}

func TestAggregate_ChannelDistribution(t *testing.T) {
	svc := NewNicheService()

	// 3 videos, 2 unique channels: one small (5k subs), one large (2M subs)
	videos := []model.ScoredVideo{
		scoredVideo("vid1", "UCsmall", "minecraft survival base", 1000, 0),
		scoredVideo("vid2", "UCsmall", "minecraft hardcore challenge", 2000, 0),
		scoredVideo("vid3", "UClarge", "minecraft speedrun record", 3000, 0),
	}
	subscribers := map[string]int64{
		"UCsmall": 5_000,
		"UClarge": 2_000_000,
	}

	niches := svc.Aggregate(videos, subscribers)

	if len(niches) == 0 {
		t.Fatal("expected at least one niche from a shared keyword")
	}
	n := niches[0]

	if n.Metrics.UniqueChannels != 2 {
		t.Errorf("uniqueChannels = %d, want 2", n.Metrics.UniqueChannels)
	}
	dist := n.Metrics.ChannelDistribution
	if dist.Small != 1 || dist.Medium != 0 || dist.Large != 1 {
		t.Errorf("channelDistribution = {small:%d, medium:%d, large:%d}, want {small:1, medium:0, large:1}",
			dist.Small, dist.Medium, dist.Large)
	}
	if dist.Small+dist.Medium+dist.Large != n.Metrics.UniqueChannels {
		t.Errorf("distribution sum %d != uniqueChannels %d",
			dist.Small+dist.Medium+dist.Large, n.Metrics.UniqueChannels)
	}
	if n.Metrics.TotalViews != 6000 {
		t.Errorf("totalViews = %d, want 6000", n.Metrics.TotalViews)
	}
}

func TestAggregate_DistributionSumInvariant(t *testing.T) {
	svc := NewNicheService()

	videos := []model.ScoredVideo{
		scoredVideo("vid1", "UCa", "chess opening tricks", 100, 500),
		scoredVideo("vid2", "UCb", "chess endgame tricks", 100, 50_000),
		scoredVideo("vid3", "UCc", "chess puzzle rush", 100, 500_000),
		scoredVideo("vid4", "UCd", "cooking pasta tutorial", 100, 1_000),
		scoredVideo("vid5", "UCe", "cooking steak tutorial", 100, 9_000_000),
	}

	niches := svc.Aggregate(videos, nil)

	if len(niches) < 2 {
		t.Fatalf("expected at least 2 niches, got %d", len(niches))
	}
	for _, n := range niches {
		d := n.Metrics.ChannelDistribution
		if d.Small+d.Medium+d.Large != n.Metrics.UniqueChannels {
			t.Errorf("niche %q: distribution sum %d != uniqueChannels %d",
				n.Name, d.Small+d.Medium+d.Large, n.Metrics.UniqueChannels)
		}
	}
}

func TestAggregate_SingletonKeywordIsNotANiche(t *testing.T) {
	svc := NewNicheService()

	videos := []model.ScoredVideo{
		scoredVideo("vid1", "UCa", "quantum computing explained", 100, 100),
		scoredVideo("vid2", "UCb", "medieval blacksmithing basics", 100, 100),
	}

	niches := svc.Aggregate(videos, nil)

	if len(niches) != 0 {
		t.Errorf("expected no niches when no keyword is shared, got %d", len(niches))
	}
}

func TestAggregate_VideoClaimedOnce(t *testing.T) {
	svc := NewNicheService()

	// All videos share "guitar"; two also share "blues". The larger cluster
	// claims everything, so "blues" has no free members left.
	videos := []model.ScoredVideo{
		scoredVideo("vid1", "UCa", "guitar blues lesson", 100, 100),
		scoredVideo("vid2", "UCb", "guitar blues jam", 100, 100),
		scoredVideo("vid3", "UCc", "guitar chord practice", 100, 100),
	}

	niches := svc.Aggregate(videos, nil)

	seen := make(map[string]bool)
	for _, n := range niches {
		for _, id := range n.VideoIDs {
			if seen[id] {
				t.Errorf("video %s appears in more than one niche", id)
			}
			seen[id] = true
		}
	}
}

func TestAggregate_Specificity(t *testing.T) {
	svc := NewNicheService()

	// 4 of 4 videos share "fitness" → share 1.0 → broad
	videos := []model.ScoredVideo{
		scoredVideo("vid1", "UCa", "fitness morning routine", 100, 100),
		scoredVideo("vid2", "UCb", "fitness diet plan", 100, 100),
		scoredVideo("vid3", "UCc", "fitness home workout", 100, 100),
		scoredVideo("vid4", "UCd", "fitness recovery tips", 100, 100),
	}

	niches := svc.Aggregate(videos, nil)
	if len(niches) == 0 {
		t.Fatal("expected a niche")
	}
	if niches[0].Specificity != model.SpecificityBroad {
		t.Errorf("specificity = %q, want %q for a full-batch cluster", niches[0].Specificity, model.SpecificityBroad)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	svc := NewNicheService()
	if niches := svc.Aggregate(nil, nil); len(niches) != 0 {
		t.Errorf("expected no niches for empty input, got %d", len(niches))
	}
}

func TestAggregate_StableIDs(t *testing.T) {
	svc := NewNicheService()

	videos := []model.ScoredVideo{
		scoredVideo("vid1", "UCa", "woodworking bench build", 100, 100),
		scoredVideo("vid2", "UCb", "woodworking joinery guide", 100, 100),
	}

	first := svc.Aggregate(videos, nil)
	second := svc.Aggregate(videos, nil)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected exactly one niche per run, got %d and %d", len(first), len(second))
	}
	if first[0].ID != second[0].ID {
		t.Errorf("niche ID not stable across runs: %q vs %q", first[0].ID, second[0].ID)
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "stopwords and short tokens dropped",
			text: "How to Fix a PC in 5 Minutes",
			want: []string{"fix", "minutes"},
		},
		{
			name: "frequency wins, alphabetical tie-break",
			text: "cats cats dogs birds",
			want: []string{"cats", "birds", "dogs"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text, 8)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractKeywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractKeywords(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}
