package service

import (
	"sort"
	"strings"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/pkg/hash"
)

const (
	// Minimum members for a keyword cluster to become a niche candidate.
	minNicheMembers = 2

	// Keywords kept per niche.
	maxNicheKeywords = 8

	// Batch-share thresholds for specificity classification.
	broadShare = 0.5
	subShare   = 0.2
)

// stopwords excluded from frequency-based keyword extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"it": true, "this": true, "that": true, "my": true, "your": true,
	"you": true, "i": true, "we": true, "how": true, "what": true, "why": true,
	"new": true, "best": true, "video": true, "youtube": true, "shorts": true,
	"vs": true, "at": true, "by": true, "from": true, "about": true,
}

// NicheService groups scored videos into niche candidates and computes
// niche-level aggregate statistics. Keyword clustering is frequency-based:
// every title/description term shared by enough videos seeds a candidate.
type NicheService struct {
	now func() time.Time
}

func NewNicheService() *NicheService {
	return &NicheService{now: time.Now}
}

func NewNicheServiceAt(now func() time.Time) *NicheService {
	return &NicheService{now: now}
}

// Aggregate builds niche candidates from a batch of scored videos. The
// subscribers map supplies current channel subscriber counts; a channel
// missing from it falls back to the capture-time count on its videos.
func (s *NicheService) Aggregate(videos []model.ScoredVideo, subscribers map[string]int64) []model.NicheGroup {
	if len(videos) == 0 {
		return nil
	}

	// keyword → member indexes, in first-seen keyword order
	members := make(map[string][]int)
	var order []string
	for i, v := range videos {
		for _, kw := range ExtractKeywords(v.Record.Title+" "+v.Record.Description, maxNicheKeywords) {
			if _, seen := members[kw]; !seen {
				order = append(order, kw)
			}
			members[kw] = append(members[kw], i)
		}
	}

	analyzedAt := s.now()
	var niches []model.NicheGroup
	claimed := make(map[int]bool)

	// Largest clusters claim videos first so a video lands in its most
	// representative niche. Keyword order breaks size ties deterministically.
	sort.SliceStable(order, func(a, b int) bool {
		return len(members[order[a]]) > len(members[order[b]])
	})

	for _, kw := range order {
		idx := members[kw]
		var free []int
		for _, i := range idx {
			if !claimed[i] {
				free = append(free, i)
			}
		}
		if len(free) < minNicheMembers {
			continue
		}
		for _, i := range free {
			claimed[i] = true
		}

		group := s.buildGroup(kw, free, videos, subscribers, analyzedAt, len(videos))
		niches = append(niches, group)
	}

	return niches
}

func (s *NicheService) buildGroup(keyword string, idx []int, videos []model.ScoredVideo, subscribers map[string]int64, analyzedAt time.Time, batchSize int) model.NicheGroup {
	var (
		totalViews int64
		vphSum     float64
		videoIDs   []string
		channels   = make(map[string]int64) // channelID → subscriber count
		kwFreq     = make(map[string]int)
	)

	for _, i := range idx {
		v := videos[i]
		videoIDs = append(videoIDs, v.Record.VideoID)
		totalViews += v.Record.ViewCount
		vphSum += v.Record.VPH

		subs, ok := subscribers[v.Record.ChannelID]
		if !ok {
			subs = v.Record.SubscriberCountAtCapture
		}
		channels[v.Record.ChannelID] = subs

		for _, kw := range ExtractKeywords(v.Record.Title, maxNicheKeywords) {
			kwFreq[kw]++
		}
	}

	var dist model.ChannelDistribution
	var subsSum int64
	for _, subs := range channels {
		subsSum += subs
		switch model.SizeClassFor(subs) {
		case model.ChannelSizeSmall:
			dist.Small++
		case model.ChannelSizeMedium:
			dist.Medium++
		default:
			dist.Large++
		}
	}

	unique := len(channels)
	metrics := model.NicheMetrics{
		TotalViews:          totalViews,
		AvgVPH:              vphSum / float64(len(idx)),
		UniqueChannels:      unique,
		AvgSubscribers:      float64(subsSum) / float64(unique),
		ChannelDistribution: dist,
	}

	share := float64(len(idx)) / float64(batchSize)
	specificity := model.SpecificityMicro
	switch {
	case share >= broadShare:
		specificity = model.SpecificityBroad
	case share >= subShare:
		specificity = model.SpecificitySub
	}

	return model.NicheGroup{
		ID:          "niche-" + hash.ShortHash(keyword, 12),
		Name:        keyword,
		VideoIDs:    videoIDs,
		Keywords:    topKeywords(kwFreq, maxNicheKeywords),
		Specificity: specificity,
		Metrics:     metrics,
		AnalyzedAt:  analyzedAt,
	}
}

// ExtractKeywords tokenizes text and returns up to max lowercase terms,
// most frequent first, skipping stopwords and short tokens.
func ExtractKeywords(text string, max int) []string {
	freq := make(map[string]int)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(tok) < 3 || stopwords[tok] {
			continue
		}
		freq[tok]++
	}
	return topKeywords(freq, max)
}

func topKeywords(freq map[string]int, max int) []string {
	keywords := make([]string, 0, len(freq))
	for kw := range freq {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(a, b int) bool {
		if freq[keywords[a]] != freq[keywords[b]] {
			return freq[keywords[a]] > freq[keywords[b]]
		}
		return keywords[a] < keywords[b]
	})
	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}
