package service

import (
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// Virality bands over the explosive score, used by video-level presets.
const (
	ViralityHigh  = "high"  // explosive >= 50
	ViralityViral = "viral" // explosive >= 70
	ViralityMega  = "mega"  // explosive >= 90
)

// FilterService applies threshold/range predicates over scored niches and
// videos. Predicates are conjunctive, range bounds inclusive on both ends,
// and filtering preserves the input's relative order.
type FilterService struct {
	presets map[string]model.FilterPreset
	now     func() time.Time
}

func NewFilterService() *FilterService {
	return &FilterService{presets: builtinPresets(), now: time.Now}
}

// DefaultSpec passes every niche: it is the identity filter.
func DefaultSpec() model.FilterSpec {
	return model.FilterSpec{
		MinOpportunityScore: 0,
		MaxSaturation:       100,
		MinTrendScore:       -100,
		MaxCompetitors:      0, // unbounded
		NicheType:           "all",
	}
}

// Apply filters niches to those satisfying every active predicate.
func (s *FilterService) Apply(niches []model.NicheGroup, spec model.FilterSpec) []model.NicheGroup {
	out := make([]model.NicheGroup, 0, len(niches))
	for _, n := range niches {
		if s.matches(n, spec) {
			out = append(out, n)
		}
	}
	return out
}

func (s *FilterService) matches(n model.NicheGroup, spec model.FilterSpec) bool {
	m := n.Metrics
	if m.OpportunityScore < spec.MinOpportunityScore {
		return false
	}
	if m.SaturationScore > spec.MaxSaturation {
		return false
	}
	if m.TrendScore < spec.MinTrendScore {
		return false
	}
	if spec.MaxCompetitors > 0 && m.UniqueChannels > spec.MaxCompetitors {
		return false
	}
	return matchesSpecificity(n.Specificity, spec.NicheType)
}

// matchesSpecificity maps the spec's nicheType to the stored specificity.
// "all" (or empty) bypasses the check entirely.
func matchesSpecificity(specificity, nicheType string) bool {
	switch nicheType {
	case "", "all":
		return true
	case "micro":
		return specificity == model.SpecificityMicro
	case "sub":
		return specificity == model.SpecificitySub
	case "broad":
		return specificity == model.SpecificityBroad
	default:
		return false
	}
}

// ApplyVideos filters scored videos against a preset's video-level
// dimensions (subscriber range, VPH range, age, virality band).
func (s *FilterService) ApplyVideos(videos []model.ScoredVideo, preset model.FilterPreset) []model.ScoredVideo {
	out := make([]model.ScoredVideo, 0, len(videos))
	for _, v := range videos {
		if s.videoMatches(v, preset) {
			out = append(out, v)
		}
	}
	return out
}

func (s *FilterService) videoMatches(v model.ScoredVideo, p model.FilterPreset) bool {
	subs := v.Record.SubscriberCountAtCapture
	if subs < p.MinSubscribers {
		return false
	}
	if p.MaxSubscribers > 0 && subs > p.MaxSubscribers {
		return false
	}
	if v.Record.VPH < p.MinVPH {
		return false
	}
	if p.MaxVPH > 0 && v.Record.VPH > p.MaxVPH {
		return false
	}
	if p.MaxAgeDays > 0 {
		age := s.now().Sub(v.Record.PublishedAt).Hours() / 24
		if age > float64(p.MaxAgeDays) {
			return false
		}
	}
	return viralityMatches(v.Metrics.ExplosiveScore, p.Virality)
}

func viralityMatches(explosive int, band string) bool {
	switch band {
	case "":
		return true
	case ViralityHigh:
		return explosive >= 50
	case ViralityViral:
		return explosive >= 70
	case ViralityMega:
		return explosive >= 90
	default:
		return false
	}
}

// Preset returns a named preset bundle, if defined.
func (s *FilterService) Preset(name string) (model.FilterPreset, bool) {
	p, ok := s.presets[name]
	return p, ok
}

// Presets lists all preset bundles.
func (s *FilterService) Presets() []model.FilterPreset {
	out := make([]model.FilterPreset, 0, len(s.presets))
	for _, name := range []string{"emerging-channels", "blue-ocean", "trending-now"} {
		if p, ok := s.presets[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

func builtinPresets() map[string]model.FilterPreset {
	return map[string]model.FilterPreset{
		"emerging-channels": {
			Name:        "emerging-channels",
			Description: "Fresh videos from micro channels already pulling serious velocity",
			Spec: model.FilterSpec{
				MaxSaturation: 100,
				MinTrendScore: -100,
				NicheType:     "micro",
			},
			MinSubscribers: 0,
			MaxSubscribers: 10_000,
			MinVPH:         1_000,
			MaxVPH:         100_000,
			MaxAgeDays:     7,
			Virality:       ViralityHigh,
		},
		"blue-ocean": {
			Name:        "blue-ocean",
			Description: "Low-saturation niches with positive trend",
			Spec: model.FilterSpec{
				MinOpportunityScore: 40,
				MaxSaturation:       30,
				MinTrendScore:       0,
				NicheType:           "all",
			},
		},
		"trending-now": {
			Name:        "trending-now",
			Description: "Fast-growing niches regardless of saturation",
			Spec: model.FilterSpec{
				MinTrendScore: 25,
				MaxSaturation: 100,
				NicheType:     "all",
			},
		},
	}
}
