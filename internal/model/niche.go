package model

import "time"

// Niche specificity levels, broadest to narrowest.
const (
	SpecificityBroad = "broad"
	SpecificitySub   = "sub-niche"
	SpecificityMicro = "micro-niche"
)

// ChannelDistribution counts the unique channels of a niche by size class.
// The three buckets always sum to NicheMetrics.UniqueChannels.
type ChannelDistribution struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// NicheMetrics holds the aggregate statistics of one niche candidate.
type NicheMetrics struct {
	TotalViews          int64               `json:"totalViews"`
	AvgVPH              float64             `json:"avgVph"`
	UniqueChannels      int                 `json:"uniqueChannels"`
	AvgSubscribers      float64             `json:"avgSubscribers"`
	ChannelDistribution ChannelDistribution `json:"channelDistribution"`
	SaturationScore     float64             `json:"saturationScore"` // 0-100
	TrendScore          float64             `json:"trendScore"`      // signed pct, ~[-100, 100]
	OpportunityScore    float64             `json:"opportunityScore"` // 0-100
}

// NicheGroup is an immutable analysis result: a cluster of videos sharing
// topical similarity, with its aggregate metrics. Re-running the analysis
// supersedes the group rather than mutating it.
type NicheGroup struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	VideoIDs    []string     `json:"videoIds"`
	Keywords    []string     `json:"keywords"`
	Specificity string       `json:"specificity"`
	Metrics     NicheMetrics `json:"metrics"`
	AnalyzedAt  time.Time    `json:"analyzedAt"`
}

// FilterSpec selects niches by threshold/range predicates. All active
// predicates are combined with AND; range bounds are inclusive.
type FilterSpec struct {
	MinOpportunityScore float64 `json:"minOpportunityScore"`
	MaxSaturation       float64 `json:"maxSaturation"`
	MinTrendScore       float64 `json:"minTrendScore"`
	MaxCompetitors      int     `json:"maxCompetitors"` // 0 = unbounded
	NicheType           string  `json:"nicheType"`      // all|micro|sub|broad
}

// FilterPreset is a named filter bundle selectable by the display layer.
type FilterPreset struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Spec        FilterSpec `json:"spec"`

	// Video-level preset dimensions (emerging-channel style bundles).
	MinSubscribers int64   `json:"minSubscribers,omitempty"`
	MaxSubscribers int64   `json:"maxSubscribers,omitempty"`
	MinVPH         float64 `json:"minVph,omitempty"`
	MaxVPH         float64 `json:"maxVph,omitempty"`
	MaxAgeDays     int     `json:"maxAgeDays,omitempty"`
	Virality       string  `json:"virality,omitempty"`
}

// AnalysisRequest is the API request body for a niche analysis run.
type AnalysisRequest struct {
	Videos   []VideoRecord   `json:"videos,omitempty"`
	Channels []ChannelRecord `json:"channels,omitempty"`
	Filter   *FilterSpec     `json:"filter,omitempty"`
	TopN     int             `json:"topN,omitempty"`
}

// AnalysisResponse is the API response for a niche analysis run.
type AnalysisResponse struct {
	Niches      []NicheGroup `json:"niches"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	AnalyzedAt  string       `json:"analyzedAt"`
}

// Display-only interpretation bands for saturation.
const (
	SaturationBlueOcean = "blue-ocean" // < 30
	SaturationModerate  = "moderate"   // < 60
	SaturationRedOcean  = "red-ocean"
)

// Display-only interpretation bands for opportunity.
const (
	OpportunityGold   = "gold"   // > 70
	OpportunityMedium = "medium" // > 40
	OpportunityLow    = "low"
)

// SaturationBand maps a saturation score to its interpretation band.
func SaturationBand(score float64) string {
	switch {
	case score < 30:
		return SaturationBlueOcean
	case score < 60:
		return SaturationModerate
	default:
		return SaturationRedOcean
	}
}

// OpportunityBand maps an opportunity score to its interpretation band.
func OpportunityBand(score float64) string {
	switch {
	case score > 70:
		return OpportunityGold
	case score > 40:
		return OpportunityMedium
	default:
		return OpportunityLow
	}
}
