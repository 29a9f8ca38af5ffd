package model

import "time"

// User is an identity record consulted for the admin quota bypass.
type User struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	FirstSeen time.Time `json:"-"`
	LastSeen  time.Time `json:"-"`
}

// SyncNicheEntry represents one niche change in a delta sync response.
type SyncNicheEntry struct {
	NicheID          string  `json:"nicheId"`
	Name             string  `json:"name"`
	OpportunityScore float64 `json:"opportunityScore"`
	SaturationScore  float64 `json:"saturationScore"`
	TrendScore       float64 `json:"trendScore"`
	Action           string  `json:"action"`
}

// SyncDeltaResponse lists niche analysis changes since a timestamp.
type SyncDeltaResponse struct {
	Niches        []SyncNicheEntry `json:"niches"`
	SyncTimestamp string           `json:"syncTimestamp"`
}

// SyncFullResponse is a full dump of the latest analysis results.
type SyncFullResponse struct {
	Niches      []NicheGroup `json:"niches"`
	GeneratedAt string       `json:"generatedAt"`
}
