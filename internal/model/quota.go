package model

// Quota API status values. Exhaustion is informational only; callers are
// never hard-blocked on it.
const (
	QuotaStatusOK        = "ok"
	QuotaStatusNearLimit = "near_limit"
	QuotaStatusExhausted = "exhausted"
)

// QuotaStatus reports a user's standing against a feature's daily limit.
// Admin identities always report QuotaUsed=0 against an unbounded limit.
type QuotaStatus struct {
	Feature     string  `json:"feature"`
	Date        string  `json:"date"` // calendar day in the reference timezone
	QuotaUsed   int64   `json:"quotaUsed"`
	DailyLimit  int64   `json:"dailyLimit"`
	PercentUsed float64 `json:"percentUsed"`
	APIStatus   string  `json:"apiStatus"`
	IsAdmin     bool    `json:"isAdmin,omitempty"`
}

// StatsResponse is the API response for global engine statistics.
type StatsResponse struct {
	TotalSnapshots   int `json:"totalSnapshots"`
	TotalChannels    int `json:"totalChannels"`
	TotalAnalyses    int `json:"totalAnalyses"`
	SnapshotsLast24h int `json:"snapshotsLast24h"`
}
