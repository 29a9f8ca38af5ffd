package model

import "time"

// VideoRecord is one captured measurement of a video's public counters.
// Records are immutable once captured; re-measuring produces a new record.
type VideoRecord struct {
	VideoID                  string    `json:"videoId"`
	ChannelID                string    `json:"channelId"`
	Title                    string    `json:"title,omitempty"`
	Description              string    `json:"description,omitempty"`
	ViewCount                int64     `json:"viewCount"`
	LikeCount                int64     `json:"likeCount"`
	CommentCount             int64     `json:"commentCount"`
	VPH                      float64   `json:"vph"`
	PublishedAt              time.Time `json:"publishedAt"`
	SubscriberCountAtCapture int64     `json:"subscriberCountAtCapture"`
	CapturedAt               time.Time `json:"capturedAt"`
}

// DerivedMetrics holds the per-video metrics computed from a VideoRecord.
// All fields are finite; computations that would produce NaN or Inf are
// coerced to 0 and reported through diagnostics, with Valid set to false.
type DerivedMetrics struct {
	EngagementRate     float64 `json:"engagementRate"`
	ViewsPerSubscriber float64 `json:"viewsPerSubscriber"`
	VPH                float64 `json:"vph"`
	GrowthVelocity     float64 `json:"growthVelocity"`
	ExplosiveScore     int     `json:"explosiveScore"`
	Valid              bool    `json:"valid"`
}

// Diagnostic codes emitted by the metrics calculator.
const (
	DiagZeroSubscribers = "zero_subscribers"
	DiagNegativeAge     = "negative_age"
	DiagNaNCoerced      = "nan_coerced"
)

// Diagnostic is a structured data-quality warning attached to a computation.
// It names the condition and the field it affected so tests and dashboards
// can assert on the code rather than on log text.
type Diagnostic struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	VideoID string `json:"videoId,omitempty"`
}

// ScoredVideo pairs a record with its derived metrics for aggregation.
type ScoredVideo struct {
	Record  VideoRecord    `json:"record"`
	Metrics DerivedMetrics `json:"metrics"`
}

// SnapshotBatchRequest is the API request body for ingesting video snapshots.
type SnapshotBatchRequest struct {
	Videos   []VideoRecord   `json:"videos"`
	Channels []ChannelRecord `json:"channels,omitempty"`
}

// SnapshotBatchResponse reports what the ingest accepted.
type SnapshotBatchResponse struct {
	Accepted    int          `json:"accepted"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
