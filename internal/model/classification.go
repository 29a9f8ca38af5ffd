package model

import "time"

// Classification methods, in resolver cascade order.
const (
	MethodCache       = "cache"
	MethodKeyword     = "keyword"
	MethodVisionModel = "vision-model"
)

// Face size categories reported by the vision model.
const (
	FaceSizeNone   = "none"
	FaceSizeSmall  = "small"
	FaceSizeMedium = "medium"
	FaceSizeLarge  = "large"
)

// Heuristic certainty levels. Only a high-certainty verdict terminates the
// resolver cascade; low certainty always escalates to the vision model.
const (
	CertaintyHigh = "high"
	CertaintyLow  = "low"
)

// ClassificationRequest asks whether a channel's content is "dark"
// (faceless). ThumbnailRef is a URL or content hash and doubles as the
// cache key for the result.
type ClassificationRequest struct {
	ThumbnailRef string `json:"thumbnailRef"`
	Title        string `json:"title"`
	ChannelName  string `json:"channelName"`
	Description  string `json:"description,omitempty"`
	UserID       string `json:"userId,omitempty"`
}

// ClassificationResult is the resolver's terminal output. Exactly one
// method labels it. When the verdict is unresolved, HasEnoughData is false,
// IsDark defaults to false and Confidence to 0: an explicit "don't know"
// is never reported as a confident negative.
type ClassificationResult struct {
	IsDark        bool      `json:"isDark"`
	Confidence    int       `json:"confidence"` // 0-100
	HasFace       bool      `json:"hasFace"`
	FaceSize      string    `json:"faceSize"`
	ContentType   string    `json:"contentType,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Method        string    `json:"method"`
	HasEnoughData bool      `json:"hasEnoughData"`
	Timestamp     time.Time `json:"timestamp"`
}

// CacheEntry is a stored classification result with its expiry. Entries are
// immutable once written; expiry-driven recomputes replace them wholesale.
type CacheEntry struct {
	Result    ClassificationResult `json:"result"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// ClassifyResponse is the API response for a classification request,
// echoing the caller's quota status alongside the verdict.
type ClassifyResponse struct {
	Result ClassificationResult `json:"result"`
	Quota  *QuotaStatus         `json:"quota,omitempty"`
}
