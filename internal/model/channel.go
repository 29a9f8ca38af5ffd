package model

import "time"

// ChannelRecord is a captured snapshot of a channel's public profile.
type ChannelRecord struct {
	ChannelID       string    `json:"channelId"`
	ChannelName     string    `json:"channelName,omitempty"`
	SubscriberCount int64     `json:"subscriberCount"`
	VideoCount      int       `json:"videoCount,omitempty"`
	CapturedAt      time.Time `json:"capturedAt"`
}

// ChannelResponse is the API response for channel profile lookups.
type ChannelResponse struct {
	ChannelID       string `json:"channelId"`
	ChannelName     string `json:"channelName,omitempty"`
	SubscriberCount int64  `json:"subscriberCount"`
	VideoCount      int    `json:"videoCount"`
	SizeClass       string `json:"sizeClass"`
	LastUpdated     string `json:"lastUpdated"`
}

// Channel size classes used by the niche channel distribution.
const (
	ChannelSizeSmall  = "small"  // < 10k subscribers
	ChannelSizeMedium = "medium" // < 100k subscribers
	ChannelSizeLarge  = "large"
)

// Subscriber thresholds for channel size classes.
const (
	SmallChannelMaxSubs  = 10_000
	MediumChannelMaxSubs = 100_000
)

// SizeClassFor buckets a subscriber count into a channel size class.
func SizeClassFor(subscribers int64) string {
	switch {
	case subscribers < SmallChannelMaxSubs:
		return ChannelSizeSmall
	case subscribers < MediumChannelMaxSubs:
		return ChannelSizeMedium
	default:
		return ChannelSizeLarge
	}
}
