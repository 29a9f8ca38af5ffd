package middleware

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxVideoIDLen      = 16   // video_snapshots.video_id VARCHAR(16)
	MaxChannelIDLen    = 32   // channel_snapshots.channel_id VARCHAR(32)
	MaxUserIDLen       = 64   // users.user_id VARCHAR(64)
	MaxFeatureLen      = 32   // quota feature names
	MaxThumbnailRefLen = 2048 // URL or content hash
)

var (
	// videoIDRe matches YouTube video IDs: alphanumeric, dash, underscore.
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// channelIDRe matches YouTube channel IDs: alphanumeric, dash, underscore.
	channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// featureRe matches quota feature names: lowercase words joined by dashes.
	featureRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	// hexRe matches lowercase hex strings (content hashes).
	hexRe = regexp.MustCompile(`^[0-9a-f]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoID checks that a video ID is well-formed and within DB limits.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoId is required"
	}
	if len(id) > MaxVideoIDLen {
		return "", "videoId must be at most 16 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "videoId contains invalid characters"
	}
	return id, ""
}

// ValidateChannelID checks that a channel ID is well-formed.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channelId is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channelId must be at most 32 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channelId contains invalid characters"
	}
	return id, ""
}

// ValidateUserID checks that a user ID is within limits. Empty is allowed:
// anonymous callers are quota-tracked by feature alone.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if len(id) > MaxUserIDLen {
		return "", "userId must be at most 64 characters"
	}
	return id, ""
}

// ValidateFeature checks a quota feature name.
func ValidateFeature(name string) (string, string) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return "", "feature is required"
	}
	if len(name) > MaxFeatureLen {
		return "", "feature must be at most 32 characters"
	}
	if !featureRe.MatchString(name) {
		return "", "feature contains invalid characters"
	}
	return name, ""
}

// ValidateThumbnailRef accepts an http(s) URL or a hex content hash.
func ValidateThumbnailRef(ref string) (string, string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "thumbnailRef is required"
	}
	if len(ref) > MaxThumbnailRefLen {
		return "", "thumbnailRef is too long"
	}

	if hexRe.MatchString(strings.ToLower(ref)) && len(ref) >= 32 {
		return ref, ""
	}

	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", "thumbnailRef must be an http(s) URL or a content hash"
	}
	return ref, ""
}
