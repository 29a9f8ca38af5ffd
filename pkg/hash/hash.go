package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ThumbnailKey derives a stable cache key from a thumbnail reference
// (URL or content hash). Hashing keeps keys bounded regardless of how
// long the source URL is.
func ThumbnailKey(thumbnailRef string) string {
	return SHA256Hex(thumbnailRef)
}

// ShortHash returns the first prefixLen characters of SHA256(input),
// used for log correlation without writing raw identifiers.
func ShortHash(input string, prefixLen int) string {
	full := SHA256Hex(input)
	if prefixLen > len(full) {
		return full
	}
	return full[:prefixLen]
}
