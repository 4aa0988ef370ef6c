// Package checksum derives content digests and HTTP entity tags from them.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns a strong entity tag for data: the first 32 hex digits of its
// digest, quoted.
func ETag(data []byte) string {
	return `"` + Sum(data)[:32] + `"`
}

// Match reports whether an If-None-Match header value matches etag. The
// header may list several tags, use weak W/ prefixes, or be "*".
func Match(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
