package objstore

import (
	"net/url"
	"strings"
)

func escapeSegment(s string) string { return url.PathEscape(s) }

// escapeKey escapes each "/"-separated part of an object key.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
