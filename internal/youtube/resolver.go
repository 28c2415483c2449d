// Package youtube resolves video references from raw URLs and fetches video
// metadata from the YouTube Data API v3.
package youtube

import "regexp"

// videoIDRE matches the watch-URL, short-URL, and shorts-URL forms and
// captures the 11-character video identifier.
var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ResolveVideoID extracts the canonical video identifier from a raw URL.
// The second return value is false when the URL does not reference a video;
// callers must treat that as a rejection and not proceed to fetch.
func ResolveVideoID(rawURL string) (string, bool) {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
