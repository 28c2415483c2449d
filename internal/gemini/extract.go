// Package gemini – reply extraction.
//
// The model is asked for bare JSON, but replies can still arrive wrapped in
// prose or markdown fences, or be malformed outright. Extraction is a
// fallible parse step returning a tagged (summary, parsed) result; it never
// produces an error, because summarization degradation is non-fatal to the
// request.
package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/maple-video/maple-backend/internal/domain"
)

// FallbackSummaryText is the summary string of the degraded result.
const FallbackSummaryText = "Unable to generate summary"

// jsonObjectRE grabs the first-to-last brace span of a prose-wrapped reply.
var jsonObjectRE = regexp.MustCompile(`(?s)\{.*\}`)

// ParseSummary extracts the structured summary from a raw model reply.
// It tries the reply as-is first, then strips markdown fences and falls back
// to the first {...} span. The second return value reports whether the reply
// parsed; when false, the caller should substitute FallbackSummary.
func ParseSummary(raw string) (*domain.Summary, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, false
	}

	if s, ok := tryParse(text); ok {
		return s, true
	}

	// Models sometimes wrap JSON in ```json fences despite the mime type.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if s, ok := tryParse(text); ok {
		return s, true
	}

	if m := jsonObjectRE.FindString(text); m != "" {
		if s, ok := tryParse(m); ok {
			return s, true
		}
	}
	return nil, false
}

func tryParse(text string) (*domain.Summary, bool) {
	var s domain.Summary
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, false
	}
	// A reply that decodes but carries none of the demanded fields is as
	// useless as a parse failure.
	if s.Title == "" && s.Summary == "" {
		return nil, false
	}
	if s.KeyPoints == nil {
		s.KeyPoints = []string{}
	}
	return &s, true
}

// FallbackSummary is the degraded result used when the reply is unusable:
// the metadata title, a fixed summary string, and no key points.
func FallbackSummary(videoTitle string) domain.Summary {
	return domain.Summary{
		Title:     videoTitle,
		Summary:   FallbackSummaryText,
		KeyPoints: []string{},
	}
}
