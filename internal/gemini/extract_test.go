package gemini

import "testing"

func TestParseSummary_BareJSON(t *testing.T) {
	raw := `{"title":"T","summary":"S","keyPoints":["a","b"],"key_topics":["go"],"target_audience":"developers"}`
	s, ok := ParseSummary(raw)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if s.Title != "T" || s.Summary != "S" {
		t.Fatalf("parsed = %+v", s)
	}
	if len(s.KeyPoints) != 2 || len(s.KeyTopics) != 1 {
		t.Fatalf("lists not decoded: %+v", s)
	}
	if s.TargetAudience != "developers" {
		t.Fatalf("target audience = %q", s.TargetAudience)
	}
}

func TestParseSummary_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"title\":\"T\",\"summary\":\"S\"}\n```"
	s, ok := ParseSummary(raw)
	if !ok {
		t.Fatalf("fenced reply should parse")
	}
	if s.Title != "T" {
		t.Fatalf("Title = %q", s.Title)
	}
}

func TestParseSummary_ProseWrapped(t *testing.T) {
	raw := `Here is the summary you asked for:

{"title":"T","summary":"S","keyPoints":[]}

Let me know if you need anything else.`
	s, ok := ParseSummary(raw)
	if !ok {
		t.Fatalf("prose-wrapped reply should parse via brace extraction")
	}
	if s.Summary != "S" {
		t.Fatalf("Summary = %q", s.Summary)
	}
}

func TestParseSummary_Unusable(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"I cannot summarize this video.",
		`{"unrelated":"fields"}`,
		"{broken json",
	} {
		if _, ok := ParseSummary(raw); ok {
			t.Errorf("ParseSummary(%q) = ok; want failure", raw)
		}
	}
}

func TestParseSummary_NilKeyPointsNormalized(t *testing.T) {
	s, ok := ParseSummary(`{"title":"T","summary":"S"}`)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if s.KeyPoints == nil {
		t.Fatalf("KeyPoints must be non-nil after parse")
	}
}

func TestFallbackSummary(t *testing.T) {
	s := FallbackSummary("Some Video")
	if s.Title != "Some Video" {
		t.Fatalf("Title = %q", s.Title)
	}
	if s.Summary != FallbackSummaryText {
		t.Fatalf("Summary = %q", s.Summary)
	}
	if s.KeyPoints == nil || len(s.KeyPoints) != 0 {
		t.Fatalf("KeyPoints = %v; want empty non-nil", s.KeyPoints)
	}
}
