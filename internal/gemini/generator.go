// Package gemini builds the summarization prompt, issues the generation
// request to the Gemini API, and defensively extracts the structured summary
// from the model's reply.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/maple-video/maple-backend/internal/domain"
)

// summarySchema is the JSON output shape demanded from the model. Declaring
// it is a request contract, not a guarantee; the reply still goes through
// ParseSummary before anything trusts it.
var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString},
		"summary": {Type: genai.TypeString},
		"keyPoints": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"key_topics": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Main topics covered in the video",
		},
		"target_audience": {
			Type:        genai.TypeString,
			Description: "Intended audience for this video",
		},
	},
	Required: []string{"title", "summary", "keyPoints", "key_topics", "target_audience"},
}

// Generator issues one-shot summarization requests to a Gemini model.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator constructs a Generator for the given API key and model name.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

// Summarize sends a single prompt built from the video metadata and returns
// the raw model reply text. One attempt per call, no retries.
func (g *Generator) Summarize(ctx context.Context, v *domain.VideoDetails) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(v)), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

// buildPrompt embeds the title, description, and duration into the
// summarization request.
func buildPrompt(v *domain.VideoDetails) string {
	return fmt.Sprintf(`Summarize the following YouTube video and provide key topics and target audience:

Title: %s

Description:
%s

Duration: %s

Return a detailed JSON with:
- title: Video title
- summary: Concise summary
- keyPoints: Array of key points
- key_topics: Array of main topics covered in the video
- target_audience: Who this video is intended for
`, v.Title, v.Description, v.Duration)
}
