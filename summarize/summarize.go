// Package summarize wraps the Gemini API to produce short summaries and
// category tags for scraped threads.
package summarize

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// AllowedTags is the fixed set of tags the model may assign. Anything
// else in its response is dropped silently.
var AllowedTags = []string{"Scam", "Product Quality", "User Experience"}

// Result holds one summarization outcome.
type Result struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Summarizer calls Gemini to summarize and tag threads.
type Summarizer struct {
	client *genai.Client
	model  string
}

// New creates a Summarizer. An empty apiKey falls back to the
// GEMINI_API_KEY environment variable; an empty model falls back to the
// default.
func New(ctx context.Context, apiKey, model string) (*Summarizer, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if model == "" {
		model = defaultModel
	}

	return &Summarizer{client: client, model: model}, nil
}

// SummarizeAndTag produces a 2-3 sentence summary of a thread plus zero
// or more tags from AllowedTags.
func (s *Summarizer) SummarizeAndTag(ctx context.Context, title, content string) (*Result, error) {
	prompt := fmt.Sprintf(`Summarize the following Reddit thread in 2-3 concise sentences.
Focus on the main issue, question, or story being discussed.
Then assign zero or more of these tags, and only these: %s.

Title: %s

Content: %s

Respond in exactly this format:
SUMMARY: <your summary>
TAGS: <comma-separated tags, or an empty line>`,
		strings.Join(AllowedTags, ", "), title, content)

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	return ParseResponse(text.String()), nil
}

// ParseResponse reads the SUMMARY:/TAGS: line convention out of a model
// response. Unrecognized tags are dropped; when no SUMMARY: line is
// present, the non-prefixed lines stand in for the summary so a slightly
// off-format response still yields something usable.
func ParseResponse(text string) *Result {
	res := &Result{}
	var plain []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			res.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "TAGS:"):
			for _, raw := range strings.Split(strings.TrimPrefix(line, "TAGS:"), ",") {
				if tag := canonicalTag(raw); tag != "" && !contains(res.Tags, tag) {
					res.Tags = append(res.Tags, tag)
				}
			}
		case line != "":
			plain = append(plain, line)
		}
	}

	if res.Summary == "" {
		res.Summary = strings.Join(plain, " ")
	}
	return res
}

// canonicalTag matches a raw tag against AllowedTags case-insensitively,
// returning the canonical spelling or "".
func canonicalTag(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, tag := range AllowedTags {
		if strings.EqualFold(raw, tag) {
			return tag
		}
	}
	return ""
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
