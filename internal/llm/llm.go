// Package llm generates fragrance recommendations with Gemini.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/viper"
	"google.golang.org/api/option"

	"scentlab/internal/core"
	"scentlab/internal/insights"
	"scentlab/internal/taxonomy"
)

const (
	// DefaultModel is the default Gemini model used for recommendations.
	DefaultModel = "gemini-1.5-flash"

	// recommendPromptTemplate frames the collection and the tester's
	// preference profile for one category.
	recommendPromptTemplate = `You are a fragrance advisor. Recommend which fragrance the user should reach for in this situation and explain why in 2-3 sentences.

SITUATION: %s (%s)
TYPICAL OCCASIONS: %s

THE USER'S OPTIONS TAGGED FOR THIS SITUATION:
%s

THE USER'S PREFERENCE PROFILE FROM BLIND TESTING:
%s

Answer with the fragrance name first, then the reasoning. Be concrete about notes and performance; no generic advice.`

	// defaultConfidence is attached to stored recommendations. The model
	// reports no calibrated confidence, so a fixed moderate value is used.
	defaultConfidence = 0.8
)

// Client wraps the Gemini API for recommendation generation.
type Client struct {
	apiKey    string
	modelName string
	gClient   *genai.Client
}

// NewClient creates a Gemini-backed recommendation client.
// The API key is resolved from the GEMINI_API_KEY environment variable first,
// then the gemini.api_key config value.
func NewClient(ctx context.Context, modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = viper.GetString("gemini.api_key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	gClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	if c.gClient != nil {
		return c.gClient.Close()
	}
	return nil
}

// RecommendForCategory asks the model which of the tagged fragrances fits the
// category best, given the tester's preference profile.
func (c *Client) RecommendForCategory(ctx context.Context, info taxonomy.CategoryInfo, contenders []core.Fragrance, profile *insights.Insights) (*core.Recommendation, error) {
	if len(contenders) == 0 {
		return nil, fmt.Errorf("no fragrances tagged for category %q", info.Tag)
	}

	prompt := fmt.Sprintf(recommendPromptTemplate,
		info.Title,
		info.Purpose,
		info.Examples,
		formatContenders(contenders),
		formatProfile(profile),
	)

	model := c.gClient.GenerativeModel(c.modelName)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate recommendation: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return &core.Recommendation{
		Category:   info.Tag,
		Reasoning:  text,
		Confidence: defaultConfidence,
		ModelUsed:  c.modelName,
	}, nil
}

func formatContenders(fs []core.Fragrance) string {
	var b strings.Builder
	for _, f := range fs {
		fmt.Fprintf(&b, "- %s by %s (%s), versatility %d/5, notes: %s\n",
			f.Name, f.Brand, f.Concentration, f.Versatility,
			strings.Join(append(append(append([]string{}, f.TopNotes...), f.MiddleNotes...), f.BaseNotes...), ", "))
	}
	return b.String()
}

func formatProfile(p *insights.Insights) string {
	if p == nil || p.TotalSelections == 0 {
		return "No blind-test data recorded yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Selections recorded: %d\n", p.TotalSelections)
	if len(p.TopNotes) > 0 {
		names := make([]string, 0, len(p.TopNotes))
		for _, e := range p.TopNotes {
			names = append(names, e.Name)
		}
		fmt.Fprintf(&b, "Most-picked notes: %s\n", strings.Join(names, ", "))
	}
	if len(p.TopBrands) > 0 {
		names := make([]string, 0, len(p.TopBrands))
		for _, e := range p.TopBrands {
			names = append(names, e.Name)
		}
		fmt.Fprintf(&b, "Most-picked brands: %s\n", strings.Join(names, ", "))
	}
	if p.FavoriteCategory != "" {
		fmt.Fprintf(&b, "Most-tested category: %s\n", p.FavoriteCategory)
	}
	fmt.Fprintf(&b, "Average versatility of picks: %.1f/5\n", p.AvgVersatility)
	return b.String()
}

// responseText flattens the first candidate's text parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
