// Package insights derives preference analytics from recorded battle
// results: which notes, brands, and categories the tester keeps picking.
package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"scentlab/internal/core"
)

const (
	topNotesLimit  = 10
	topBrandsLimit = 5
)

// Repository is the persistence surface the analyzer needs.
type Repository interface {
	AllResults(ctx context.Context) ([]core.TestResult, error)
	FindFragrancesByIDs(ctx context.Context, ids []string) ([]core.Fragrance, error)
}

// FrequencyEntry is one ranked item with its occurrence count.
type FrequencyEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Insights summarizes the tester's picks across all sessions.
type Insights struct {
	TotalSelections  int                      `json:"total_selections"`
	TopNotes         []FrequencyEntry         `json:"top_notes"`
	TopBrands        []FrequencyEntry         `json:"top_brands"`
	CategoryCounts   map[core.CategoryTag]int `json:"category_counts"`
	AvgVersatility   float64                  `json:"avg_versatility"`
	FavoriteCategory core.CategoryTag         `json:"favorite_category,omitempty"`
}

// Analyzer computes preference insights.
type Analyzer struct {
	repo Repository
}

// NewAnalyzer creates an analyzer over the given repository.
func NewAnalyzer(repo Repository) *Analyzer {
	return &Analyzer{repo: repo}
}

// Analyze builds insights from every recorded battle result. With no results
// yet it returns an empty (but non-nil) report.
func (a *Analyzer) Analyze(ctx context.Context) (*Insights, error) {
	results, err := a.repo.AllResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	report := &Insights{CategoryCounts: make(map[core.CategoryTag]int)}

	// Count every pick, including repeat wins of the same fragrance across
	// sessions: repetition is signal here.
	var pickedIDs []string
	for _, r := range results {
		report.CategoryCounts[r.Category] += len(r.SelectedIDs)
		pickedIDs = append(pickedIDs, r.SelectedIDs...)
	}
	report.TotalSelections = len(pickedIDs)
	if report.TotalSelections == 0 {
		return report, nil
	}

	fragrances, err := a.repo.FindFragrancesByIDs(ctx, pickedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected fragrances: %w", err)
	}

	noteCounts := make(map[string]int)
	brandCounts := make(map[string]int)
	var versatilitySum int
	for _, f := range fragrances {
		brandCounts[f.Brand]++
		versatilitySum += f.Versatility
		for _, note := range allNotes(f) {
			noteCounts[strings.ToLower(note)]++
		}
	}

	report.TopNotes = topEntries(noteCounts, topNotesLimit)
	report.TopBrands = topEntries(brandCounts, topBrandsLimit)
	if len(fragrances) > 0 {
		report.AvgVersatility = float64(versatilitySum) / float64(len(fragrances))
	}
	report.FavoriteCategory = favoriteCategory(report.CategoryCounts)

	return report, nil
}

func allNotes(f core.Fragrance) []string {
	notes := make([]string, 0, len(f.TopNotes)+len(f.MiddleNotes)+len(f.BaseNotes))
	notes = append(notes, f.TopNotes...)
	notes = append(notes, f.MiddleNotes...)
	notes = append(notes, f.BaseNotes...)
	return notes
}

// topEntries ranks a frequency map, breaking count ties alphabetically so the
// output is stable.
func topEntries(counts map[string]int, limit int) []FrequencyEntry {
	entries := make([]FrequencyEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, FrequencyEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func favoriteCategory(counts map[core.CategoryTag]int) core.CategoryTag {
	var best core.CategoryTag
	bestCount := 0
	// Walk the fixed order so ties resolve deterministically.
	for _, tag := range core.AllCategories {
		if counts[tag] > bestCount {
			best = tag
			bestCount = counts[tag]
		}
	}
	return best
}
