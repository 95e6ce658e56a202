package insights

import (
	"context"
	"testing"

	"scentlab/internal/core"
)

type fakeRepo struct {
	results    []core.TestResult
	fragrances map[string]core.Fragrance
}

func (r *fakeRepo) AllResults(_ context.Context) ([]core.TestResult, error) {
	return r.results, nil
}

func (r *fakeRepo) FindFragrancesByIDs(_ context.Context, ids []string) ([]core.Fragrance, error) {
	var out []core.Fragrance
	for _, id := range ids {
		if f, ok := r.fragrances[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func TestAnalyzeEmpty(t *testing.T) {
	a := NewAnalyzer(&fakeRepo{fragrances: map[string]core.Fragrance{}})

	report, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalSelections != 0 {
		t.Errorf("expected 0 selections, got %d", report.TotalSelections)
	}
	if len(report.TopNotes) != 0 || len(report.TopBrands) != 0 {
		t.Error("expected empty rankings")
	}
}

func TestAnalyze(t *testing.T) {
	repo := &fakeRepo{
		fragrances: map[string]core.Fragrance{
			"sauvage": {
				ID: "sauvage", Brand: "Dior", Versatility: 5,
				TopNotes:  []string{"Bergamot", "Pepper"},
				BaseNotes: []string{"Ambroxan"},
			},
			"homme": {
				ID: "homme", Brand: "Dior", Versatility: 3,
				TopNotes:    []string{"Lavender"},
				MiddleNotes: []string{"Iris"},
			},
			"aventus": {
				ID: "aventus", Brand: "Creed", Versatility: 4,
				TopNotes: []string{"Bergamot", "Pineapple"},
			},
		},
		results: []core.TestResult{
			{Category: core.CategorySummer, SelectedIDs: []string{"sauvage", "aventus"}},
			{Category: core.CategoryOffice, SelectedIDs: []string{"homme"}},
			{Category: core.CategorySummer, SelectedIDs: []string{"sauvage"}},
		},
	}

	report, err := NewAnalyzer(repo).Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalSelections != 4 {
		t.Errorf("expected 4 selections, got %d", report.TotalSelections)
	}
	if report.CategoryCounts[core.CategorySummer] != 3 || report.CategoryCounts[core.CategoryOffice] != 1 {
		t.Errorf("unexpected category counts %+v", report.CategoryCounts)
	}
	if report.FavoriteCategory != core.CategorySummer {
		t.Errorf("expected summer as favorite, got %q", report.FavoriteCategory)
	}

	// Bergamot appears in sauvage (picked twice) and aventus.
	if len(report.TopNotes) == 0 || report.TopNotes[0].Name != "bergamot" || report.TopNotes[0].Count != 3 {
		t.Errorf("unexpected top notes %+v", report.TopNotes)
	}

	// Dior carries three picks (sauvage twice, homme once).
	if len(report.TopBrands) == 0 || report.TopBrands[0].Name != "Dior" || report.TopBrands[0].Count != 3 {
		t.Errorf("unexpected top brands %+v", report.TopBrands)
	}

	// (5 + 4 + 3 + 5) / 4
	if report.AvgVersatility != 4.25 {
		t.Errorf("expected avg versatility 4.25, got %v", report.AvgVersatility)
	}
}

func TestTopEntriesStableOrder(t *testing.T) {
	entries := topEntries(map[string]int{"vanilla": 2, "amber": 2, "musk": 1}, 2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Equal counts break alphabetically.
	if entries[0].Name != "amber" || entries[1].Name != "vanilla" {
		t.Errorf("unexpected order %+v", entries)
	}
}
