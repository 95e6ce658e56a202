package store

import (
	"context"
	"errors"
	"testing"

	"scentlab/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleFragrance(name, brand string) *core.Fragrance {
	return &core.Fragrance{
		Name:          name,
		Brand:         brand,
		Concentration: core.ConcentrationEDP,
		TopNotes:      []string{"Bergamot", "Pepper"},
		MiddleNotes:   []string{"Lavender"},
		BaseNotes:     []string{"Ambroxan", "Cedar"},
		Versatility:   4,
		Categories:    []core.CategoryTag{core.CategorySummer, core.CategoryDailyDriver},
	}
}

func TestCreateAndFindFragrance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := sampleFragrance("Sauvage", "Dior")
	if err := s.CreateFragrance(ctx, f); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if f.ID == "" {
		t.Fatal("expected an ID to be assigned")
	}
	if f.CreatedAt.IsZero() || f.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be assigned")
	}

	got, err := s.FindFragranceByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected to find the fragrance")
	}
	if got.Name != "Sauvage" || got.Brand != "Dior" {
		t.Errorf("unexpected identity %q / %q", got.Name, got.Brand)
	}
	if len(got.TopNotes) != 2 || got.TopNotes[0] != "Bergamot" {
		t.Errorf("notes not round-tripped: %v", got.TopNotes)
	}
	if len(got.Categories) != 2 || got.Categories[0] != core.CategorySummer {
		t.Errorf("categories not round-tripped: %v", got.Categories)
	}
	if got.PriceCents != nil {
		t.Errorf("expected nil price, got %d", *got.PriceCents)
	}
}

func TestFindFragranceByIDMiss(t *testing.T) {
	s := newTestStore(t)

	got, err := s.FindFragranceByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown ID, got %+v", got)
	}
}

func TestFindByNameAndBrandCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateFragrance(ctx, sampleFragrance("Aventus", "Creed")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.FindByNameAndBrand(ctx, "aventus", "CREED")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a case-insensitive hit")
	}

	miss, err := s.FindByNameAndBrand(ctx, "aventus", "Dior")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if miss != nil {
		t.Errorf("expected a miss for wrong brand, got %+v", miss)
	}
}

func TestDuplicateIdentityRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateFragrance(ctx, sampleFragrance("Layton", "Parfums de Marly")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := s.CreateFragrance(ctx, sampleFragrance("LAYTON", "parfums de marly"))
	if err == nil {
		t.Fatal("expected the unique constraint to reject a duplicate identity")
	}
	if !errors.Is(err, ErrDuplicateFragrance) {
		t.Errorf("expected ErrDuplicateFragrance, got %v", err)
	}
}

func TestSearchByNameOrBrandRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, f := range []*core.Fragrance{
		sampleFragrance("Dior Homme", "Dior"),  // brand exact
		sampleFragrance("Sauvage", "Dior"),     // brand exact
		sampleFragrance("Dioriffic", "Other"),  // name prefix
		sampleFragrance("Dior", "House"),       // name exact
		sampleFragrance("Grandiose", "Lancome"),
	} {
		if err := s.CreateFragrance(ctx, f); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	results, err := s.SearchByNameOrBrand(ctx, "dior")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(results))
	}
	if results[0].Name != "Dior" {
		t.Errorf("expected exact name match first, got %q", results[0].Name)
	}
	for _, r := range results {
		if r.Name == "Grandiose" {
			t.Error("Grandiose must not match a dior query")
		}
	}
}

func TestSearchLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		f := sampleFragrance("Test Number "+string(rune('A'+i)), "Shared House")
		if err := s.CreateFragrance(ctx, f); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	results, err := s.SearchByNameOrBrand(ctx, "shared")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != searchLimit {
		t.Errorf("expected results capped at %d, got %d", searchLimit, len(results))
	}
}

func TestFindByCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	summer := sampleFragrance("Acqua di Gio", "Giorgio Armani")
	summer.Categories = []core.CategoryTag{core.CategorySummer}
	summer.Versatility = 3

	winter := sampleFragrance("Herod", "Parfums de Marly")
	winter.Categories = []core.CategoryTag{core.CategoryWinter, core.CategoryDate}
	winter.Versatility = 5

	for _, f := range []*core.Fragrance{summer, winter} {
		if err := s.CreateFragrance(ctx, f); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	got, err := s.FindByCategory(ctx, core.CategoryWinter)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Herod" {
		t.Errorf("unexpected winter set: %+v", got)
	}

	got, err = s.FindByCategory(ctx, core.CategoryClub)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no club fragrances, got %d", len(got))
	}
}

func TestFindFragrancesByIDsPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleFragrance("Alpha", "House A")
	b := sampleFragrance("Beta", "House B")
	for _, f := range []*core.Fragrance{a, b} {
		if err := s.CreateFragrance(ctx, f); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	got, err := s.FindFragrancesByIDs(ctx, []string{b.ID, "missing", a.ID})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Name != "Beta" || got[1].Name != "Alpha" {
		t.Errorf("input order not preserved: %q then %q", got[0].Name, got[1].Name)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := &core.TestSession{Name: "Friday blind test", BlindTest: true}
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	got, err := s.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if got == nil || got.Name != "Friday blind test" || !got.BlindTest {
		t.Fatalf("unexpected session %+v", got)
	}
	if got.Completed() {
		t.Error("new session must not be completed")
	}

	result := &core.TestResult{
		SessionID:     session.ID,
		Category:      core.CategoryDailyDriver,
		SelectedIDs:   []string{"frag-1", "frag-2"},
		MaxSelections: 2,
	}
	if err := s.AddResult(ctx, result); err != nil {
		t.Fatalf("add result failed: %v", err)
	}

	results, err := s.SessionResults(ctx, session.ID)
	if err != nil {
		t.Fatalf("session results failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Category != core.CategoryDailyDriver || len(results[0].SelectedIDs) != 2 {
		t.Errorf("result not round-tripped: %+v", results[0])
	}

	if err := s.CompleteSession(ctx, session.ID); err != nil {
		t.Fatalf("complete session failed: %v", err)
	}
	got, _ = s.GetSession(ctx, session.ID)
	if !got.Completed() {
		t.Error("session should be completed")
	}

	if err := s.CompleteSession(ctx, "no-such-session"); err == nil {
		t.Error("expected an error completing an unknown session")
	}
}

func TestRecommendations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, cat := range []core.CategoryTag{core.CategorySummer, core.CategoryWinter} {
		r := &core.Recommendation{
			Category:   cat,
			Reasoning:  "test reasoning",
			Confidence: 0.8,
			ModelUsed:  "gemini-pro",
		}
		if err := s.SaveRecommendation(ctx, r); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	all, err := s.ListRecommendations(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(all))
	}

	summer, err := s.ListRecommendations(ctx, core.CategorySummer)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summer) != 1 || summer[0].Category != core.CategorySummer {
		t.Errorf("unexpected filtered set: %+v", summer)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateFragrance(ctx, sampleFragrance("Sauvage", "Dior")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.FragranceCount != 1 {
		t.Errorf("expected 1 fragrance, got %d", stats.FragranceCount)
	}
	if stats.SessionCount != 0 {
		t.Errorf("expected 0 sessions, got %d", stats.SessionCount)
	}
}
