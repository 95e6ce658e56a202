package core

import (
	"strings"
	"time"
)

// Concentration is the strength class of a fragrance.
type Concentration string

const (
	ConcentrationEDT     Concentration = "EDT"
	ConcentrationEDP     Concentration = "EDP"
	ConcentrationParfum  Concentration = "Parfum"
	ConcentrationCologne Concentration = "Cologne"
)

// ParseConcentration normalizes the heterogeneous vocabulary external sources
// use ("eau_de_parfum", "Eau de Toilette", "parfum", ...) into a Concentration.
// Unknown or empty input defaults to EDT.
func ParseConcentration(s string) Concentration {
	lower := strings.ToLower(strings.ReplaceAll(s, "_", " "))
	switch {
	case strings.Contains(lower, "parfum") && !strings.Contains(lower, "eau"):
		return ConcentrationParfum
	case strings.Contains(lower, "edp") || strings.Contains(lower, "eau de parfum"):
		return ConcentrationEDP
	case strings.Contains(lower, "edt") || strings.Contains(lower, "eau de toilette") || strings.Contains(lower, "eau fraiche"):
		return ConcentrationEDT
	case strings.Contains(lower, "cologne"):
		return ConcentrationCologne
	default:
		return ConcentrationEDT
	}
}

// CategoryTag is one of the fixed situational-use labels a fragrance can carry.
type CategoryTag string

const (
	CategoryDailyDriver CategoryTag = "daily_driver"
	CategoryCollege     CategoryTag = "college"
	CategorySummer      CategoryTag = "summer"
	CategoryOffice      CategoryTag = "office"
	CategoryClub        CategoryTag = "club"
	CategoryDate        CategoryTag = "date"
	CategorySignature   CategoryTag = "signature"
	CategoryWinter      CategoryTag = "winter"
	CategorySpecial     CategoryTag = "special"
)

// AllCategories lists every category tag in display order.
var AllCategories = []CategoryTag{
	CategoryDailyDriver,
	CategoryCollege,
	CategorySummer,
	CategoryOffice,
	CategoryClub,
	CategoryDate,
	CategorySignature,
	CategoryWinter,
	CategorySpecial,
}

// ValidCategory reports whether tag is one of the fixed category tags.
func ValidCategory(tag CategoryTag) bool {
	for _, t := range AllCategories {
		if t == tag {
			return true
		}
	}
	return false
}

// Provenance records where a search candidate came from.
type Provenance string

const (
	ProvenanceLocal    Provenance = "local"
	ProvenanceExternal Provenance = "external"
)

// Candidate is an unpersisted fragrance record produced by a lookup source.
// It lives for the duration of one search call; genuinely new candidates get
// enriched and persisted as Fragrance rows by the caching writer.
type Candidate struct {
	Name          string        `json:"name"`
	Brand         string        `json:"brand"`
	Concentration Concentration `json:"concentration"`
	TopNotes      []string      `json:"top_notes"`
	MiddleNotes   []string      `json:"middle_notes"`
	BaseNotes     []string      `json:"base_notes"`
	Description   string        `json:"description,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
	PriceCents    *int64        `json:"price_cents,omitempty"`
	Year          *int          `json:"year,omitempty"`
	Provenance    Provenance    `json:"provenance"`
	SourceTag     string        `json:"source"` // which lookup source produced it
}

// IdentityKey returns the case-insensitive (name, brand) key used for
// deduplication and existence checks.
func (c Candidate) IdentityKey() string {
	return strings.ToLower(strings.TrimSpace(c.Name)) + "|" + strings.ToLower(strings.TrimSpace(c.Brand))
}

// AllNotes returns top, middle, and base notes concatenated in order.
func (c Candidate) AllNotes() []string {
	notes := make([]string, 0, len(c.TopNotes)+len(c.MiddleNotes)+len(c.BaseNotes))
	notes = append(notes, c.TopNotes...)
	notes = append(notes, c.MiddleNotes...)
	notes = append(notes, c.BaseNotes...)
	return notes
}

// Fragrance is a persisted, classified fragrance record.
type Fragrance struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Brand         string        `json:"brand"`
	Concentration Concentration `json:"concentration"`
	TopNotes      []string      `json:"top_notes"`
	MiddleNotes   []string      `json:"middle_notes"`
	BaseNotes     []string      `json:"base_notes"`
	Versatility   int           `json:"versatility"` // integer in [1,5]
	Categories    []CategoryTag `json:"categories"`  // 1..4 tags, never empty
	Description   string        `json:"description,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
	PriceCents    *int64        `json:"price_cents,omitempty"`
	Year          *int          `json:"year,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IdentityKey returns the case-insensitive (name, brand) key.
func (f Fragrance) IdentityKey() string {
	return strings.ToLower(strings.TrimSpace(f.Name)) + "|" + strings.ToLower(strings.TrimSpace(f.Brand))
}

// Candidate converts a persisted fragrance back into the candidate shape used
// by search responses, tagged with local provenance.
func (f Fragrance) Candidate() Candidate {
	return Candidate{
		Name:          f.Name,
		Brand:         f.Brand,
		Concentration: f.Concentration,
		TopNotes:      f.TopNotes,
		MiddleNotes:   f.MiddleNotes,
		BaseNotes:     f.BaseNotes,
		Description:   f.Description,
		ImageURL:      f.ImageURL,
		PriceCents:    f.PriceCents,
		Year:          f.Year,
		Provenance:    ProvenanceLocal,
		SourceTag:     "database",
	}
}

// SourceCounts breaks a search result down by provenance. Counts reflect the
// pre-dedup size of each source's contribution.
type SourceCounts struct {
	Database int `json:"database"`
	External int `json:"external"`
	Total    int `json:"total"`
}

// SearchResult is the orchestrator's answer to one free-text query.
type SearchResult struct {
	Fragrances []Candidate  `json:"fragrances"`
	Source     SourceCounts `json:"source"`
}

// TestSession groups the battle results of one blind-testing run.
type TestSession struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BlindTest   bool      `json:"blind_test"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Completed reports whether the session has been closed out.
func (s TestSession) Completed() bool { return !s.CompletedAt.IsZero() }

// TestResult records the winner(s) of one category battle within a session.
type TestResult struct {
	ID            string      `json:"id"`
	SessionID     string      `json:"session_id"`
	Category      CategoryTag `json:"category"`
	SelectedIDs   []string    `json:"selected_fragrances"`
	MaxSelections int         `json:"max_selections"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Recommendation is a stored AI-generated recommendation for a category.
type Recommendation struct {
	ID         string      `json:"id"`
	Category   CategoryTag `json:"category"`
	Reasoning  string      `json:"reasoning"`
	Confidence float64     `json:"confidence"`
	ModelUsed  string      `json:"model_used"`
	CreatedAt  time.Time   `json:"created_at"`
}
