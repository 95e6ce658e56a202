package lookup

import (
	"context"
	"strings"

	"scentlab/internal/core"
	"scentlab/internal/logger"
)

// StaticSource is the last link in the external lookup chain. It serves a
// small curated catalogue of well-known fragrances so that a search never
// comes back empty-handed when every network-backed source is down.
type StaticSource struct {
	catalogue []core.Candidate
}

// NewStaticSource creates the embedded-catalogue source.
func NewStaticSource() *StaticSource {
	return &StaticSource{catalogue: builtinCatalogue()}
}

// Name returns the source tag for this provider.
func (s *StaticSource) Name() string { return string(SourceTypeStatic) }

// Search filters the catalogue by case-insensitive substring match against
// name and brand. It never fails.
func (s *StaticSource) Search(_ context.Context, query string) ([]core.Candidate, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	var results []core.Candidate
	for _, c := range s.catalogue {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Brand), q) {
			results = append(results, c)
		}
	}
	logger.Info("static catalogue search", "query", query, "results", len(results))
	return results, nil
}

// Catalogue returns a copy of the full embedded catalogue.
func (s *StaticSource) Catalogue() []core.Candidate {
	out := make([]core.Candidate, len(s.catalogue))
	copy(out, s.catalogue)
	return out
}

func intPtr(v int) *int { return &v }

func builtinCatalogue() []core.Candidate {
	entries := []struct {
		name, brand   string
		concentration core.Concentration
		top, mid, bas []string
		year          int
	}{
		{"Sauvage", "Dior", core.ConcentrationEDT,
			[]string{"Calabrian Bergamot", "Pepper"},
			[]string{"Sichuan Pepper", "Lavender", "Pink Pepper"},
			[]string{"Ambroxan", "Cedar", "Labdanum"}, 2015},
		{"Bleu de Chanel", "Chanel", core.ConcentrationEDP,
			[]string{"Grapefruit", "Lemon", "Mint"},
			[]string{"Ginger", "Nutmeg", "Jasmine"},
			[]string{"Incense", "Cedar", "Sandalwood"}, 2014},
		{"Aventus", "Creed", core.ConcentrationEDP,
			[]string{"Pineapple", "Bergamot", "Black Currant"},
			[]string{"Birch", "Patchouli", "Moroccan Jasmine"},
			[]string{"Musk", "Oak Moss", "Ambergris"}, 2010},
		{"La Vie Est Belle", "Lancome", core.ConcentrationEDP,
			[]string{"Black Currant", "Pear"},
			[]string{"Iris", "Jasmine", "Orange Blossom"},
			[]string{"Praline", "Vanilla", "Patchouli"}, 2012},
		{"Acqua di Gio", "Giorgio Armani", core.ConcentrationEDT,
			[]string{"Lime", "Lemon", "Bergamot"},
			[]string{"Jasmine", "Calone", "Peach"},
			[]string{"White Musk", "Cedar", "Oak Moss"}, 1996},
		{"Black Opium", "Yves Saint Laurent", core.ConcentrationEDP,
			[]string{"Pear", "Pink Pepper", "Orange Blossom"},
			[]string{"Coffee", "Jasmine", "Bitter Almond"},
			[]string{"Vanilla", "Patchouli", "Cedar"}, 2014},
		{"Oud Wood", "Tom Ford", core.ConcentrationEDP,
			[]string{"Rosewood", "Cardamom"},
			[]string{"Oud", "Sandalwood", "Vetiver"},
			[]string{"Tonka Bean", "Vanilla", "Amber"}, 2007},
		{"Good Girl", "Carolina Herrera", core.ConcentrationEDP,
			[]string{"Almond", "Coffee"},
			[]string{"Tuberose", "Jasmine Sambac"},
			[]string{"Tonka Bean", "Cacao", "Vanilla"}, 2016},
		{"Layton", "Parfums de Marly", core.ConcentrationEDP,
			[]string{"Apple", "Lavender", "Bergamot"},
			[]string{"Geranium", "Violet", "Jasmine"},
			[]string{"Vanilla", "Cardamom", "Sandalwood"}, 2016},
		{"Pegasus", "Parfums de Marly", core.ConcentrationEDP,
			[]string{"Bergamot", "Heliotrope", "Cumin"},
			[]string{"Bitter Almond", "Jasmine", "Lavender"},
			[]string{"Vanilla", "Sandalwood", "Amber"}, 2011},
		{"Herod", "Parfums de Marly", core.ConcentrationEDP,
			[]string{"Cinnamon", "Pepper"},
			[]string{"Tobacco Leaf", "Incense", "Osmanthus"},
			[]string{"Vanilla", "Cedar", "Musk"}, 2012},
		{"Sedley", "Parfums de Marly", core.ConcentrationEDP,
			[]string{"Bergamot", "Spearmint", "Watery Notes"},
			[]string{"Geranium", "Lavender", "Sage"},
			[]string{"Cedar", "Sandalwood", "Musk"}, 2019},
		{"Carlisle", "Parfums de Marly", core.ConcentrationEDP,
			[]string{"Green Apple", "Bergamot", "Pepper"},
			[]string{"Patchouli", "Jasmine", "Rose"},
			[]string{"Vanilla", "Amber", "Oak Moss"}, 2015},
		{"Percival", "Parfums de Marly", core.ConcentrationEDP,
			[]string{"Bergamot", "Mandarin", "Lavender"},
			[]string{"Geranium", "Violet", "Clary Sage"},
			[]string{"Ambroxan", "Musk", "Tonka Bean"}, 2018},
		{"Galloway", "Parfums de Marly", core.ConcentrationEDP,
			[]string{"Bergamot", "Lemon", "Pink Pepper"},
			[]string{"Orange Blossom", "Iris"},
			[]string{"Ambergris", "Musk", "Vanilla"}, 2013},
	}

	out := make([]core.Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, core.Candidate{
			Name:          e.name,
			Brand:         e.brand,
			Concentration: e.concentration,
			TopNotes:      e.top,
			MiddleNotes:   e.mid,
			BaseNotes:     e.bas,
			Description:   buildDescription(e.name, e.brand, nil, intPtr(e.year)),
			Year:          intPtr(e.year),
			Provenance:    core.ProvenanceExternal,
			SourceTag:     string(SourceTypeStatic),
		})
	}
	return out
}
