// Package classify implements the rule-based category classifier and the
// versatility scorer. Both are pure functions: no I/O, no randomness, and
// identical inputs always produce identical output.
package classify

import (
	"strings"

	"scentlab/internal/core"
	"scentlab/internal/taxonomy"
)

// MaxCategories caps how many category tags a single classification produces.
const MaxCategories = 4

// Input carries everything the classifier inspects for one fragrance.
type Input struct {
	Name          string
	Brand         string
	TopNotes      []string
	MiddleNotes   []string
	BaseNotes     []string
	Description   string
	Concentration core.Concentration
}

// FromCandidate builds a classifier input from a lookup candidate.
func FromCandidate(c core.Candidate) Input {
	return Input{
		Name:          c.Name,
		Brand:         c.Brand,
		TopNotes:      c.TopNotes,
		MiddleNotes:   c.MiddleNotes,
		BaseNotes:     c.BaseNotes,
		Description:   c.Description,
		Concentration: c.Concentration,
	}
}

// Classify maps a fragrance's notes, description, and concentration to an
// ordered, deduplicated list of 1 to 4 category tags. Rules run in a fixed
// order and are additive; order in the result is first-match insertion order.
func Classify(in Input) []core.CategoryTag {
	noteText := strings.ToLower(strings.Join(allNotes(in), " "))
	desc := strings.ToLower(in.Description)

	var tags []core.CategoryTag
	for _, family := range taxonomy.NoteFamilies() {
		matched := taxonomy.ContainsAny(noteText, family.Keywords)
		if !matched && family.Name == "aquatic" {
			matched = taxonomy.ContainsAny(desc, taxonomy.AquaticDescriptors)
		}
		if matched {
			tags = append(tags, family.Categories...)
		}
	}

	strong := in.Concentration == core.ConcentrationEDP ||
		in.Concentration == core.ConcentrationParfum ||
		taxonomy.ContainsAny(desc, taxonomy.StrengthDescriptors)
	if strong {
		tags = append(tags, core.CategoryClub, core.CategoryWinter)
	}

	if taxonomy.ContainsAny(desc, taxonomy.ProfessionalDescriptors) {
		tags = append(tags, core.CategoryOffice)
	}

	// Two or more raw matches reinforce daily_driver; dedup below keeps only
	// its first occurrence, so this affects order, not membership count.
	if len(tags) >= 2 {
		tags = append(tags, core.CategoryDailyDriver)
	}

	result := dedupe(tags)
	if len(result) > MaxCategories {
		result = result[:MaxCategories]
	}
	if len(result) == 0 {
		result = []core.CategoryTag{core.CategoryDailyDriver}
	}
	return result
}

func allNotes(in Input) []string {
	notes := make([]string, 0, len(in.TopNotes)+len(in.MiddleNotes)+len(in.BaseNotes))
	notes = append(notes, in.TopNotes...)
	notes = append(notes, in.MiddleNotes...)
	notes = append(notes, in.BaseNotes...)
	return notes
}

// dedupe removes duplicate tags preserving first-occurrence order.
func dedupe(tags []core.CategoryTag) []core.CategoryTag {
	seen := make(map[core.CategoryTag]bool, len(tags))
	var out []core.CategoryTag
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
