package lookup

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	yearPattern        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	brandSuffixPattern = regexp.MustCompile(`(?i)\s*(perfumes?\s*and\s*colognes?|perfumes?|fragrances?)\s*$`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// noteKeywords is the vocabulary used to pull notes out of free-text
// descriptions when a source provides none.
var noteKeywords = []string{
	"bergamot", "lemon", "lime", "orange", "grapefruit", "mandarin",
	"lavender", "rose", "jasmine", "lily", "violet", "iris",
	"vanilla", "musk", "amber", "sandalwood", "cedar", "oud",
	"pepper", "cardamom", "cinnamon", "nutmeg", "ginger",
}

// defaultNotes stands in when nothing at all can be extracted for a candidate.
var defaultNotes = []string{"Fresh", "Aromatic"}

// cleanName strips surrounding quotes and collapses whitespace.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		name = name[1 : len(name)-1]
	}
	return whitespacePattern.ReplaceAllString(name, " ")
}

// normalizeBrand strips catalogue boilerplate ("molton brown perfumes and
// colognes" -> "Molton Brown") and title-cases the remainder.
func normalizeBrand(brand string) string {
	brand = strings.TrimSpace(brand)
	brand = brandSuffixPattern.ReplaceAllString(brand, "")
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return ""
	}

	words := strings.Fields(brand)
	for i, w := range words {
		words[i] = titleCaseWord(w)
	}
	return strings.Join(words, " ")
}

func titleCaseWord(w string) string {
	if w == "" {
		return w
	}
	// Keep short connective particles and initials intact ("de", "E.").
	lower := strings.ToLower(w)
	switch lower {
	case "de", "di", "du", "la", "le", "von", "van", "&":
		return lower
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

// extractYear pulls a plausible release year out of free text.
func extractYear(text string) *int {
	match := yearPattern.FindString(text)
	if match == "" {
		return nil
	}
	var year int
	if _, err := fmt.Sscanf(match, "%d", &year); err != nil {
		return nil
	}
	return &year
}

// splitTiers partitions a flat notes list into top/middle/base using equal
// thirds by count with a ceil-based split, for sources that provide no
// explicit pyramid.
func splitTiers(notes []string) (top, middle, base []string) {
	n := len(notes)
	if n == 0 {
		return nil, nil, nil
	}
	per := (n + 2) / 3
	top = notes[:min(per, n)]
	if n > per {
		middle = notes[per:min(2*per, n)]
	}
	if n > 2*per {
		base = notes[2*per:]
	}
	return top, middle, base
}

// extractNotesFromText scans free text for known note keywords, preserving
// the vocabulary order.
func extractNotesFromText(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range noteKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, strings.ToUpper(kw[:1])+kw[1:])
		}
	}
	if len(found) == 0 {
		return append([]string(nil), defaultNotes...)
	}
	return found
}

// filterBlank drops empty and whitespace-only entries, trimming the rest.
func filterBlank(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// buildDescription composes a short descriptive line for candidates whose
// source supplied none.
func buildDescription(name, brand string, notes []string, year *int) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" by ")
	b.WriteString(brand)
	if year != nil {
		fmt.Fprintf(&b, " (%d)", *year)
	}
	if len(notes) > 0 {
		show := notes
		if len(show) > 3 {
			show = show[:3]
		}
		b.WriteString(" featuring ")
		b.WriteString(strings.ToLower(strings.Join(show, ", ")))
	}
	return b.String()
}
