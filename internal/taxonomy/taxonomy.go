// Package taxonomy holds the static vocabulary the classifier consults: note
// families mapped to category tags, description keyword sets, and display
// metadata for each category.
package taxonomy

import (
	"strings"

	"scentlab/internal/core"
)

// NoteFamily maps a named family of note keywords to the category tags the
// family signals. Families are evaluated in a fixed order; matching is
// case-insensitive substring over the candidate's combined note list.
type NoteFamily struct {
	Name       string
	Keywords   []string
	Categories []core.CategoryTag
}

// NoteFamilies returns the note-family rules in evaluation order.
func NoteFamilies() []NoteFamily {
	return []NoteFamily{
		{
			Name:       "citrus",
			Keywords:   []string{"bergamot", "lemon", "lime", "grapefruit", "orange"},
			Categories: []core.CategoryTag{core.CategorySummer, core.CategoryDailyDriver},
		},
		{
			Name:       "aquatic",
			Keywords:   []string{"aquatic", "marine", "sea", "watery", "ocean"},
			Categories: []core.CategoryTag{core.CategorySummer, core.CategoryDailyDriver},
		},
		{
			Name:       "woody-spicy",
			Keywords:   []string{"cedar", "sandalwood", "vetiver", "oak", "pepper", "spice"},
			Categories: []core.CategoryTag{core.CategoryOffice, core.CategoryWinter},
		},
		{
			Name:       "gourmand",
			Keywords:   []string{"vanilla", "chocolate", "honey", "caramel", "sugar"},
			Categories: []core.CategoryTag{core.CategoryDate, core.CategorySpecial},
		},
		{
			Name:       "floral",
			Keywords:   []string{"rose", "jasmine", "lavender", "lily", "peony", "iris"},
			Categories: []core.CategoryTag{core.CategoryCollege, core.CategoryDate},
		},
	}
}

// AquaticDescriptors are description words that signal an aquatic profile even
// when no marine note is listed.
var AquaticDescriptors = []string{"aquatic"}

// StrengthDescriptors are description words that signal high projection.
var StrengthDescriptors = []string{"strong", "powerful"}

// ProfessionalDescriptors are description words that signal office suitability.
var ProfessionalDescriptors = []string{"professional", "sophisticated", "elegant"}

// FreshTopNotes are the top notes the versatility scorer treats as "fresh".
var FreshTopNotes = []string{"bergamot", "lemon", "citrus", "grapefruit"}

// ContainsAny reports whether text contains any of the keywords,
// case-insensitively. Text is expected to already be lower-cased by callers
// on hot paths; this lowers keywords only.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CategoryInfo carries the display metadata for one battle category.
type CategoryInfo struct {
	Tag           core.CategoryTag `json:"category"`
	Title         string           `json:"title"`
	Purpose       string           `json:"purpose"`
	Examples      string           `json:"examples"`
	Instruction   string           `json:"instruction"`
	MaxSelections int              `json:"maxSelections"`
}

// Categories returns the metadata for every battle category, keyed by tag.
func Categories() map[core.CategoryTag]CategoryInfo {
	return map[core.CategoryTag]CategoryInfo{
		core.CategoryDailyDriver: {
			Tag:           core.CategoryDailyDriver,
			Title:         "DAILY DRIVER BATTLE",
			Purpose:       "Everyday use when you need reliability",
			Examples:      "Work commute, gym, errands, casual lunch",
			Instruction:   "Pick the TWO that feel most comfortable and versatile",
			MaxSelections: 2,
		},
		core.CategoryCollege: {
			Tag:           core.CategoryCollege,
			Title:         "COLLEGE/CAMPUS BATTLE",
			Purpose:       "For classroom, study sessions, and campus social life",
			Examples:      "Lectures, library sessions, campus events",
			Instruction:   "Pick ONE that's pleasant, not distracting, and crowd-pleasing",
			MaxSelections: 1,
		},
		core.CategorySummer: {
			Tag:           core.CategorySummer,
			Title:         "SUMMER/WARM WEATHER BATTLE",
			Purpose:       "For hot, humid days when you need something refreshing",
			Examples:      "Beach days, outdoor activities, park outings",
			Instruction:   "Pick ONE that feels most cooling and pleasant",
			MaxSelections: 1,
		},
		core.CategoryOffice: {
			Tag:           core.CategoryOffice,
			Title:         "OFFICE/PROFESSIONAL BATTLE",
			Purpose:       "For work settings requiring confidence and professionalism",
			Examples:      "Job interviews, business meetings, presentations",
			Instruction:   "Pick ONE that feels sophisticated but not overpowering",
			MaxSelections: 1,
		},
		core.CategoryClub: {
			Tag:           core.CategoryClub,
			Title:         "CLUB/NIGHT OUT BATTLE",
			Purpose:       "For nightlife when you want to make an impression",
			Examples:      "Clubs, bars, concerts, parties",
			Instruction:   "Pick ONE with the best projection and appeal",
			MaxSelections: 1,
		},
		core.CategoryDate: {
			Tag:           core.CategoryDate,
			Title:         "DATE NIGHT BATTLE",
			Purpose:       "For romantic settings when you want to create attraction",
			Examples:      "Dinner dates, intimate evenings",
			Instruction:   "Pick ONE that feels most seductive and memorable",
			MaxSelections: 1,
		},
		core.CategorySignature: {
			Tag:           core.CategorySignature,
			Title:         "SIGNATURE SCENT BATTLE",
			Purpose:       "Your personal trademark that becomes identified with you",
			Examples:      "Everyday life when you want to be consistently recognized",
			Instruction:   "Pick ONE that feels most \"you\" and versatile year-round",
			MaxSelections: 1,
		},
		core.CategoryWinter: {
			Tag:           core.CategoryWinter,
			Title:         "FALL/WINTER BATTLE",
			Purpose:       "For cold weather when you need something warmer",
			Examples:      "Holiday gatherings, cold days, winter activities",
			Instruction:   "Pick ONE that feels cozy and substantial",
			MaxSelections: 1,
		},
		core.CategorySpecial: {
			Tag:           core.CategorySpecial,
			Title:         "SPECIAL OCCASION BATTLE",
			Purpose:       "For important events requiring sophistication",
			Examples:      "Weddings, formal dinners, milestone celebrations",
			Instruction:   "Pick ONE that feels most refined and impressive",
			MaxSelections: 1,
		},
	}
}
