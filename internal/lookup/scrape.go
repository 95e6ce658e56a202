package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scentlab/internal/core"
	"scentlab/internal/logger"
)

// DefaultScrapeURL is the search page of the scraped fragrance encyclopedia.
const DefaultScrapeURL = "https://www.fragrantica.com/search/"

// defaultScrapeDelay is the politeness delay applied before each outbound
// scrape request.
const defaultScrapeDelay = 1 * time.Second

// resultSelectors are tried in order; the first selector with a non-empty
// match set wins. The site reshuffles its markup periodically, so newer
// selectors come first and older ones remain as fallbacks.
var resultSelectors = []string{
	".searched-element",
	".perfume-item",
	".search-perfume",
	".cell",
	".perfume",
}

// nameSelectors and brandSelectors are tried in order within one result node.
var nameSelectors = []string{
	".searched-perfume-name a",
	`a[href*="/perfume/"]`,
	".perfume-name",
	"strong",
}

var brandSelectors = []string{
	".searched-perfume-brand",
	".brand",
	".perfume-brand",
}

var parenYearPattern = regexp.MustCompile(`\((\d{4})\)`)

// ScrapeSource implements Source by scraping a fragrance encyclopedia's
// search page. Every failure mode (network, non-200, unparseable markup)
// degrades to an empty result set at the orchestrator boundary.
type ScrapeSource struct {
	searchURL string
	delay     time.Duration
	client    *http.Client
	userAgent string
	maxItems  int
}

// NewScrapeSource creates the scrape-backed lookup source. An empty searchURL
// or delay falls back to the defaults.
func NewScrapeSource(searchURL, delay string) *ScrapeSource {
	if searchURL == "" {
		searchURL = DefaultScrapeURL
	}
	d := defaultScrapeDelay
	if parsed, err := time.ParseDuration(delay); err == nil && parsed > 0 {
		d = parsed
	}
	return &ScrapeSource{
		searchURL: searchURL,
		delay:     d,
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		maxItems:  10,
	}
}

// Name returns the source tag for this provider.
func (s *ScrapeSource) Name() string { return string(SourceTypeScrape) }

// Search fetches and parses the encyclopedia's search results page.
func (s *ScrapeSource) Search(ctx context.Context, query string) ([]core.Candidate, error) {
	// Politeness delay before every outbound request. Scoped to this call;
	// concurrent requests against other sources are unaffected.
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	params := url.Values{}
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	results := s.parseResults(doc)
	logger.Info("scrape search completed", "query", query, "results", len(results))
	return results, nil
}

// parseResults walks the selector list and extracts candidates from the first
// selector that matches anything.
func (s *ScrapeSource) parseResults(doc *goquery.Document) []core.Candidate {
	for _, selector := range resultSelectors {
		nodes := doc.Find(selector)
		if nodes.Length() == 0 {
			continue
		}

		var results []core.Candidate
		nodes.EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if i >= s.maxItems {
				return false
			}
			if c, ok := s.extractCandidate(sel); ok {
				results = append(results, c)
			}
			return true
		})
		return results
	}
	return nil
}

func (s *ScrapeSource) extractCandidate(sel *goquery.Selection) (core.Candidate, bool) {
	name := firstText(sel, nameSelectors)
	brand := firstText(sel, brandSelectors)

	// Some layouts embed the brand in the name field ("Sauvage by Dior").
	if name != "" && brand == "" && strings.Contains(name, " by ") {
		parts := strings.SplitN(name, " by ", 2)
		name = strings.TrimSpace(parts[0])
		brand = strings.TrimSpace(parts[1])
	}

	// Single-letter names are real ("Y" by Yves Saint Laurent), so only
	// drop entries with nothing left after trimming.
	if name == "" || brand == "" {
		return core.Candidate{}, false
	}

	var year *int
	if m := parenYearPattern.FindStringSubmatch(name); m != nil {
		year = extractYear(m[1])
		name = strings.TrimSpace(parenYearPattern.ReplaceAllString(name, ""))
	}

	notesText := firstText(sel, []string{".notes", ".perfume-notes"})
	notes := filterBlank(strings.Split(notesText, ","))
	if len(notes) == 0 {
		notes = append([]string(nil), defaultNotes...)
	}
	top, middle, base := splitTiers(notes)

	return core.Candidate{
		Name:          name,
		Brand:         brand,
		Concentration: core.ConcentrationEDT,
		TopNotes:      top,
		MiddleNotes:   middle,
		BaseNotes:     base,
		Description:   buildDescription(name, brand, nil, year),
		Year:          year,
		Provenance:    core.ProvenanceExternal,
		SourceTag:     s.Name(),
	}, true
}

// firstText returns the trimmed text of the first selector that matches
// non-empty content within sel.
func firstText(sel *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(sel.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
