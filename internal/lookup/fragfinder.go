package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"scentlab/internal/core"
	"scentlab/internal/logger"
)

// DefaultRapidAPIHost is the FragranceFinder host on RapidAPI.
const DefaultRapidAPIHost = "fragrancefinder-api.p.rapidapi.com"

// FragranceFinderSource implements Source using the FragranceFinder search
// endpoint. It is the primary external source.
type FragranceFinderSource struct {
	apiKey  string
	host    string
	baseURL string
	client  *http.Client
}

// NewFragranceFinderSource creates the primary external API source.
func NewFragranceFinderSource(apiKey, host string) *FragranceFinderSource {
	if host == "" {
		host = DefaultRapidAPIHost
	}
	return &FragranceFinderSource{
		apiKey:  apiKey,
		host:    host,
		baseURL: "https://" + host,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the source tag for this provider.
func (s *FragranceFinderSource) Name() string { return string(SourceTypeFragranceFinder) }

// Search queries the /perfumes/search endpoint and normalizes the response.
func (s *FragranceFinderSource) Search(ctx context.Context, query string) ([]core.Candidate, error) {
	endpoint := s.baseURL + "/perfumes/search"
	params := url.Values{}
	params.Set("q", query)

	items, err := s.fetch(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	candidates := itemsToCandidates(items, s.Name())
	logger.Info("fragrancefinder search completed", "query", query, "results", len(candidates))
	return candidates, nil
}

func (s *FragranceFinderSource) fetch(ctx context.Context, fullURL string) ([]apiItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", s.host)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	return decodeItems(resp)
}

// decodeItems reads a response body and applies the shape normalization step.
func decodeItems(resp *http.Response) ([]apiItem, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return normalizeShape(raw)
}

// apiItem is the superset of fields the FragranceFinder payloads carry across
// their response format revisions.
type apiItem struct {
	Perfume       string   `json:"perfume"`
	Name          string   `json:"name"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand"`
	House         string   `json:"house"`
	BrandName     string   `json:"brand_name"`
	Notes         []string `json:"notes"`
	Accords       []string `json:"accords"`
	Description   string   `json:"description"`
	Concentration string   `json:"concentration"`
	Type          string   `json:"type"`
	Image         string   `json:"image"`
}

// normalizeShape turns the API's heterogeneous payloads (a bare array, or an
// object wrapping the array under "hits") into a typed item list. Anything
// else is an explicit unrecognized-shape error rather than a silent guess.
func normalizeShape(raw json.RawMessage) ([]apiItem, error) {
	var direct []apiItem
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Hits []apiItem `json:"hits"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Hits != nil {
		return wrapped.Hits, nil
	}

	return nil, ErrUnrecognizedShape
}

// itemsToCandidates maps normalized API items onto the candidate shape:
// cleaned name, de-boilerplated brand, best-effort year, and a ceil-thirds
// tier split of the flat note list.
func itemsToCandidates(items []apiItem, sourceTag string) []core.Candidate {
	var out []core.Candidate
	for _, item := range items {
		name := cleanName(firstNonEmpty(item.Perfume, item.Name, item.Title))
		brand := normalizeBrand(firstNonEmpty(item.Brand, item.House, item.BrandName))
		if name == "" || brand == "" {
			continue
		}

		notes := filterBlank(item.Notes)
		if len(notes) == 0 {
			notes = filterBlank(item.Accords)
		}
		if len(notes) == 0 {
			notes = extractNotesFromText(item.Description)
		}
		top, middle, base := splitTiers(notes)

		year := extractYear(item.Description)
		description := item.Description
		if description == "" {
			description = buildDescription(name, brand, notes, year)
		}

		out = append(out, core.Candidate{
			Name:          name,
			Brand:         brand,
			Concentration: core.ParseConcentration(firstNonEmpty(item.Concentration, item.Type, name)),
			TopNotes:      top,
			MiddleNotes:   middle,
			BaseNotes:     base,
			Description:   description,
			ImageURL:      item.Image,
			Year:          year,
			Provenance:    core.ProvenanceExternal,
			SourceTag:     sourceTag,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
