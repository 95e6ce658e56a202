package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func newTestScraper(serverURL string) *ScrapeSource {
	s := NewScrapeSource(serverURL, "1ms")
	return s
}

func TestScrapeSearch(t *testing.T) {
	page := `<html><body>
		<div class="searched-element">
			<div class="searched-perfume-name"><a href="/perfume/1">Sauvage (2015)</a></div>
			<div class="searched-perfume-brand">Dior</div>
		</div>
		<div class="searched-element">
			<div class="searched-perfume-name"><a href="/perfume/2">Bleu de Chanel by Chanel</a></div>
		</div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "sauvage" {
			t.Errorf("expected query=sauvage, got %q", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	results, err := newTestScraper(server.URL).Search(context.Background(), "sauvage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.Name != "Sauvage" || first.Brand != "Dior" {
		t.Errorf("unexpected identity %q / %q", first.Name, first.Brand)
	}
	if first.Year == nil || *first.Year != 2015 {
		t.Errorf("expected parenthesized year 2015, got %v", first.Year)
	}

	// Brand embedded in the name field via " by " splits out.
	second := results[1]
	if second.Name != "Bleu de Chanel" || second.Brand != "Chanel" {
		t.Errorf("unexpected identity %q / %q", second.Name, second.Brand)
	}
}

func TestScrapeSelectorFallback(t *testing.T) {
	// No .searched-element nodes, so the parser falls through to .perfume-item.
	page := `<html><body>
		<div class="perfume-item">
			<a href="/perfume/3">Aventus by Creed</a>
		</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	results := newTestScraper("http://unused").parseResults(doc)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Name != "Aventus" || results[0].Brand != "Creed" {
		t.Errorf("unexpected identity %q / %q", results[0].Name, results[0].Brand)
	}
}

func TestScrapeKeepsSingleLetterNames(t *testing.T) {
	page := `<html><body>
		<div class="searched-element">
			<div class="searched-perfume-name"><a href="/perfume/4">Y by Yves Saint Laurent</a></div>
		</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	results := newTestScraper("http://unused").parseResults(doc)
	if len(results) != 1 {
		t.Fatalf("expected the single-letter name to be kept, got %+v", results)
	}
	if results[0].Name != "Y" || results[0].Brand != "Yves Saint Laurent" {
		t.Errorf("unexpected identity %q / %q", results[0].Name, results[0].Brand)
	}
}

func TestScrapeRejectsEmptyIdentities(t *testing.T) {
	page := `<html><body>
		<div class="searched-element">
			<div class="searched-perfume-name"><a href="/perfume/5">Nameless Wonder</a></div>
		</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	// No brand anywhere in the markup and no " by " to split on.
	if results := newTestScraper("http://unused").parseResults(doc); len(results) != 0 {
		t.Errorf("expected brandless entries to be dropped, got %+v", results)
	}
}

func TestScrapeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestScraper(server.URL).Search(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error for a 403 response")
	}
}

func TestScrapeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewScrapeSource("http://unused", "10s")
	if _, err := src.Search(ctx, "anything"); err == nil {
		t.Fatal("expected context error during politeness delay")
	}
}
