package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
)

const (
	UserAgent = "venue-events-cli/1.0 (github.com/pfrederiksen/venue-events)"
	Timeout   = 30 * time.Second
)

// Selectors locate the parts of one listing item. Item is matched against the page; the
// others are matched inside each item and may be empty.
type Selectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	DateAttr    string `yaml:"date_attr"` // e.g. "datetime" on a <time> element
	Venue       string `yaml:"venue"`
	Link        string `yaml:"link"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
}

// Venue is the fixed venue of a source listing a single room
type Venue struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	City    string `yaml:"city"`
}

// Source is one listing page
type Source struct {
	Name      string    `yaml:"name"`
	URL       string    `yaml:"url"`
	Category  string    `yaml:"category"`
	Venue     Venue     `yaml:"venue"`
	Selectors Selectors `yaml:"selectors"`
}

// Scraper fetches and parses listing pages
type Scraper struct {
	client  *http.Client
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Scraper
type Option func(*Scraper)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.client = c
	}
}

// WithLogger sets the logger for fetch failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		s.log = l
	}
}

// WithMetrics sets the counters for failed sources.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scraper) {
		s.metrics = m
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads src.URL and extracts its candidates
func (s *Scraper) Fetch(ctx context.Context, src Source) ([]event.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return Parse(resp.Body, src)
}

// Result is the outcome of fetching one source
type Result struct {
	Source     string
	Candidates []event.Candidate
	Err        error
}

// FetchAll fetches all sources concurrently. Results are in source order. A failing source
// is logged and counted, and its Result carries the error and no candidates.
func (s *Scraper) FetchAll(ctx context.Context, sources []Source) []Result {
	results := make([]Result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			start := time.Now()
			cands, err := s.Fetch(ctx, src)
			results[i] = Result{Source: src.Name, Candidates: cands, Err: err}

			if err != nil {
				s.metrics.IncSourceError(src.Name)
				s.log.Error("Source fetch failed", logger.Fields{
					"source": src.Name,
					"url":    src.URL,
				}, err)
				return
			}
			s.log.Debug("Source fetched", logger.Fields{
				"source":      src.Name,
				"candidates":  len(cands),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		}(i, src)
	}
	wg.Wait()

	return results
}

// Candidates flattens results into one batch, in source order, skipping failed sources.
func Candidates(results []Result) []event.Candidate {
	var out []event.Candidate
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Candidates...)
		}
	}
	return out
}

// Parse extracts candidates from an HTML listing. An empty title selector takes the item's
// own text. Items without any title text are skipped; everything else is passed on for the
// classifier to judge.
func Parse(r io.Reader, src Source) ([]event.Candidate, error) {
	if src.Selectors.Item == "" {
		return nil, fmt.Errorf("source %q: no item selector", src.Name)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, _ := url.Parse(src.URL)
	sel := src.Selectors
	candidates := make([]event.Candidate, 0)

	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		title := firstLine(find(item, sel.Title).Text())
		if title == "" {
			return
		}

		venueName := src.Venue.Name
		if v := text(item, sel.Venue); v != "" {
			venueName = v
		}

		candidates = append(candidates, event.Candidate{
			Title:        title,
			DateText:     dateText(item, sel),
			VenueName:    venueName,
			VenueAddress: src.Venue.Address,
			City:         src.Venue.City,
			URL:          resolve(base, link(item, sel.Link)),
			Description:  text(item, sel.Description),
			ImageURL:     resolve(base, image(item, sel.Image)),
			Category:     src.Category,
			Source:       src.Name,
		})
	})

	return candidates, nil
}

// find returns the first match of selector inside item, or item itself for an empty
// selector.
func find(item *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return item
	}
	return item.Find(selector).First()
}

func text(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(find(item, selector).Text())
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func dateText(item *goquery.Selection, sel Selectors) string {
	if sel.Date == "" {
		return ""
	}
	node := find(item, sel.Date)
	if sel.DateAttr != "" {
		if v, ok := node.Attr(sel.DateAttr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(node.Text())
}

// link reads href from the matched element, or from the item when it is itself the anchor.
func link(item *goquery.Selection, selector string) string {
	if selector == "" {
		if href, ok := item.Attr("href"); ok {
			return href
		}
		return ""
	}
	href, _ := find(item, selector).Attr("href")
	return href
}

// image prefers data-src over src so that lazily loaded artwork wins over its spinner.
func image(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	node := find(item, selector)
	for _, attr := range []string{"data-src", "data-lazy-src", "src"} {
		if v, ok := node.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
