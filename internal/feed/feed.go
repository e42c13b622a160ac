package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pedrolima/newsmood/internal/config"
)

// Headline is a normalized feed entry. Published is always set: when the
// feed omits or mangles the timestamp it is imputed to fetch time and
// Imputed is true.
type Headline struct {
	Source    string
	Title     string
	Link      string
	Published time.Time
	Imputed   bool
	FetchedAt time.Time
}

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]Headline, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
	cap    int
}

func NewRSSFetcher(entryCap int) *RSSFetcher {
	if entryCap <= 0 {
		entryCap = 50
	}
	return &RSSFetcher{parser: gofeed.NewParser(), cap: entryCap}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]Headline, error) {
	parsed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	now := time.Now().UTC()
	items := parsed.Items
	if len(items) > f.cap {
		items = items[:f.cap]
	}

	headlines := make([]Headline, 0, len(items))
	for _, item := range items {
		h, ok := Normalize(item, source.Name, now)
		if !ok {
			continue
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}

// Normalize converts one raw feed item into a Headline. Entries without a
// title are rejected. A missing or unparseable publish time is never an
// error; the entry is stamped with now and flagged imputed.
func Normalize(item *gofeed.Item, source string, now time.Time) (Headline, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return Headline{}, false
	}

	pub := now
	imputed := true
	if item.PublishedParsed != nil {
		pub = item.PublishedParsed.UTC()
		imputed = false
	} else if item.UpdatedParsed != nil {
		pub = item.UpdatedParsed.UTC()
		imputed = false
	}

	return Headline{
		Source:    source,
		Title:     title,
		Link:      strings.TrimSpace(item.Link),
		Published: pub,
		Imputed:   imputed,
		FetchedAt: now,
	}, true
}

type FetchResult struct {
	Headlines []Headline
	Errors    []error
}

// FetchAll pulls every enabled source concurrently. A failed source
// contributes an error instead of aborting the rest; duplicates (same
// title) across sources are dropped, first fetched wins.
func FetchAll(ctx context.Context, sources []config.Source, entryCap int) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		wg     sync.WaitGroup
	)

	fetcher := NewRSSFetcher(entryCap)

	for _, src := range sources {
		wg.Add(1)
		go func(s config.Source) {
			defer wg.Done()
			headlines, err := fetcher.Fetch(ctx, s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Headlines = append(result.Headlines, headlines...)
		}(src)
	}

	wg.Wait()
	result.Headlines = dedupeByTitle(result.Headlines)
	return result
}

func dedupeByTitle(headlines []Headline) []Headline {
	seen := make(map[string]bool, len(headlines))
	out := headlines[:0]
	for _, h := range headlines {
		if seen[h.Title] {
			continue
		}
		seen[h.Title] = true
		out = append(out, h)
	}
	return out
}
