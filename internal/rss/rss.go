package rss

import (
	"os"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsrelay/internal/logger"
)

// Entry is one feed item as seen by the pipeline. Read-only downstream.
type Entry struct {
	Title       string
	SummaryHTML string
	Link        string
	Photos      []string
	VideoURL    string
	Published   time.Time // zero when the feed gave no timestamp
}

// FeedsConfig is the optional YAML file structure:
//
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads extra feed URLs from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// Fetcher retrieves and parses feeds.
type Fetcher struct {
	parser *gofeed.Parser
}

func NewFetcher() *Fetcher {
	return &Fetcher{parser: gofeed.NewParser()}
}

// FetchAll downloads every feed and returns one entry slice per URL, each
// sorted by published time ascending. A feed that fails to retrieve yields
// an empty slice for this cycle; it is logged, never fatal.
func (f *Fetcher) FetchAll(urls []string) [][]Entry {
	feeds := make([][]Entry, len(urls))
	for i, url := range urls {
		feed, err := f.parser.ParseURL(url)
		if err != nil {
			logger.Warn("failed to fetch feed, skipping this cycle", "url", url, "error", err)
			continue
		}
		feeds[i] = convertItems(feed.Items)
		logger.Info("fetched feed", "url", url, "entries", len(feeds[i]))
	}
	return feeds
}

func convertItems(items []*gofeed.Item) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		e := Entry{
			Title:       item.Title,
			SummaryHTML: item.Description,
			Link:        item.Link,
		}
		if e.SummaryHTML == "" {
			e.SummaryHTML = item.Content
		}
		if item.PublishedParsed != nil {
			e.Published = *item.PublishedParsed
		}
		e.Photos, e.VideoURL = extractMedia(e.SummaryHTML, item.Enclosures)
		entries = append(entries, e)
	}
	SortByPublished(entries)
	return entries
}

// SortByPublished orders entries by published time ascending. Entries
// without a timestamp sort as "now", i.e. last.
func SortByPublished(entries []Entry) {
	now := time.Now()
	at := func(e Entry) time.Time {
		if e.Published.IsZero() {
			return now
		}
		return e.Published
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return at(entries[i]).Before(at(entries[j]))
	})
}
