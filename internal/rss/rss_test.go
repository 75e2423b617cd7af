package rss

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestCleanHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"<div>a</div>\n<div>b</div>", "a b"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanHTML(c.in); got != c.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractMediaPhotos(t *testing.T) {
	html := `<p>text <img src="https://cdn/a.jpg"> more <img src="https://cdn/b.jpg"> <img></p>`
	photos, video := extractMedia(html, nil)

	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d: %v", len(photos), photos)
	}
	if photos[0] != "https://cdn/a.jpg" || photos[1] != "https://cdn/b.jpg" {
		t.Errorf("photos = %v", photos)
	}
	if video != "" {
		t.Errorf("unexpected video: %s", video)
	}
}

func TestExtractMediaVideoEnclosure(t *testing.T) {
	enclosures := []*gofeed.Enclosure{
		{Type: "audio/mpeg", URL: "https://cdn/a.mp3"},
		{Type: "video/mp4", URL: "https://cdn/v.mp4"},
		{Type: "video/webm", URL: "https://cdn/second.webm"},
	}
	_, video := extractMedia("", enclosures)
	if video != "https://cdn/v.mp4" {
		t.Fatalf("video = %q, want first video enclosure", video)
	}
}

func TestSortByPublishedMissingTimestampSortsLast(t *testing.T) {
	old := time.Now().Add(-2 * time.Hour)
	older := time.Now().Add(-4 * time.Hour)

	entries := []Entry{
		{Title: "no-date"},
		{Title: "old", Published: old},
		{Title: "older", Published: older},
	}
	SortByPublished(entries)

	want := []string{"older", "old", "no-date"}
	for i, title := range want {
		if entries[i].Title != title {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Title, title)
		}
	}
}

func TestConvertItemsFallsBackToContent(t *testing.T) {
	items := []*gofeed.Item{
		{Title: "t", Content: "<p>full body</p>"},
		nil,
	}
	entries := convertItems(items)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].SummaryHTML != "<p>full body</p>" {
		t.Errorf("SummaryHTML = %q", entries[0].SummaryHTML)
	}
}
