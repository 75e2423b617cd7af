package rss

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// CleanHTML strips markup from an entry body, leaving plain text.
func CleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	text := doc.Text()
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}

// extractMedia collects photo URLs from <img> tags in the summary and the
// first video enclosure, if any.
func extractMedia(summaryHTML string, enclosures []*gofeed.Enclosure) (photos []string, video string) {
	if summaryHTML != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(summaryHTML)); err == nil {
			doc.Find("img").Each(func(_ int, s *goquery.Selection) {
				if src, ok := s.Attr("src"); ok && src != "" {
					photos = append(photos, src)
				}
			})
		}
	}

	for _, enc := range enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(enc.Type, "video") && enc.URL != "" {
			video = enc.URL
			break
		}
	}
	return photos, video
}
