// Package scheduler merges independently ordered feeds into one fair
// processing order, so no single source monopolizes a round.
package scheduler

import "github.com/deusflow/newsrelay/internal/rss"

// BuildRound interleaves feeds round-robin by index: for each index i up to
// the longest feed, every feed contributes its i-th entry (in source order)
// if it has one. The result is recomputed fresh each cycle.
func BuildRound(feeds [][]rss.Entry) []rss.Entry {
	maxLen := 0
	total := 0
	for _, feed := range feeds {
		total += len(feed)
		if len(feed) > maxLen {
			maxLen = len(feed)
		}
	}

	round := make([]rss.Entry, 0, total)
	for i := 0; i < maxLen; i++ {
		for _, feed := range feeds {
			if i < len(feed) {
				round = append(round, feed[i])
			}
		}
	}
	return round
}
