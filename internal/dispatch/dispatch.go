// Package dispatch paces the publishing of one round of entries: a fixed
// delay between entries, and a mandatory pause that ends the round once the
// burst limit of successful publishes is reached.
package dispatch

import (
	"context"
	"time"

	"github.com/deusflow/newsrelay/internal/logger"
	"github.com/deusflow/newsrelay/internal/rss"
)

// Handler processes one entry end to end (rewrite, dedup, publish) and
// reports whether a publish succeeded. It must not panic; failures are its
// own business to log.
type Handler func(ctx context.Context, entry rss.Entry) bool

type Throttler struct {
	BurstLimit  int           // successful publishes allowed before the pause
	BurstDelay  time.Duration // pause once the limit is hit
	PacingDelay time.Duration // delay between processed entries

	sleep func(ctx context.Context, d time.Duration)
}

func NewThrottler(burstLimit int, burstDelay, pacingDelay time.Duration) *Throttler {
	return &Throttler{
		BurstLimit:  burstLimit,
		BurstDelay:  burstDelay,
		PacingDelay: pacingDelay,
		sleep:       sleepCtx,
	}
}

// ProcessRound runs the handler over the round in order and returns the
// number of successful publishes. A failed entry counts as non-success and
// never breaks the round. When the burst limit is reached the throttler
// sleeps BurstDelay and abandons the remainder of the round; entries left
// unprocessed reappear in the next poll cycle if their source still reports
// them.
func (t *Throttler) ProcessRound(ctx context.Context, round []rss.Entry, handler Handler) int {
	sent := 0
	for _, entry := range round {
		if ctx.Err() != nil {
			return sent
		}

		if handler(ctx, entry) {
			sent++
			if sent >= t.BurstLimit {
				logger.Info("burst limit reached, pausing and ending round",
					"sent", sent, "pause", t.BurstDelay)
				t.sleep(ctx, t.BurstDelay)
				return sent
			}
		}

		t.sleep(ctx, t.PacingDelay)
	}
	return sent
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
