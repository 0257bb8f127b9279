package ratelimit

import (
	"math/rand/v2"
	"time"
)

// BulkDownloadSleep returns a jittered pause inserted between consecutive
// items of a batch to avoid hammering the content feed.
func BulkDownloadSleep() time.Duration {
	const (
		from = 1
		to   = 3
	)
	millis := (rand.IntN(to-from)+from)*1000 + rand.N(1000) //nolint:gosec

	return time.Duration(millis) * time.Millisecond
}
