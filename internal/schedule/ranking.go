package schedule

import (
	"cmp"
	"slices"

	"GoldenTickets/internal/domain"
)

// DefaultGoldenHours is how many buckets the ranking keeps unless configured.
const DefaultGoldenHours = 10

// Rank returns the k most frequent buckets ordered ascending by rank: the
// most frequent bucket is last, because the projector consumes from the tail.
// Equal counts keep first-seen order.
func Rank(h Histogram, k int) []domain.HourBucket {
	if k <= 0 || h.Len() == 0 {
		return nil
	}

	buckets := h.Buckets()
	slices.SortStableFunc(buckets, func(a, b domain.HourBucket) int {
		return cmp.Compare(h.Count(b), h.Count(a))
	})

	if len(buckets) > k {
		buckets = buckets[:k]
	}
	slices.Reverse(buckets)
	return buckets
}
