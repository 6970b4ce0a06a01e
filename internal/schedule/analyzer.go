// Package schedule holds the pure scheduling core: activity analysis,
// golden-hour ranking, slot projection, reconciliation and pairing.
// Nothing here performs I/O; every function works on snapshots and returns
// new collections.
package schedule

import "GoldenTickets/internal/domain"

// Histogram counts activity per hour bucket and remembers the order in which
// buckets were first seen, which the ranking uses to break ties.
type Histogram struct {
	counts map[domain.HourBucket]int
	order  []domain.HourBucket
}

// Add increments the counter of a bucket.
func (h *Histogram) Add(b domain.HourBucket) {
	if h.counts == nil {
		h.counts = map[domain.HourBucket]int{}
	}
	if _, ok := h.counts[b]; !ok {
		h.order = append(h.order, b)
	}
	h.counts[b]++
}

// Count returns how many records fell into b.
func (h Histogram) Count(b domain.HourBucket) int {
	return h.counts[b]
}

// Buckets returns every bucket with at least one record, in first-seen order.
func (h Histogram) Buckets() []domain.HourBucket {
	out := make([]domain.HourBucket, len(h.order))
	copy(out, h.order)
	return out
}

// Len is the number of distinct buckets.
func (h Histogram) Len() int {
	return len(h.order)
}

// Total is the number of records counted.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Analyze buckets every record by UTC weekday and hour. Records with an
// unparseable timestamp are skipped and reported as *domain.InvalidTimestampError.
func Analyze(records []domain.ActivityRecord) (Histogram, []error) {
	var (
		hist    Histogram
		skipped []error
	)

	for i, rec := range records {
		ts, err := rec.OccurredAt()
		if err != nil {
			skipped = append(skipped, &domain.InvalidTimestampError{
				Index: i,
				Kind:  rec.Kind,
				Raw:   rec.CreatedAt,
				Err:   err,
			})
			continue
		}
		hist.Add(domain.BucketOf(ts))
	}

	return hist, skipped
}
