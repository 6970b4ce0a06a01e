package schedule

import (
	"fmt"
	"strings"
	"time"

	"GoldenTickets/internal/domain"
)

// DefaultSlotDuration is the length of every created entry.
const DefaultSlotDuration = time.Hour

// Pair matches items[i] with slots[i] up to the shorter list. Items beyond
// the slot count are returned as unassigned; surplus slots are ignored.
func Pair(items []domain.WorkItem, slots []domain.ScheduledSlot, duration time.Duration) ([]domain.EntryRequest, []domain.WorkItem) {
	if duration <= 0 {
		duration = DefaultSlotDuration
	}

	n := min(len(items), len(slots))
	requests := make([]domain.EntryRequest, 0, n)
	for i := 0; i < n; i++ {
		start := slots[i].Instant.UTC()
		requests = append(requests, domain.EntryRequest{
			Start:       start,
			End:         start.Add(duration),
			LocationTag: items[i].ExternalID,
			Summary:     Summary(items[i]),
			Description: Description(items[i]),
		})
	}

	var unassigned []domain.WorkItem
	if len(items) > n {
		unassigned = append(unassigned, items[n:]...)
	}
	return requests, unassigned
}

// Shortfall reports which side of the pairing had a surplus, or nil.
func Shortfall(items, slots int) error {
	if items == slots {
		return nil
	}
	return &domain.ShortfallError{Items: items, Slots: slots}
}

// Summary is the entry title for an item.
func Summary(item domain.WorkItem) string {
	return fmt.Sprintf("Today you're working on issue #%d (id:%s)", item.Number, item.ExternalID)
}

// Description is the entry body for an item.
func Description(item domain.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	if item.URL != "" {
		fmt.Fprintf(&b, "Look at the issue: %s\n", item.URL)
	}
	if item.Excerpt != "" {
		fmt.Fprintf(&b, "\n%s\n", item.Excerpt)
	}
	return b.String()
}
