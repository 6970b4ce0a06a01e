package schedule

import (
	"time"

	"GoldenTickets/internal/domain"
)

// BookedWindows is the set of start instants already taken on the calendar.
type BookedWindows map[int64]struct{}

// NewBookedWindows collects the start instants of existing entries.
func NewBookedWindows(entries []domain.CalendarEntry) BookedWindows {
	booked := make(BookedWindows, len(entries))
	for _, e := range entries {
		if e.Start.IsZero() {
			continue
		}
		booked[e.Start.Unix()] = struct{}{}
	}
	return booked
}

// Contains reports whether t is exactly a booked start.
func (b BookedWindows) Contains(t time.Time) bool {
	_, ok := b[t.Unix()]
	return ok
}

// Project turns the ranking into concrete instants, consuming buckets from
// the tail. Each bucket lands on the first UTC day, starting tomorrow, whose
// weekday matches, at the bucket hour in UTC. Instants that hit a booked
// window are dropped, not moved.
func Project(ranking []domain.HourBucket, today time.Time, booked BookedWindows) []domain.ScheduledSlot {
	if len(ranking) == 0 {
		return nil
	}

	// Buckets and slots are UTC, so the baseline is the UTC date of today.
	u := today.UTC()
	tomorrow := time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)

	candidates := make([]domain.ScheduledSlot, 0, len(ranking))
	for i := len(ranking) - 1; i >= 0; i-- {
		bucket := ranking[i]
		if !validBucket(bucket) {
			continue
		}

		at := tomorrow.Add(time.Duration(bucket.Hour) * time.Hour)
		for at.Weekday() != bucket.Weekday {
			at = at.AddDate(0, 0, 1)
		}
		candidates = append(candidates, domain.ScheduledSlot{Instant: at})
	}

	slots := make([]domain.ScheduledSlot, 0, len(candidates))
	for _, slot := range candidates {
		if booked.Contains(slot.Instant) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func validBucket(b domain.HourBucket) bool {
	return b.Weekday >= time.Sunday && b.Weekday <= time.Saturday && b.Hour >= 0 && b.Hour < 24
}
