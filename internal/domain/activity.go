package domain

import (
	"fmt"
	"strings"
	"time"
)

// ActivityRecord is one historical action fetched from the history provider.
type ActivityRecord struct {
	Kind      string
	CreatedAt string
}

// OccurredAt parses the raw timestamp and returns it in UTC.
func (r ActivityRecord) OccurredAt() (time.Time, error) {
	raw := strings.TrimSpace(r.CreatedAt)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// HourBucket is a (weekday, hour-of-day) aggregation key in UTC.
type HourBucket struct {
	Weekday time.Weekday
	Hour    int
}

// BucketOf returns the bucket an instant falls into.
func BucketOf(t time.Time) HourBucket {
	t = t.UTC()
	return HourBucket{Weekday: t.Weekday(), Hour: t.Hour()}
}

func (b HourBucket) String() string {
	return fmt.Sprintf("%s %02d:00", b.Weekday.String()[:3], b.Hour)
}

// ScheduledSlot is a concrete future instant chosen for a work item.
type ScheduledSlot struct {
	Instant time.Time
}

// Weekday of the slot in UTC.
func (s ScheduledSlot) Weekday() time.Weekday {
	return s.Instant.UTC().Weekday()
}

// Hour of the slot in UTC.
func (s ScheduledSlot) Hour() int {
	return s.Instant.UTC().Hour()
}
