package schedule

import (
	"errors"
	"testing"
	"time"

	"GoldenTickets/internal/domain"
)

func TestAnalyzeCountsByWeekdayAndHour(t *testing.T) {
	t.Parallel()

	records := []domain.ActivityRecord{
		{Kind: "PushEvent", CreatedAt: "2025-11-04T14:05:00Z"},
		{Kind: "PushEvent", CreatedAt: "2025-11-03T09:15:00Z"},
		{Kind: "IssuesEvent", CreatedAt: "2025-11-03T09:59:59Z"},
		{Kind: "PushEvent", CreatedAt: "2025-11-10T11:00:00+02:00"},
	}

	hist, skipped := Analyze(records)
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped records, got %v", skipped)
	}

	mon9 := domain.HourBucket{Weekday: time.Monday, Hour: 9}
	tue14 := domain.HourBucket{Weekday: time.Tuesday, Hour: 14}

	if got := hist.Count(mon9); got != 3 {
		t.Fatalf("expected 3 records at %s, got %d", mon9, got)
	}
	if got := hist.Count(tue14); got != 1 {
		t.Fatalf("expected 1 record at %s, got %d", tue14, got)
	}
	if hist.Len() != 2 {
		t.Fatalf("expected 2 buckets, got %d", hist.Len())
	}
	if hist.Total() != 4 {
		t.Fatalf("expected total 4, got %d", hist.Total())
	}

	order := hist.Buckets()
	if order[0] != tue14 || order[1] != mon9 {
		t.Fatalf("unexpected first-seen order: %v", order)
	}
}

func TestAnalyzeSkipsInvalidTimestamps(t *testing.T) {
	t.Parallel()

	records := []domain.ActivityRecord{
		{Kind: "PushEvent", CreatedAt: "not-a-time"},
		{Kind: "PushEvent", CreatedAt: "2025-11-03T09:15:00Z"},
		{Kind: "WatchEvent", CreatedAt: "2025-11-03 09:15:00"},
		{Kind: "ForkEvent", CreatedAt: ""},
	}

	hist, skipped := Analyze(records)
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skipped records, got %d", len(skipped))
	}
	for _, err := range skipped {
		if !errors.Is(err, domain.ErrInvalidTimestamp) {
			t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
		}
	}

	var first *domain.InvalidTimestampError
	if !errors.As(skipped[0], &first) {
		t.Fatalf("expected *InvalidTimestampError, got %T", skipped[0])
	}
	if first.Index != 0 || first.Raw != "not-a-time" {
		t.Fatalf("unexpected error context: %+v", first)
	}

	if hist.Total() != 1 {
		t.Fatalf("expected only the valid record to be counted, got %d", hist.Total())
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	t.Parallel()

	hist, skipped := Analyze(nil)
	if hist.Len() != 0 || len(skipped) != 0 {
		t.Fatalf("expected empty histogram, got %d buckets, %d skipped", hist.Len(), len(skipped))
	}
	if got := Rank(hist, DefaultGoldenHours); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", got)
	}
}
