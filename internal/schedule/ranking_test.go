package schedule

import (
	"testing"
	"time"

	"GoldenTickets/internal/domain"
)

func bucket(day time.Weekday, hour int) domain.HourBucket {
	return domain.HourBucket{Weekday: day, Hour: hour}
}

func TestRankPlacesMostFrequentLast(t *testing.T) {
	t.Parallel()

	var hist Histogram
	hist.Add(bucket(time.Tuesday, 14))
	for i := 0; i < 3; i++ {
		hist.Add(bucket(time.Monday, 9))
	}

	got := Rank(hist, DefaultGoldenHours)
	want := []domain.HourBucket{bucket(time.Tuesday, 14), bucket(time.Monday, 9)}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRankBreaksTiesByFirstSeen(t *testing.T) {
	t.Parallel()

	a := bucket(time.Wednesday, 8)
	b := bucket(time.Thursday, 20)
	c := bucket(time.Friday, 11)

	var hist Histogram
	for _, x := range []domain.HourBucket{a, b, c, a, b, c, c} {
		hist.Add(x)
	}

	got := Rank(hist, DefaultGoldenHours)
	want := []domain.HourBucket{b, a, c}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s (full %v)", i, want[i], got[i], got)
		}
	}
}

func TestRankKeepsTopK(t *testing.T) {
	t.Parallel()

	var hist Histogram
	for h := 0; h < 15; h++ {
		for n := 0; n <= h; n++ {
			hist.Add(bucket(time.Saturday, h))
		}
	}

	got := Rank(hist, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 buckets, got %d", len(got))
	}
	for _, b := range got {
		if hist.Count(b) < 1 {
			t.Fatalf("bucket %s has no activity", b)
		}
		if b.Hour < 5 {
			t.Fatalf("bucket %s should have been cut from the top 10", b)
		}
	}
	if got[len(got)-1] != bucket(time.Saturday, 14) {
		t.Fatalf("expected the busiest hour last, got %s", got[len(got)-1])
	}

	if Rank(hist, 0) != nil {
		t.Fatalf("expected nil ranking for k=0")
	}
}
