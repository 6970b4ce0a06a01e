package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"

	"GoldenTickets/internal/domain"
)

func TestPairTruncatesItems(t *testing.T) {
	t.Parallel()

	items := []domain.WorkItem{
		{ExternalID: "301", Number: 7, Title: "Fix login", URL: "https://github.com/o/r/issues/7"},
		{ExternalID: "302", Number: 8, Title: "Docs"},
	}
	slots := []domain.ScheduledSlot{{Instant: time.Date(2025, time.November, 17, 9, 0, 0, 0, time.UTC)}}

	requests, unassigned := Pair(items, slots, 0)
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if len(unassigned) != 1 || unassigned[0].ExternalID != "302" {
		t.Fatalf("expected item 302 to be left over, got %v", unassigned)
	}

	req := requests[0]
	if req.End.Sub(req.Start) != time.Hour {
		t.Fatalf("expected a one hour entry, got %v", req.End.Sub(req.Start))
	}
	if req.LocationTag != "301" {
		t.Fatalf("expected location tag 301, got %s", req.LocationTag)
	}
	if !strings.Contains(req.Summary, "#7") || !strings.Contains(req.Summary, "id:301") {
		t.Fatalf("unexpected summary %q", req.Summary)
	}
	if !strings.Contains(req.Description, "Fix login") || !strings.Contains(req.Description, items[0].URL) {
		t.Fatalf("unexpected description %q", req.Description)
	}

	err := Shortfall(len(items), len(slots))
	if !errors.Is(err, domain.ErrInsufficientSlots) || errors.Is(err, domain.ErrInsufficientItems) {
		t.Fatalf("expected ErrInsufficientSlots, got %v", err)
	}
}

func TestPairIgnoresSurplusSlots(t *testing.T) {
	t.Parallel()

	items := []domain.WorkItem{{ExternalID: "401", Number: 1}}
	slots := []domain.ScheduledSlot{
		{Instant: time.Date(2025, time.November, 12, 10, 0, 0, 0, time.UTC)},
		{Instant: time.Date(2025, time.November, 13, 10, 0, 0, 0, time.UTC)},
	}

	requests, unassigned := Pair(items, slots, 30*time.Minute)
	if len(requests) != 1 || len(unassigned) != 0 {
		t.Fatalf("expected 1 request and no leftovers, got %d/%d", len(requests), len(unassigned))
	}
	if !requests[0].Start.Equal(slots[0].Instant) {
		t.Fatalf("expected the first slot to be used")
	}
	if requests[0].End.Sub(requests[0].Start) != 30*time.Minute {
		t.Fatalf("expected configured duration")
	}

	if err := Shortfall(1, 2); !errors.Is(err, domain.ErrInsufficientItems) {
		t.Fatalf("expected ErrInsufficientItems, got %v", err)
	}
	if err := Shortfall(2, 2); err != nil {
		t.Fatalf("expected no shortfall, got %v", err)
	}
}

func TestPairSizes(t *testing.T) {
	t.Parallel()

	for items := 0; items < 4; items++ {
		for slots := 0; slots < 4; slots++ {
			its := make([]domain.WorkItem, items)
			for i := range its {
				its[i] = domain.WorkItem{ExternalID: string(rune('a' + i))}
			}
			sls := make([]domain.ScheduledSlot, slots)
			for i := range sls {
				sls[i] = domain.ScheduledSlot{Instant: runDay.AddDate(0, 0, i+1)}
			}

			requests, unassigned := Pair(its, sls, 0)
			if len(requests) != min(items, slots) {
				t.Fatalf("%d items, %d slots: got %d requests", items, slots, len(requests))
			}
			if len(requests)+len(unassigned) != items {
				t.Fatalf("%d items, %d slots: lost items", items, slots)
			}
			for i, r := range requests {
				if r.LocationTag != its[i].ExternalID {
					t.Fatalf("request %d tagged %s, want %s", i, r.LocationTag, its[i].ExternalID)
				}
			}
		}
	}
}
