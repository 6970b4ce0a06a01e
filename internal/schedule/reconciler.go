package schedule

import "GoldenTickets/internal/domain"

// StaleEntries returns the entries linked to a closed item, in entry order.
func StaleEntries(entries []domain.CalendarEntry, closed []domain.WorkItem) []domain.CalendarEntry {
	closedIDs := make(map[string]struct{}, len(closed))
	for _, item := range closed {
		closedIDs[item.ExternalID] = struct{}{}
	}

	var stale []domain.CalendarEntry
	for _, e := range entries {
		if e.LocationTag == "" {
			continue
		}
		if _, ok := closedIDs[e.LocationTag]; ok {
			stale = append(stale, e)
		}
	}
	return stale
}

// UnscheduledItems returns the open items that no entry links to, keeping
// the order the tracker returned them in.
func UnscheduledItems(open []domain.WorkItem, entries []domain.CalendarEntry) []domain.WorkItem {
	linked := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		linked[e.LocationTag] = struct{}{}
	}

	var items []domain.WorkItem
	for _, item := range open {
		if _, ok := linked[item.ExternalID]; ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// Remaining drops the entries that were actually deleted.
func Remaining(entries, deleted []domain.CalendarEntry) []domain.CalendarEntry {
	gone := make(map[string]struct{}, len(deleted))
	for _, e := range deleted {
		gone[e.EventID] = struct{}{}
	}

	remaining := make([]domain.CalendarEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := gone[e.EventID]; ok {
			continue
		}
		remaining = append(remaining, e)
	}
	return remaining
}
