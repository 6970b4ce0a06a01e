package domain

import "time"

// CalendarEntry is an event that already exists on the target calendar.
// LocationTag carries the ExternalID of the work item it was created for.
type CalendarEntry struct {
	EventID     string
	LocationTag string
	Summary     string
	Start       time.Time
	End         time.Time
}

// EntryRequest describes a calendar entry to be created.
type EntryRequest struct {
	Start       time.Time
	End         time.Time
	LocationTag string
	Summary     string
	Description string
}
