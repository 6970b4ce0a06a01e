package domain

// ItemState is the tracker-side lifecycle state of a work item.
type ItemState string

const (
	StateOpen   ItemState = "open"
	StateClosed ItemState = "closed"
)

// WorkItem is an externally tracked task (e.g. a GitHub issue).
type WorkItem struct {
	ExternalID string
	Number     int
	Title      string
	URL        string
	State      ItemState
	// Excerpt is a short plain-text rendering of the item body, if any.
	Excerpt string
}
