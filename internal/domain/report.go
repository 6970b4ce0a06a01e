package domain

import "time"

// Stage enumerates the run milestones in the order they are reached.
type Stage string

const (
	StageInit             Stage = "init"
	StageCalendarResolved Stage = "calendar_resolved"
	StageHistoryCollected Stage = "history_collected"
	StageReconciled       Stage = "reconciled"
	StageSlotsProjected   Stage = "slots_projected"
	StagePaired           Stage = "paired"
	StagePosted           Stage = "posted"
	StageDone             Stage = "done"
)

// Report summarizes one reconciliation run.
type Report struct {
	RunID      string
	DryRun     bool
	Stage      Stage
	CalendarID string
	StartedAt  time.Time
	FinishedAt time.Time

	Activities     int
	OpenItems      int
	ClosedItems    int
	Entries        int
	Stale          []CalendarEntry
	Deleted        []CalendarEntry
	Unscheduled    []WorkItem
	Ranking        []HourBucket
	Slots          []ScheduledSlot
	Planned        []EntryRequest
	Created        []CalendarEntry
	Unassigned     []WorkItem
	SkippedRecords []error
	Notices        []error
}
