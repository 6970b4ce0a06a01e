package ports

import (
	"context"
	"time"

	"GoldenTickets/internal/domain"
)

// CalendarService manages the target calendar and its entries.
type CalendarService interface {
	EnsureCalendar(ctx context.Context, name string) (string, error)
	ListEntries(ctx context.Context, calendarID string) ([]domain.CalendarEntry, error)
	CreateEntry(ctx context.Context, calendarID string, req domain.EntryRequest) (domain.CalendarEntry, error)
	DeleteEntry(ctx context.Context, calendarID, eventID string) error
}

// WorkItemService lists trackable items (issues) by state.
type WorkItemService interface {
	ListItems(ctx context.Context, state domain.ItemState) ([]domain.WorkItem, error)
}

// HistoryService returns the actor's most recent activity.
type HistoryService interface {
	ListRecentActivity(ctx context.Context, actor string, pageSize int) ([]domain.ActivityRecord, error)
}

// Notifier delivers the rendered run report to a channel (email, Telegram).
type Notifier interface {
	PublishReport(ctx context.Context, subject, body string) error
}

// RunRecorder exports run outcomes (metrics).
type RunRecorder interface {
	Record(ctx context.Context, report domain.Report) error
}

// Scheduler controls when runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
