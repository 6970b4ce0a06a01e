package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/ports"
	"GoldenTickets/internal/schedule"
)

const (
	defaultCalendarName    = "Golden Tickets"
	defaultHistoryPageSize = 100
	recordTimeout          = 10 * time.Second
)

// Settings tunes a reconciliation run.
type Settings struct {
	CalendarName    string
	Actor           string
	HistoryPageSize int
	GoldenHours     int
	SlotDuration    time.Duration
	RunTimeout      time.Duration
	DryRun          bool
	ReportSubject   string
}

// PipelineDeps wires all driven adapters into the reconciliation pipeline.
type PipelineDeps struct {
	Calendar  ports.CalendarService
	WorkItems ports.WorkItemService
	History   ports.HistoryService
	Notifiers []ports.Notifier
	Recorder  ports.RunRecorder
	Logger    *slog.Logger
	Settings  Settings

	// NewRunID and Clock are replaced in tests.
	NewRunID func() string
	Clock    func() time.Time
}

// Pipeline implements the calendar reconciliation workflow.
type Pipeline struct {
	calendar  ports.CalendarService
	workItems ports.WorkItemService
	history   ports.HistoryService
	notifiers []ports.Notifier
	recorder  ports.RunRecorder
	logger    *slog.Logger
	settings  Settings
	newRunID  func() string
	clock     func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		calendar:  deps.Calendar,
		workItems: deps.WorkItems,
		history:   deps.History,
		notifiers: deps.Notifiers,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		settings:  deps.Settings,
		newRunID:  deps.NewRunID,
		clock:     deps.Clock,
	}

	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.settings.CalendarName == "" {
		p.settings.CalendarName = defaultCalendarName
	}
	if p.settings.HistoryPageSize <= 0 {
		p.settings.HistoryPageSize = defaultHistoryPageSize
	}
	if p.settings.GoldenHours <= 0 {
		p.settings.GoldenHours = schedule.DefaultGoldenHours
	}
	if p.settings.SlotDuration <= 0 {
		p.settings.SlotDuration = schedule.DefaultSlotDuration
	}

	return p
}

type snapshot struct {
	entries  []domain.CalendarEntry
	open     []domain.WorkItem
	closed   []domain.WorkItem
	activity []domain.ActivityRecord
}

// Run resolves the calendar, collects every snapshot, removes stale entries
// and books golden-hour slots for unscheduled items. Slots start on the UTC
// day after now.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.Report, error) {
	report := domain.Report{
		RunID:     p.newRunID(),
		DryRun:    p.settings.DryRun,
		Stage:     domain.StageInit,
		StartedAt: now,
	}
	log := p.logger.With("run_id", report.RunID, "dry_run", p.settings.DryRun)

	if p.calendar == nil || p.workItems == nil || p.history == nil {
		return p.finish(ctx, report, fmt.Errorf("pipeline misconfigured: calendar, work item and history services are required"))
	}

	if p.settings.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.settings.RunTimeout)
		defer cancel()
	}

	calendarID, err := p.calendar.EnsureCalendar(ctx, p.settings.CalendarName)
	if err != nil {
		return p.finish(ctx, report, fmt.Errorf("resolve calendar: %w", domain.Unavailable("calendar", "ensure", err)))
	}
	report.CalendarID = calendarID
	report.Stage = domain.StageCalendarResolved
	log.Debug("calendar resolved", "calendar", p.settings.CalendarName, "calendar_id", calendarID)

	snap, err := p.collect(ctx, calendarID)
	if err != nil {
		return p.finish(ctx, report, fmt.Errorf("collect snapshots: %w", err))
	}
	report.Entries = len(snap.entries)
	report.OpenItems = len(snap.open)
	report.ClosedItems = len(snap.closed)
	report.Activities = len(snap.activity)
	report.Stage = domain.StageHistoryCollected
	log.Debug("snapshots collected",
		"entries", report.Entries,
		"open_items", report.OpenItems,
		"closed_items", report.ClosedItems,
		"activities", report.Activities)

	report.Stale = schedule.StaleEntries(snap.entries, snap.closed)
	deleted, delErr := p.deleteStale(ctx, calendarID, report.Stale, log)
	report.Deleted = deleted
	if delErr != nil {
		report.Notices = append(report.Notices, delErr)
		log.Warn("stale cleanup incomplete", "error", delErr)
	}
	remaining := schedule.Remaining(snap.entries, deleted)
	report.Unscheduled = schedule.UnscheduledItems(snap.open, remaining)
	report.Stage = domain.StageReconciled
	log.Debug("reconciled", "stale", len(report.Stale), "deleted", len(deleted), "unscheduled", len(report.Unscheduled))

	hist, skipped := schedule.Analyze(snap.activity)
	for _, skipErr := range skipped {
		log.Warn("activity skipped", "error", skipErr)
	}
	report.SkippedRecords = skipped
	report.Ranking = schedule.Rank(hist, p.settings.GoldenHours)
	report.Slots = schedule.Project(report.Ranking, now, schedule.NewBookedWindows(remaining))
	report.Stage = domain.StageSlotsProjected
	log.Debug("slots projected", "buckets", len(report.Ranking), "slots", len(report.Slots))

	report.Planned, report.Unassigned = schedule.Pair(report.Unscheduled, report.Slots, p.settings.SlotDuration)
	if shortfall := schedule.Shortfall(len(report.Unscheduled), len(report.Slots)); shortfall != nil {
		report.Notices = append(report.Notices, shortfall)
		log.Info("pairing truncated", "reason", shortfall.Error())
	}
	report.Stage = domain.StagePaired

	if !p.settings.DryRun {
		for _, req := range report.Planned {
			created, err := p.calendar.CreateEntry(ctx, calendarID, req)
			if err != nil {
				return p.finish(ctx, report, fmt.Errorf("create entry for item %s: %w", req.LocationTag, domain.Unavailable("calendar", "create", err)))
			}
			report.Created = append(report.Created, created)
			log.Info("entry created", "event_id", created.EventID, "item", req.LocationTag, "start", req.Start.Format(time.RFC3339))
		}
	}
	report.Stage = domain.StagePosted

	if err := p.notify(ctx, report); err != nil {
		return p.finish(ctx, report, err)
	}

	report.Stage = domain.StageDone
	return p.finish(ctx, report, nil)
}

// collect fetches the four snapshots concurrently; derivation starts only
// after all of them are complete.
func (p *Pipeline) collect(ctx context.Context, calendarID string) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		closed, err := p.workItems.ListItems(gctx, domain.StateClosed)
		if err != nil {
			return domain.Unavailable("work items", "list closed", err)
		}
		snap.closed = closed
		return nil
	})
	g.Go(func() error {
		entries, err := p.calendar.ListEntries(gctx, calendarID)
		if err != nil {
			return domain.Unavailable("calendar", "list entries", err)
		}
		snap.entries = entries
		return nil
	})
	g.Go(func() error {
		open, err := p.workItems.ListItems(gctx, domain.StateOpen)
		if err != nil {
			return domain.Unavailable("work items", "list open", err)
		}
		snap.open = open
		return nil
	})
	g.Go(func() error {
		activity, err := p.history.ListRecentActivity(gctx, p.settings.Actor, p.settings.HistoryPageSize)
		if err != nil {
			return domain.Unavailable("history", "list activity", err)
		}
		snap.activity = activity
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// deleteStale deletes entries one by one. Failures do not stop the loop;
// they are returned together as a *domain.DeletionError.
func (p *Pipeline) deleteStale(ctx context.Context, calendarID string, stale []domain.CalendarEntry, log *slog.Logger) ([]domain.CalendarEntry, error) {
	if len(stale) == 0 {
		return nil, nil
	}
	if p.settings.DryRun {
		return stale, nil
	}

	var (
		deleted []domain.CalendarEntry
		failed  []domain.FailedDeletion
	)
	for _, entry := range stale {
		if err := p.calendar.DeleteEntry(ctx, calendarID, entry.EventID); err != nil {
			failed = append(failed, domain.FailedDeletion{
				Entry: entry,
				Err:   domain.Unavailable("calendar", "delete", err),
			})
			continue
		}
		deleted = append(deleted, entry)
		log.Info("stale entry deleted", "event_id", entry.EventID, "item", entry.LocationTag)
	}

	if len(failed) > 0 {
		return deleted, &domain.DeletionError{Failed: failed}
	}
	return deleted, nil
}

func (p *Pipeline) notify(ctx context.Context, report domain.Report) error {
	if len(p.notifiers) == 0 || !worthReporting(report) {
		return nil
	}

	subject := BuildReportSubject(p.settings.ReportSubject, report)
	body := BuildReportMessage(report)

	var errs []error
	for _, n := range p.notifiers {
		if n == nil {
			continue
		}
		if err := n.PublishReport(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

func (p *Pipeline) finish(ctx context.Context, report domain.Report, runErr error) (domain.Report, error) {
	report.FinishedAt = p.clock()

	if p.recorder != nil {
		// The run context may already be past RunTimeout; failed runs still get recorded.
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		if err := p.recorder.Record(recordCtx, report); err != nil {
			p.logger.Warn("record run", "run_id", report.RunID, "error", err)
		}
	}

	return report, runErr
}

func worthReporting(report domain.Report) bool {
	return len(report.Created) > 0 || len(report.Deleted) > 0 || len(report.Notices) > 0 || (report.DryRun && len(report.Planned) > 0)
}
