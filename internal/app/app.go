package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"GoldenTickets/internal/config"
	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/history"
	"GoldenTickets/internal/infrastructure/gcal"
	"GoldenTickets/internal/infrastructure/github"
	"GoldenTickets/internal/infrastructure/metrics"
	"GoldenTickets/internal/infrastructure/scheduler"
	"GoldenTickets/internal/infrastructure/sendgrid"
	"GoldenTickets/internal/infrastructure/storage"
	"GoldenTickets/internal/infrastructure/telegram"
	"GoldenTickets/internal/logging"
	"GoldenTickets/internal/ports"
	"GoldenTickets/internal/usecase"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	deps   usecase.PipelineDeps
}

// New builds every adapter named by cfg. Close releases what it opened.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	calendarSvc, err := gcal.New(ctx, logging.Component(baseLogger, "calendar"), gcal.ClientOptions(gcal.Credentials{
		File:     cfg.Calendar.CredentialsFile,
		JSON:     cfg.Calendar.CredentialsJSON,
		Endpoint: cfg.Calendar.Endpoint,
	})...)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(github.Options{
		BaseURL:    cfg.GitHub.BaseURL,
		Token:      cfg.GitHub.Token,
		UserAgent:  cfg.GitHub.UserAgent,
		Timeout:    cfg.GitHub.Timeout,
		MaxRetries: cfg.GitHub.MaxRetries,
		Logger:     logging.Component(baseLogger, "github"),
	})
	issues := github.NewIssueService(client, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.MaxPages, cfg.GitHub.IncludePullRequests)

	historySvc, err := a.historySource(client)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.deps = usecase.PipelineDeps{
		Calendar:  calendarSvc,
		WorkItems: issues,
		History:   historySvc,
		Notifiers: a.notifiers(),
		Recorder:  metrics.NewRecorder(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job),
		Logger:    logging.Component(baseLogger, "pipeline"),
		Settings: usecase.Settings{
			CalendarName:    cfg.Calendar.Name,
			Actor:           cfg.History.Actor,
			HistoryPageSize: cfg.History.PageSize,
			GoldenHours:     cfg.Schedule.GoldenHours,
			SlotDuration:    cfg.Schedule.SlotDuration,
			RunTimeout:      cfg.Schedule.RunTimeout,
			DryRun:          cfg.Schedule.DryRun,
			ReportSubject:   cfg.Notifications.SubjectPrefix,
		},
	}

	return a, nil
}

func (a *Application) historySource(client *github.Client) (ports.HistoryService, error) {
	cfg := a.cfg
	registry := history.NewRegistry()
	registry.Register(github.NewEventHistory(client, cfg.History.Kinds))

	var archive *storage.PostgresHistory
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		archive = storage.NewPostgresHistory(db, cfg.Database.Table, cfg.History.Kinds)
		registry.Register(archive)
	}

	source, err := registry.Resolve(cfg.History.Source)
	if err != nil {
		return nil, err
	}
	if archive != nil && source.Name() != archive.Name() {
		source = history.NewArchiving(source, archive, logging.Component(a.logger, "history"))
	}

	a.logger.Debug("history source selected", "source", source.Name(), "archived", archive != nil)
	return source, nil
}

func (a *Application) notifiers() []ports.Notifier {
	var out []ports.Notifier

	tg := a.cfg.Notifications.Telegram
	if tg.Enabled() {
		out = append(out, telegram.NewNotifier(tg.BotToken, tg.ChatID))
	}

	sg := a.cfg.Notifications.SendGrid
	if sg.Enabled() {
		n, err := sendgrid.New(sendgrid.Config{
			APIKey:    sg.APIKey,
			BaseURL:   sg.BaseURL,
			FromEmail: sg.FromEmail,
			FromName:  sg.FromName,
			To:        sg.To,
		})
		if err != nil {
			a.logger.Warn("sendgrid disabled", "error", err)
		} else {
			out = append(out, n)
		}
	}

	return out
}

// Run performs one reconciliation pass at the current time.
func (a *Application) Run(ctx context.Context) (domain.Report, error) {
	return usecase.NewPipeline(a.deps).Run(ctx, a.now())
}

// Plan performs a dry run: nothing is deleted, created or sent.
func (a *Application) Plan(ctx context.Context) (domain.Report, error) {
	deps := a.deps
	deps.Settings.DryRun = true
	deps.Notifiers = nil
	return usecase.NewPipeline(deps).Run(ctx, a.now())
}

// Watch runs the pipeline every schedule interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	driver := scheduler.NewTickerScheduler(a.cfg.Schedule.Interval)
	sched := usecase.NewScheduler(driver, usecase.NewPipeline(a.deps), a.cfg.Schedule.Location(), logging.Component(a.logger, "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching", "interval", driver.Interval(), "calendar", a.cfg.Calendar.Name)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

// Close releases the database handle, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Application) now() time.Time {
	return time.Now().In(a.cfg.Schedule.Location())
}
