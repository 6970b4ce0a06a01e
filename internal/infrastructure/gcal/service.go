// Package gcal implements the calendar service on top of Google Calendar v3.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/ports"
)

const entryTimeZone = "UTC"

// Credentials selects how the client authenticates. JSON wins over File;
// an Endpoint without credentials disables authentication (emulators, tests).
type Credentials struct {
	File     string
	JSON     string
	Endpoint string
}

// ClientOptions turns Credentials into google API client options.
func ClientOptions(c Credentials) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(calendar.CalendarScope)}

	creds := strings.TrimSpace(c.JSON)
	if creds == "" {
		creds = strings.TrimSpace(c.File)
	}
	switch {
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	case creds != "":
		opts = append(opts, option.WithCredentialsFile(creds))
	case c.Endpoint != "":
		opts = append(opts, option.WithoutAuthentication())
	}

	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	return opts
}

// Service talks to Google Calendar.
type Service struct {
	api    *calendar.Service
	logger *slog.Logger
}

var _ ports.CalendarService = (*Service)(nil)

// New dials the Calendar API with opts.
func New(ctx context.Context, logger *slog.Logger, opts ...option.ClientOption) (*Service, error) {
	api, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{api: api, logger: logger}, nil
}

// EnsureCalendar returns the id of the calendar whose summary equals name,
// creating it when no such calendar exists.
func (s *Service) EnsureCalendar(ctx context.Context, name string) (string, error) {
	var id string
	errFound := errors.New("found")

	err := s.api.CalendarList.List().Context(ctx).Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			if item.Summary == name {
				id = item.Id
				return errFound
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("list calendars: %w", err)
	}
	if id != "" {
		return id, nil
	}

	created, err := s.api.Calendars.Insert(&calendar.Calendar{
		Summary:  name,
		TimeZone: entryTimeZone,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create calendar %q: %w", name, err)
	}
	s.logger.Info("calendar created", "calendar", name, "calendar_id", created.Id)
	return created.Id, nil
}

// ListEntries returns every non-cancelled event on the calendar.
func (s *Service) ListEntries(ctx context.Context, calendarID string) ([]domain.CalendarEntry, error) {
	var entries []domain.CalendarEntry

	err := s.api.Events.List(calendarID).SingleEvents(true).Context(ctx).Pages(ctx, func(page *calendar.Events) error {
		for _, ev := range page.Items {
			if ev.Status == "cancelled" {
				continue
			}
			entry, err := toEntry(ev)
			if err != nil {
				s.logger.Warn("calendar entry skipped", "event_id", ev.Id, "error", err)
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return entries, nil
}

// CreateEntry inserts a UTC event tagged with the item id in its location.
func (s *Service) CreateEntry(ctx context.Context, calendarID string, req domain.EntryRequest) (domain.CalendarEntry, error) {
	ev := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.LocationTag,
		Start:       &calendar.EventDateTime{DateTime: req.Start.UTC().Format(time.RFC3339), TimeZone: entryTimeZone},
		End:         &calendar.EventDateTime{DateTime: req.End.UTC().Format(time.RFC3339), TimeZone: entryTimeZone},
	}

	created, err := s.api.Events.Insert(calendarID, ev).Context(ctx).Do()
	if err != nil {
		return domain.CalendarEntry{}, fmt.Errorf("insert event: %w", err)
	}

	entry, err := toEntry(created)
	if err != nil {
		// The API echoed something unexpected; fall back to what was sent.
		entry = domain.CalendarEntry{
			EventID:     created.Id,
			LocationTag: req.LocationTag,
			Summary:     req.Summary,
			Start:       req.Start.UTC(),
			End:         req.End.UTC(),
		}
	}
	return entry, nil
}

// DeleteEntry removes an event. An event that is already gone counts as
// deleted.
func (s *Service) DeleteEntry(ctx context.Context, calendarID, eventID string) error {
	err := s.api.Events.Delete(calendarID, eventID).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusGone {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

func toEntry(ev *calendar.Event) (domain.CalendarEntry, error) {
	start, err := parseEventTime(ev.Start)
	if err != nil {
		return domain.CalendarEntry{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseEventTime(ev.End)
	if err != nil {
		return domain.CalendarEntry{}, fmt.Errorf("end: %w", err)
	}
	return domain.CalendarEntry{
		EventID:     ev.Id,
		LocationTag: strings.TrimSpace(ev.Location),
		Summary:     ev.Summary,
		Start:       start,
		End:         end,
	}, nil
}

func parseEventTime(dt *calendar.EventDateTime) (time.Time, error) {
	switch {
	case dt == nil:
		return time.Time{}, errors.New("missing time")
	case dt.DateTime != "":
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	case dt.Date != "":
		return time.ParseInLocation(time.DateOnly, dt.Date, time.UTC)
	default:
		return time.Time{}, errors.New("empty time")
	}
}
