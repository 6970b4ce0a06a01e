package gcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"GoldenTickets/internal/domain"
)

type fakeCalendarAPI struct {
	mu        sync.Mutex
	calendars []map[string]any
	events    []map[string]any
	inserted  []calendar.Event
	created   []calendar.Calendar
	deleted   []string
	goneIDs   map[string]bool
}

func (f *fakeCalendarAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/users/me/calendarList"):
		_ = json.NewEncoder(w).Encode(map[string]any{"items": f.calendars})

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/calendars"):
		var cal calendar.Calendar
		_ = json.NewDecoder(r.Body).Decode(&cal)
		f.created = append(f.created, cal)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "new-cal", "summary": cal.Summary})

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/events"):
		_ = json.NewEncoder(w).Encode(map[string]any{"items": f.events})

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/events"):
		var ev calendar.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		f.inserted = append(f.inserted, ev)
		ev.Id = "evt-new"
		_ = json.NewEncoder(w).Encode(ev)

	case r.Method == http.MethodDelete:
		id := path[strings.LastIndex(path, "/")+1:]
		if f.goneIDs[id] {
			w.WriteHeader(http.StatusGone)
			_, _ = w.Write([]byte(`{"error":{"code":410,"message":"Resource has been deleted"}}`))
			return
		}
		f.deleted = append(f.deleted, id)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
	}
}

func newTestService(t *testing.T, api *fakeCalendarAPI) *Service {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := New(context.Background(), nil, ClientOptions(Credentials{Endpoint: srv.URL + "/"})...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func TestEnsureCalendarFindsExisting(t *testing.T) {
	t.Parallel()

	api := &fakeCalendarAPI{calendars: []map[string]any{
		{"id": "primary", "summary": "me@example.com"},
		{"id": "gt-cal", "summary": "Golden Tickets"},
	}}
	svc := newTestService(t, api)

	id, err := svc.EnsureCalendar(context.Background(), "Golden Tickets")
	if err != nil {
		t.Fatalf("EnsureCalendar: %v", err)
	}
	if id != "gt-cal" {
		t.Fatalf("expected gt-cal, got %s", id)
	}
	if len(api.created) != 0 {
		t.Fatalf("no calendar should be created")
	}
}

func TestEnsureCalendarCreatesMissing(t *testing.T) {
	t.Parallel()

	api := &fakeCalendarAPI{}
	svc := newTestService(t, api)

	id, err := svc.EnsureCalendar(context.Background(), "Golden Tickets")
	if err != nil {
		t.Fatalf("EnsureCalendar: %v", err)
	}
	if id != "new-cal" {
		t.Fatalf("expected new-cal, got %s", id)
	}
	if len(api.created) != 1 || api.created[0].Summary != "Golden Tickets" || api.created[0].TimeZone != "UTC" {
		t.Fatalf("unexpected created calendars %+v", api.created)
	}
}

func TestListEntries(t *testing.T) {
	t.Parallel()

	api := &fakeCalendarAPI{events: []map[string]any{
		{
			"id":       "e1",
			"location": "1001",
			"summary":  "Today you're working on issue #1 (id:1001)",
			"start":    map[string]any{"dateTime": "2025-11-11T09:00:00Z", "timeZone": "UTC"},
			"end":      map[string]any{"dateTime": "2025-11-11T10:00:00Z", "timeZone": "UTC"},
		},
		{
			"id":    "e2",
			"start": map[string]any{"date": "2025-11-12"},
			"end":   map[string]any{"date": "2025-11-13"},
		},
		{"id": "e3", "status": "cancelled"},
		{"id": "e4", "start": map[string]any{"dateTime": "garbage"}, "end": map[string]any{"dateTime": "garbage"}},
	}}
	svc := newTestService(t, api)

	entries, err := svc.ListEntries(context.Background(), "gt-cal")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].EventID != "e1" || entries[0].LocationTag != "1001" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if !entries[0].Start.Equal(time.Date(2025, 11, 11, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", entries[0].Start)
	}
	if entries[1].LocationTag != "" || !entries[1].Start.Equal(time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected all-day entry %+v", entries[1])
	}
}

func TestCreateEntry(t *testing.T) {
	t.Parallel()

	api := &fakeCalendarAPI{}
	svc := newTestService(t, api)

	start := time.Date(2025, 11, 11, 9, 0, 0, 0, time.UTC)
	entry, err := svc.CreateEntry(context.Background(), "gt-cal", domain.EntryRequest{
		Start:       start,
		End:         start.Add(time.Hour),
		LocationTag: "1001",
		Summary:     "Today you're working on issue #1 (id:1001)",
		Description: "Title: fix\n",
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if entry.EventID != "evt-new" || entry.LocationTag != "1001" || !entry.Start.Equal(start) {
		t.Fatalf("unexpected entry %+v", entry)
	}

	if len(api.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(api.inserted))
	}
	sent := api.inserted[0]
	if sent.Location != "1001" || sent.Description != "Title: fix\n" {
		t.Fatalf("unexpected payload %+v", sent)
	}
	if sent.Start.DateTime != "2025-11-11T09:00:00Z" || sent.Start.TimeZone != "UTC" || sent.End.DateTime != "2025-11-11T10:00:00Z" {
		t.Fatalf("unexpected times %+v %+v", sent.Start, sent.End)
	}
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()

	api := &fakeCalendarAPI{goneIDs: map[string]bool{"gone": true}}
	svc := newTestService(t, api)

	if err := svc.DeleteEntry(context.Background(), "gt-cal", "e1"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if err := svc.DeleteEntry(context.Background(), "gt-cal", "gone"); err != nil {
		t.Fatalf("already deleted entry must not fail: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "e1" {
		t.Fatalf("unexpected deletions %v", api.deleted)
	}
}

func TestClientOptions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		creds Credentials
		count int
	}{
		{name: "ambient", creds: Credentials{}, count: 1},
		{name: "file", creds: Credentials{File: "/etc/sa.json"}, count: 2},
		{name: "inline json in file var", creds: Credentials{File: `{"type":"service_account"}`}, count: 2},
		{name: "emulator", creds: Credentials{Endpoint: "http://localhost:8085/"}, count: 3},
		{name: "json with endpoint", creds: Credentials{JSON: `{"type":"x"}`, Endpoint: "http://localhost/"}, count: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(ClientOptions(tc.creds)); got != tc.count {
				t.Fatalf("expected %d options, got %d", tc.count, got)
			}
		})
	}
}
