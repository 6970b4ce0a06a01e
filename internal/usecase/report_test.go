package usecase

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"GoldenTickets/internal/domain"
)

func sampleReport() domain.Report {
	start := time.Date(2025, 11, 12, 14, 0, 0, 0, time.UTC)
	req := domain.EntryRequest{Start: start, End: start.Add(time.Hour), LocationTag: "100", Summary: "Today you're working on issue #1 (id:100)"}
	return domain.Report{
		RunID:      "run-1",
		Stage:      domain.StageDone,
		CalendarID: "gt",
		OpenItems:  2,
		Ranking: []domain.HourBucket{
			{Weekday: time.Wednesday, Hour: 14},
			{Weekday: time.Tuesday, Hour: 9},
		},
		Planned:    []domain.EntryRequest{req},
		Created:    []domain.CalendarEntry{{EventID: "new-1", LocationTag: "100", Start: start}},
		Stale:      []domain.CalendarEntry{{EventID: "e-9", LocationTag: "900", Summary: "old", Start: start.Add(-24 * time.Hour)}},
		Deleted:    []domain.CalendarEntry{{EventID: "e-9", LocationTag: "900", Summary: "old", Start: start.Add(-24 * time.Hour)}},
		Unassigned: []domain.WorkItem{{ExternalID: "200", Number: 2, Title: "later"}},
		Notices:    []error{&domain.ShortfallError{Items: 2, Slots: 1}},
	}
}

func TestBuildReportSubject(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	require.Equal(t, "[Golden Tickets] 1 scheduled, 1 removed", BuildReportSubject("  ", report))

	report.DryRun = true
	require.Equal(t, "[GT] plan: 1 to schedule, 1 to remove", BuildReportSubject("[GT]", report))
}

func TestBuildReportMessage(t *testing.T) {
	t.Parallel()

	msg := BuildReportMessage(sampleReport())

	require.True(t, strings.HasPrefix(msg, "Run run-1 (done)\n"))
	require.Less(t, strings.Index(msg, "- Tue 09:00"), strings.Index(msg, "- Wed 14:00"), "busiest bucket first")
	require.Contains(t, msg, "Removed (item closed):\n- 2025-11-11T14:00:00Z old\n")
	require.Contains(t, msg, "Scheduled:\n- 2025-11-12T14:00:00Z Today you're working on issue #1 (id:100)\n")
	require.Contains(t, msg, "Left for a later run:\n- #2 later\n")
	require.Contains(t, msg, "Note: 2 items waiting, only 1 slots")
	require.True(t, strings.HasSuffix(msg, "\n"))
	require.False(t, strings.HasSuffix(msg, "\n\n"))
}

func TestBuildReportMessageOnlyListsCreatedEntries(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	report.Created = nil
	report.Stage = domain.StagePaired

	require.NotContains(t, BuildReportMessage(report), "Scheduled:")
}

func TestBuildReportJSON(t *testing.T) {
	t.Parallel()

	raw, err := BuildReportJSON(sampleReport())
	require.NoError(t, err)

	var out struct {
		RunID       string   `json:"runId"`
		GoldenHours []string `json:"goldenHours"`
		Assignments []struct {
			Item  string    `json:"item"`
			Start time.Time `json:"start"`
		} `json:"assignments"`
		Removals []struct {
			EventID string `json:"eventId"`
		} `json:"removals"`
		Unassigned []string `json:"unassigned"`
		Notices    []string `json:"notices"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))

	require.Equal(t, "run-1", out.RunID)
	require.Equal(t, []string{"Tue 09:00", "Wed 14:00"}, out.GoldenHours)
	require.Len(t, out.Assignments, 1)
	require.Equal(t, "100", out.Assignments[0].Item)
	require.Equal(t, "e-9", out.Removals[0].EventID)
	require.Equal(t, []string{"200"}, out.Unassigned)
	require.Len(t, out.Notices, 1)
}

func TestBuildReportJSONEmptyListsAreArrays(t *testing.T) {
	t.Parallel()

	raw, err := BuildReportJSON(domain.Report{RunID: "r"})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"assignments": []`)
	require.Contains(t, string(raw), `"unassigned": []`)
}
