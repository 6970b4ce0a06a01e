package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"GoldenTickets/internal/domain"
)

const defaultReportSubject = "[Golden Tickets]"

// BuildReportSubject renders a one-line summary for notification channels.
func BuildReportSubject(prefix string, report domain.Report) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultReportSubject
	}
	if report.DryRun {
		return fmt.Sprintf("%s plan: %d to schedule, %d to remove", prefix, len(report.Planned), len(report.Stale))
	}
	return fmt.Sprintf("%s %d scheduled, %d removed", prefix, len(report.Created), len(report.Deleted))
}

// BuildReportMessage renders the run report as plain text.
func BuildReportMessage(report domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s (%s)\n", report.RunID, report.Stage)
	fmt.Fprintf(&b, "Open items: %d, closed items: %d, calendar entries: %d, activities: %d\n\n",
		report.OpenItems, report.ClosedItems, report.Entries, report.Activities)

	if len(report.Ranking) > 0 {
		b.WriteString("Golden hours (UTC, busiest first):\n")
		for i := len(report.Ranking) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "- %s\n", report.Ranking[i])
		}
		b.WriteString("\n")
	}

	if len(report.Deleted) > 0 {
		b.WriteString("Removed (item closed):\n")
		for _, e := range report.Deleted {
			fmt.Fprintf(&b, "- %s %s\n", e.Start.UTC().Format(time.RFC3339), e.Summary)
		}
		b.WriteString("\n")
	}

	scheduled := report.Planned
	if !report.DryRun {
		scheduled = scheduled[:len(report.Created)]
	}
	if len(scheduled) > 0 {
		b.WriteString("Scheduled:\n")
		for _, req := range scheduled {
			fmt.Fprintf(&b, "- %s %s\n", req.Start.UTC().Format(time.RFC3339), req.Summary)
		}
		b.WriteString("\n")
	}

	if len(report.Unassigned) > 0 {
		b.WriteString("Left for a later run:\n")
		for _, item := range report.Unassigned {
			fmt.Fprintf(&b, "- #%d %s\n", item.Number, item.Title)
		}
		b.WriteString("\n")
	}

	for _, n := range report.Notices {
		fmt.Fprintf(&b, "Note: %v\n", n)
	}
	if len(report.SkippedRecords) > 0 {
		fmt.Fprintf(&b, "Note: %d activity records skipped\n", len(report.SkippedRecords))
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// BuildReportJSON renders the planned assignments for machine consumption.
func BuildReportJSON(report domain.Report) ([]byte, error) {
	type assignment struct {
		Item    string    `json:"item"`
		Start   time.Time `json:"start"`
		End     time.Time `json:"end"`
		Summary string    `json:"summary"`
	}
	type removal struct {
		EventID string `json:"eventId"`
		Item    string `json:"item"`
	}
	type payload struct {
		RunID       string       `json:"runId"`
		Stage       string       `json:"stage"`
		DryRun      bool         `json:"dryRun"`
		CalendarID  string       `json:"calendarId"`
		GoldenHours []string     `json:"goldenHours"`
		Assignments []assignment `json:"assignments"`
		Removals    []removal    `json:"removals"`
		Unassigned  []string     `json:"unassigned"`
		Notices     []string     `json:"notices"`
	}

	out := payload{
		RunID:       report.RunID,
		Stage:       string(report.Stage),
		DryRun:      report.DryRun,
		CalendarID:  report.CalendarID,
		GoldenHours: []string{},
		Assignments: []assignment{},
		Removals:    []removal{},
		Unassigned:  []string{},
		Notices:     []string{},
	}
	for i := len(report.Ranking) - 1; i >= 0; i-- {
		out.GoldenHours = append(out.GoldenHours, report.Ranking[i].String())
	}
	for _, req := range report.Planned {
		out.Assignments = append(out.Assignments, assignment{
			Item:    req.LocationTag,
			Start:   req.Start,
			End:     req.End,
			Summary: req.Summary,
		})
	}
	for _, e := range report.Stale {
		out.Removals = append(out.Removals, removal{EventID: e.EventID, Item: e.LocationTag})
	}
	for _, item := range report.Unassigned {
		out.Unassigned = append(out.Unassigned, item.ExternalID)
	}
	for _, n := range report.Notices {
		out.Notices = append(out.Notices, n.Error())
	}

	return json.MarshalIndent(out, "", "  ")
}
