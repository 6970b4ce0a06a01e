package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/ports"
)

const maxEventsPageSize = 100

type event struct {
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// EventHistory reads a user's public events feed as activity history.
type EventHistory struct {
	client *Client
	kinds  map[string]struct{}
}

var _ ports.HistoryService = (*EventHistory)(nil)

// NewEventHistory builds the history source. When kinds is non-empty only
// those event types are returned.
func NewEventHistory(client *Client, kinds []string) *EventHistory {
	h := &EventHistory{client: client}
	if len(kinds) > 0 {
		h.kinds = make(map[string]struct{}, len(kinds))
		for _, k := range kinds {
			h.kinds[k] = struct{}{}
		}
	}
	return h
}

// Name identifies the source inside the history registry.
func (h *EventHistory) Name() string {
	return "github"
}

// ListRecentActivity fetches one page of the actor's events. Timestamps are
// passed through untouched so the analyzer can reject bad ones.
func (h *EventHistory) ListRecentActivity(ctx context.Context, actor string, pageSize int) ([]domain.ActivityRecord, error) {
	if h.client == nil {
		return nil, fmt.Errorf("github client is not configured")
	}
	if actor == "" {
		return nil, fmt.Errorf("actor is required")
	}
	if pageSize <= 0 || pageSize > maxEventsPageSize {
		pageSize = maxEventsPageSize
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(pageSize))

	var events []event
	path := fmt.Sprintf("/users/%s/events", url.PathEscape(actor))
	if err := h.client.getJSON(ctx, path, query, "", &events); err != nil {
		return nil, fmt.Errorf("list events for %s: %w", actor, err)
	}

	records := make([]domain.ActivityRecord, 0, len(events))
	for _, ev := range events {
		if h.kinds != nil {
			if _, ok := h.kinds[ev.Type]; !ok {
				continue
			}
		}
		records = append(records, domain.ActivityRecord{Kind: ev.Type, CreatedAt: ev.CreatedAt})
	}
	return records, nil
}
