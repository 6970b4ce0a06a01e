package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/ports"
)

const (
	issuesPageSize  = 100
	defaultMaxPages = 10
	fullMediaType   = "application/vnd.github.full+json"
)

type issue struct {
	ID          int64     `json:"id"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	HTMLURL     string    `json:"html_url"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	BodyHTML    string    `json:"body_html"`
	PullRequest *struct{} `json:"pull_request"`
}

// IssueService lists repository issues as work items.
type IssueService struct {
	client              *Client
	owner               string
	repo                string
	maxPages            int
	includePullRequests bool
}

var _ ports.WorkItemService = (*IssueService)(nil)

// NewIssueService binds the client to owner/repo. maxPages caps pagination.
func NewIssueService(client *Client, owner, repo string, maxPages int, includePullRequests bool) *IssueService {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &IssueService{
		client:              client,
		owner:               owner,
		repo:                repo,
		maxPages:            maxPages,
		includePullRequests: includePullRequests,
	}
}

// ListItems walks the issue pages for the requested state.
func (s *IssueService) ListItems(ctx context.Context, state domain.ItemState) ([]domain.WorkItem, error) {
	if s.client == nil {
		return nil, fmt.Errorf("github client is not configured")
	}

	path := fmt.Sprintf("/repos/%s/%s/issues", url.PathEscape(s.owner), url.PathEscape(s.repo))
	var items []domain.WorkItem

	for page := 1; page <= s.maxPages; page++ {
		query := url.Values{}
		query.Set("state", string(state))
		query.Set("per_page", strconv.Itoa(issuesPageSize))
		query.Set("page", strconv.Itoa(page))

		var batch []issue
		if err := s.client.getJSON(ctx, path, query, fullMediaType, &batch); err != nil {
			return nil, fmt.Errorf("list %s issues page %d: %w", state, page, err)
		}

		for _, is := range batch {
			if is.PullRequest != nil && !s.includePullRequests {
				continue
			}
			items = append(items, toWorkItem(is, state))
		}

		if len(batch) < issuesPageSize {
			break
		}
	}

	return items, nil
}

func toWorkItem(is issue, requested domain.ItemState) domain.WorkItem {
	state := domain.ItemState(is.State)
	if state == "" {
		state = requested
	}
	return domain.WorkItem{
		ExternalID: strconv.FormatInt(is.ID, 10),
		Number:     is.Number,
		Title:      is.Title,
		URL:        is.HTMLURL,
		State:      state,
		Excerpt:    excerpt(is.BodyHTML, is.Body),
	}
}
