package harvest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/christopherklint97/timething/internal/apiclient"
	"github.com/christopherklint97/timething/internal/period"
)

const (
	DefaultBaseURL = "https://api.harvestapp.com/v2"
	defaultPerPage = 100
)

type Options struct {
	BaseURL     string
	AccessToken string
	AccountID   string
	PerPage     int
	MaxPages    int
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Client reads time entries and project assignments from the tracking
// service.
type Client struct {
	api      *apiclient.Client
	perPage  int
	maxPages int
	logger   *slog.Logger
}

func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		api: apiclient.New(apiclient.Options{
			Service: "harvest",
			BaseURL: baseURL,
			Token:   opts.AccessToken,
			Headers: map[string]string{"Harvest-Account-ID": opts.AccountID},
			Timeout: opts.Timeout,
			Logger:  logger,
		}),
		perPage:  perPage,
		maxPages: opts.MaxPages,
		logger:   logger,
	}
}

// Me returns the Harvest user id of the authenticated user.
func (c *Client) Me(ctx context.Context) (int64, error) {
	var user User
	if err := c.api.Get(ctx, "users/me", nil, &user); err != nil {
		return 0, fmt.Errorf("getting harvest user: %w", err)
	}
	if user.ID == 0 {
		return 0, apiclient.MissingField("harvest", "id")
	}
	return user.ID, nil
}

type timeEntriesPage struct {
	TimeEntries *[]TimeEntry `json:"time_entries"`
	Page        int          `json:"page"`
	TotalPages  int          `json:"total_pages"`
}

// ListTimeEntries returns the user's time entries within r.
func (c *Client) ListTimeEntries(ctx context.Context, userID int64, r period.Range) (apiclient.Pages[TimeEntry], error) {
	fetch := func(ctx context.Context, page int) ([]TimeEntry, apiclient.PageInfo, error) {
		query := url.Values{
			"user_id":  {strconv.FormatInt(userID, 10)},
			"from":     {r.StartDate()},
			"to":       {r.EndDate()},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.perPage)},
		}
		var resp timeEntriesPage
		if err := c.api.Get(ctx, "time_entries", query, &resp); err != nil {
			return nil, apiclient.PageInfo{}, fmt.Errorf("getting time entries page %d: %w", page, err)
		}
		if resp.TimeEntries == nil {
			return nil, apiclient.PageInfo{}, apiclient.MissingField("harvest", "time_entries")
		}
		return *resp.TimeEntries, apiclient.PageInfo{Page: resp.Page, TotalPages: resp.TotalPages}, nil
	}

	pages, err := apiclient.Paginate(ctx, c.maxPages, fetch)
	if err != nil {
		return pages, err
	}
	if pages.Truncated {
		c.logger.Warn("time entries truncated at page limit", "pages", pages.Fetched, "entries", len(pages.Items))
	}
	c.logger.Debug("time entries fetched", "count", len(pages.Items), "pages", pages.Fetched)
	return pages, nil
}

type projectAssignmentsPage struct {
	ProjectAssignments *[]ProjectAssignment `json:"project_assignments"`
	Page               int                  `json:"page"`
	TotalPages         int                  `json:"total_pages"`
}

// ListProjectAssignments returns every project the user is assigned to,
// with nested client and task metadata.
func (c *Client) ListProjectAssignments(ctx context.Context) (apiclient.Pages[ProjectAssignment], error) {
	fetch := func(ctx context.Context, page int) ([]ProjectAssignment, apiclient.PageInfo, error) {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.perPage)},
		}
		var resp projectAssignmentsPage
		if err := c.api.Get(ctx, "users/me/project_assignments", query, &resp); err != nil {
			return nil, apiclient.PageInfo{}, fmt.Errorf("getting project assignments page %d: %w", page, err)
		}
		if resp.ProjectAssignments == nil {
			return nil, apiclient.PageInfo{}, apiclient.MissingField("harvest", "project_assignments")
		}
		return *resp.ProjectAssignments, apiclient.PageInfo{Page: resp.Page, TotalPages: resp.TotalPages}, nil
	}

	pages, err := apiclient.Paginate(ctx, c.maxPages, fetch)
	if err != nil {
		return pages, err
	}
	if pages.Truncated {
		c.logger.Warn("project assignments truncated at page limit", "pages", pages.Fetched, "assignments", len(pages.Items))
	}
	return pages, nil
}
