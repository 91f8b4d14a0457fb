package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/christopherklint97/timething/internal/apiclient"
	"github.com/christopherklint97/timething/internal/period"
)

const DefaultBaseURL = "https://api.forecastapp.com"

type Options struct {
	BaseURL     string
	AccessToken string
	AccountID   string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Client reads projects and assignments from the scheduling service.
type Client struct {
	api *apiclient.Client
}

func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		api: apiclient.New(apiclient.Options{
			Service: "forecast",
			BaseURL: baseURL,
			Token:   opts.AccessToken,
			Headers: map[string]string{"Forecast-Account-ID": opts.AccountID},
			Timeout: opts.Timeout,
			Logger:  opts.Logger,
		}),
	}
}

// WhoAmI returns the Forecast person id of the authenticated user.
func (c *Client) WhoAmI(ctx context.Context) (int64, error) {
	var resp struct {
		CurrentUser *Person `json:"current_user"`
	}
	if err := c.api.Get(ctx, "whoami", nil, &resp); err != nil {
		return 0, fmt.Errorf("getting forecast user: %w", err)
	}
	if resp.CurrentUser == nil || resp.CurrentUser.ID == 0 {
		return 0, apiclient.MissingField("forecast", "current_user.id")
	}
	return resp.CurrentUser.ID, nil
}

// ListProjects returns every project in the account, archived included.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var resp struct {
		Projects *[]Project `json:"projects"`
	}
	if err := c.api.Get(ctx, "projects", nil, &resp); err != nil {
		return nil, fmt.Errorf("getting forecast projects: %w", err)
	}
	if resp.Projects == nil {
		return nil, apiclient.MissingField("forecast", "projects")
	}
	return *resp.Projects, nil
}

// ListAssignments returns the person's assignments overlapping r.
func (c *Client) ListAssignments(ctx context.Context, personID int64, r period.Range) ([]Assignment, error) {
	query := url.Values{
		"person_id":  {strconv.FormatInt(personID, 10)},
		"start_date": {r.StartDate()},
		"end_date":   {r.EndDate()},
	}
	var resp struct {
		Assignments *[]Assignment `json:"assignments"`
	}
	if err := c.api.Get(ctx, "assignments", query, &resp); err != nil {
		return nil, fmt.Errorf("getting forecast assignments: %w", err)
	}
	if resp.Assignments == nil {
		return nil, apiclient.MissingField("forecast", "assignments")
	}
	return *resp.Assignments, nil
}
