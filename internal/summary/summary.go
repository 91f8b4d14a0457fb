package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/christopherklint97/timething/internal/apiclient"
	"github.com/christopherklint97/timething/internal/config"
	"github.com/christopherklint97/timething/internal/forecast"
	"github.com/christopherklint97/timething/internal/harvest"
	"github.com/christopherklint97/timething/internal/period"
	"github.com/christopherklint97/timething/internal/projects"
	"github.com/christopherklint97/timething/internal/reconcile"
)

type Schedule interface {
	WhoAmI(ctx context.Context) (int64, error)
	ListAssignments(ctx context.Context, personID int64, r period.Range) ([]forecast.Assignment, error)
}

type Tracking interface {
	Me(ctx context.Context) (int64, error)
	ListTimeEntries(ctx context.Context, userID int64, r period.Range) (apiclient.Pages[harvest.TimeEntry], error)
	ListProjectAssignments(ctx context.Context) (apiclient.Pages[harvest.ProjectAssignment], error)
}

type ProjectLoader interface {
	Load(ctx context.Context, force bool) (*projects.Result, error)
}

// Report is one reconciled snapshot ready to render.
type Report struct {
	Period   period.Range
	Ledger   *reconcile.Ledger
	Warnings []reconcile.Warning
	// Notices describe degraded inputs: stale project lists, truncated pages.
	Notices []string
}

// Service fetches everything one report needs, one call at a time.
type Service struct {
	schedule Schedule
	tracking Tracking
	projects ProjectLoader
	logger   *slog.Logger
}

func New(schedule Schedule, tracking Tracking, loader ProjectLoader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		schedule: schedule,
		tracking: tracking,
		projects: loader,
		logger:   logger,
	}
}

// Run builds the report for r. Failed identity lookups wrap
// config.ErrNotConfigured.
func (s *Service) Run(ctx context.Context, r period.Range) (*Report, error) {
	personID, err := s.schedule.WhoAmI(ctx)
	if err != nil {
		return nil, notConfigured("forecast", err)
	}
	userID, err := s.tracking.Me(ctx)
	if err != nil {
		return nil, notConfigured("harvest", err)
	}
	s.logger.Debug("resolved identities", "forecast_person", personID, "harvest_user", userID, "period", r.String())

	rep := &Report{Period: r}

	loaded, err := s.projects.Load(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	switch loaded.Source {
	case projects.SourceStale:
		rep.Notices = append(rep.Notices, fmt.Sprintf("Forecast unavailable, using project list cached %s", loaded.FetchedAt.Local().Format("2006-01-02 15:04")))
	case projects.SourceEmpty:
		rep.Notices = append(rep.Notices, "Forecast project list unavailable; allocations cannot be matched")
	}
	byForecast := reconcile.BuildIndex(loaded.Projects, reconcile.ByForecast)
	byHarvest := reconcile.BuildIndex(loaded.Projects, reconcile.ByHarvest)

	assignments, err := s.schedule.ListAssignments(ctx, personID, r)
	if err != nil {
		return nil, fmt.Errorf("fetching assignments: %w", err)
	}
	allocations, mergeWarnings := reconcile.MergeAssignments(assignments, byForecast)

	projectAssignments, err := s.tracking.ListProjectAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching project assignments: %w", err)
	}
	if projectAssignments.Truncated {
		rep.Notices = append(rep.Notices, fmt.Sprintf("Project assignments stopped after %d pages; the list may be incomplete", projectAssignments.Fetched))
	}

	entries, err := s.tracking.ListTimeEntries(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("fetching time entries: %w", err)
	}
	if entries.Truncated {
		rep.Notices = append(rep.Notices, fmt.Sprintf("Time entries stopped after %d pages; logged hours may be incomplete", entries.Fetched))
	}

	result := reconcile.Reconcile(reconcile.Input{
		ProjectAssignments: projectAssignments.Items,
		TimeEntries:        entries.Items,
		Allocations:        allocations,
		Index:              byHarvest,
	})

	rep.Ledger = result.Ledger
	rep.Warnings = append(mergeWarnings, result.Warnings...)
	for _, w := range rep.Warnings {
		s.logger.Debug("reconciliation warning", "kind", w.Kind, "project", w.ProjectID, "error", w.Err)
	}

	return rep, nil
}

func notConfigured(service string, err error) error {
	return fmt.Errorf("looking up %s user: %w", service, errors.Join(config.ErrNotConfigured, err))
}
