package reconcile

import (
	"fmt"
	"math"
	"sort"

	"github.com/christopherklint97/timething/internal/harvest"
)

type Task struct {
	ID           int64
	AssignmentID int64
	Name         string
	Billable     bool
}

// Project is one tracking-service project with the hours logged against
// it and, once allocations are folded in, its staffing commitment.
type Project struct {
	ID           int64
	AssignmentID int64
	Name         string
	Code         string
	Tasks        []Task
	// Forecast is the linked scheduling-service project, if any.
	Forecast *ProjectSummary

	TimeEntries  []harvest.TimeEntry
	TotalHours   float64
	TotalSeconds int64

	Allocation       float64 // seconds per day
	Days             int
	PeriodAllocation int64
	// AllocationProgress is TotalSeconds / PeriodAllocation, nil while the
	// project has no period allocation.
	AllocationProgress *float64
}

// AllocationHours is the daily allocation in hours.
func (p *Project) AllocationHours() float64 {
	return p.Allocation / secondsPerHour
}

// RemainingHours is the allocated hours across Days minus the hours logged.
func (p *Project) RemainingHours() float64 {
	return p.AllocationHours()*float64(p.Days) - p.TotalHours
}

type Client struct {
	ID       int64
	Name     string
	Projects map[int64]*Project
}

// SortedProjects returns the client's projects ordered by id.
func (c *Client) SortedProjects() []*Project {
	out := make([]*Project, 0, len(c.Projects))
	for _, p := range c.Projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Ledger is the client → project skeleton that time entries and
// allocations are folded into.
type Ledger struct {
	Clients map[int64]*Client
	// owners maps a project id to its client id. Built once with the
	// skeleton instead of scanning every client per lookup.
	owners map[int64]int64
}

// BuildSkeleton seeds one client per distinct Harvest client and one
// project per project assignment. byHarvest, when non-nil, links each
// project to its Forecast counterpart.
func BuildSkeleton(assignments []harvest.ProjectAssignment, byHarvest map[int64]ProjectSummary) *Ledger {
	l := &Ledger{
		Clients: make(map[int64]*Client),
		owners:  make(map[int64]int64),
	}
	for _, pa := range assignments {
		client, ok := l.Clients[pa.Client.ID]
		if !ok {
			client = &Client{
				ID:       pa.Client.ID,
				Name:     pa.Client.Name,
				Projects: make(map[int64]*Project),
			}
			l.Clients[pa.Client.ID] = client
		}

		project := &Project{
			ID:           pa.Project.ID,
			AssignmentID: pa.ID,
			Name:         pa.Project.Name,
			Code:         pa.Project.Code,
		}
		for _, ta := range pa.TaskAssignments {
			project.Tasks = append(project.Tasks, Task{
				ID:           ta.Task.ID,
				AssignmentID: ta.ID,
				Name:         ta.Task.Name,
				Billable:     ta.Billable,
			})
		}
		if summary, ok := byHarvest[pa.Project.ID]; ok {
			project.Forecast = &summary
		}

		client.Projects[pa.Project.ID] = project
		l.owners[pa.Project.ID] = pa.Client.ID
	}
	return l
}

// SortedClients returns the clients ordered by id.
func (l *Ledger) SortedClients() []*Client {
	out := make([]*Client, 0, len(l.Clients))
	for _, c := range l.Clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Project returns the project with the given Harvest id.
func (l *Ledger) Project(id int64) (*Project, bool) {
	clientID, ok := l.owners[id]
	if !ok {
		return nil, false
	}
	p, ok := l.Clients[clientID].Projects[id]
	return p, ok
}

// AddTimeEntries sums entry hours into their (client, project). Entries
// pointing outside the skeleton are skipped and reported.
func (l *Ledger) AddTimeEntries(entries []harvest.TimeEntry) []Warning {
	var warnings []Warning
	for _, e := range entries {
		client, ok := l.Clients[e.Client.ID]
		var project *Project
		if ok {
			project, ok = client.Projects[e.Project.ID]
		}
		if !ok {
			warnings = append(warnings, Warning{
				Kind:      WarnUnmappedTimeEntry,
				ProjectID: e.Project.ID,
				Err:       fmt.Errorf("time entry %d on %s (client %d): %w", e.ID, e.SpentDate, e.Client.ID, ErrUnmappedProject),
			})
			continue
		}
		project.TimeEntries = append(project.TimeEntries, e)
	}

	for _, client := range l.Clients {
		for _, project := range client.Projects {
			total := 0.0
			for _, e := range project.TimeEntries {
				total += e.Hours
			}
			project.TotalHours = total
			project.TotalSeconds = int64(math.Round(total * secondsPerHour))
		}
	}
	return warnings
}

// AddAllocations copies each linked allocation onto its project. An
// allocation whose Harvest project is absent from the skeleton is skipped
// and reported.
func (l *Ledger) AddAllocations(allocations []Allocation) []Warning {
	var warnings []Warning
	for _, a := range allocations {
		if a.HarvestID == 0 {
			continue
		}
		project, ok := l.Project(a.HarvestID)
		if !ok {
			warnings = append(warnings, Warning{
				Kind:      WarnUnmappedAssignment,
				ProjectID: a.HarvestID,
				Err:       fmt.Errorf("assignment for %q (forecast project %d): %w", a.Project, a.ForecastProjectID, ErrUnmappedProject),
			})
			continue
		}

		project.Allocation = a.Allocation
		project.Days = a.Days
		project.PeriodAllocation = a.PeriodAllocation
		project.AllocationProgress = nil
		if a.PeriodAllocation != 0 {
			progress := float64(project.TotalSeconds) / float64(a.PeriodAllocation)
			project.AllocationProgress = &progress
		}
	}
	return warnings
}

// Input is everything one reconciliation needs. Index must be keyed
// ByHarvest.
type Input struct {
	ProjectAssignments []harvest.ProjectAssignment
	TimeEntries        []harvest.TimeEntry
	Allocations        []Allocation
	Index              map[int64]ProjectSummary
}

type Result struct {
	Ledger   *Ledger
	Warnings []Warning
}

// Reconcile builds the skeleton, then folds in time entries, then
// allocations. It does not modify its input.
func Reconcile(in Input) *Result {
	ledger := BuildSkeleton(in.ProjectAssignments, in.Index)

	var warnings []Warning
	warnings = append(warnings, ledger.AddTimeEntries(in.TimeEntries)...)
	warnings = append(warnings, ledger.AddAllocations(in.Allocations)...)

	return &Result{Ledger: ledger, Warnings: warnings}
}
