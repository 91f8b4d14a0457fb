package reconcile

import (
	"errors"
	"testing"

	"github.com/christopherklint97/timething/internal/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectAssignments() []harvest.ProjectAssignment {
	return []harvest.ProjectAssignment{
		{
			ID:      1,
			Client:  harvest.Ref{ID: 10, Name: "Acme"},
			Project: harvest.ProjectRef{ID: 501, Name: "Alpha", Code: "AL"},
			TaskAssignments: []harvest.TaskAssignment{
				{ID: 7, Billable: true, Task: harvest.Ref{ID: 3, Name: "Development"}},
			},
		},
		{
			ID:      2,
			Client:  harvest.Ref{ID: 10, Name: "Acme"},
			Project: harvest.ProjectRef{ID: 502, Name: "Beta", Code: "BE"},
		},
		{
			ID:      3,
			Client:  harvest.Ref{ID: 20, Name: "Globex"},
			Project: harvest.ProjectRef{ID: 601, Name: "Gamma", Code: "GA"},
		},
	}
}

func entry(id, client, project int64, hours float64) harvest.TimeEntry {
	return harvest.TimeEntry{
		ID:        id,
		SpentDate: "2024-05-14",
		Hours:     hours,
		Client:    harvest.Ref{ID: client},
		Project:   harvest.ProjectRef{ID: project},
	}
}

func TestBuildSkeleton(t *testing.T) {
	byHarvest := map[int64]ProjectSummary{501: {ForecastID: 1, HarvestID: 501, Name: "Alpha"}}
	l := BuildSkeleton(projectAssignments(), byHarvest)

	require.Len(t, l.Clients, 2)
	acme := l.Clients[10]
	require.NotNil(t, acme)
	assert.Equal(t, "Acme", acme.Name)
	require.Len(t, acme.Projects, 2)

	alpha := acme.Projects[501]
	require.NotNil(t, alpha)
	require.Len(t, alpha.Tasks, 1)
	assert.Equal(t, "Development", alpha.Tasks[0].Name)
	require.NotNil(t, alpha.Forecast)
	assert.Equal(t, int64(1), alpha.Forecast.ForecastID)
	assert.Nil(t, acme.Projects[502].Forecast)

	p, ok := l.Project(601)
	require.True(t, ok)
	assert.Equal(t, "Gamma", p.Name)
	_, ok = l.Project(999)
	assert.False(t, ok)
}

func TestSortedClientsAndProjects(t *testing.T) {
	l := BuildSkeleton(projectAssignments(), nil)

	clients := l.SortedClients()
	require.Len(t, clients, 2)
	assert.Equal(t, int64(10), clients[0].ID)
	assert.Equal(t, int64(20), clients[1].ID)

	projects := clients[0].SortedProjects()
	require.Len(t, projects, 2)
	assert.Equal(t, int64(501), projects[0].ID)
	assert.Equal(t, int64(502), projects[1].ID)
}

func TestAddTimeEntries(t *testing.T) {
	l := BuildSkeleton(projectAssignments(), nil)
	warnings := l.AddTimeEntries([]harvest.TimeEntry{
		entry(1, 10, 501, 4.25),
		entry(2, 10, 501, 6.25),
		entry(3, 20, 601, 1),
	})
	assert.Empty(t, warnings)

	alpha := l.Clients[10].Projects[501]
	assert.Equal(t, 10.5, alpha.TotalHours)
	assert.Equal(t, int64(37800), alpha.TotalSeconds)
	assert.Len(t, alpha.TimeEntries, 2)

	beta := l.Clients[10].Projects[502]
	assert.Zero(t, beta.TotalHours)
	assert.Zero(t, beta.TotalSeconds)
}

func TestAddTimeEntries_UnmappedEntryDoesNotTouchOtherTotals(t *testing.T) {
	l := BuildSkeleton(projectAssignments(), nil)
	warnings := l.AddTimeEntries([]harvest.TimeEntry{
		entry(1, 10, 501, 2),
		entry(2, 10, 999, 8), // unknown project
		entry(3, 99, 501, 8), // unknown client
		entry(4, 20, 501, 8), // project under the wrong client
	})

	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.Equal(t, WarnUnmappedTimeEntry, w.Kind)
		assert.True(t, errors.Is(w, ErrUnmappedProject))
	}
	assert.Equal(t, 2.0, l.Clients[10].Projects[501].TotalHours)
	assert.Zero(t, l.Clients[20].Projects[601].TotalHours)
}

func TestAddAllocations(t *testing.T) {
	l := BuildSkeleton(projectAssignments(), nil)
	l.AddTimeEntries([]harvest.TimeEntry{entry(1, 10, 501, 10.5)})

	warnings := l.AddAllocations([]Allocation{
		{ForecastProjectID: 1, HarvestID: 501, Allocation: 14400, Days: 5, PeriodAllocation: 72000},
		{ForecastProjectID: 3, HarvestID: 601, Allocation: 3600, Days: 5, PeriodAllocation: 18000},
	})
	assert.Empty(t, warnings)

	alpha := l.Clients[10].Projects[501]
	assert.Equal(t, 14400.0, alpha.Allocation)
	assert.Equal(t, 5, alpha.Days)
	assert.Equal(t, int64(72000), alpha.PeriodAllocation)
	require.NotNil(t, alpha.AllocationProgress)
	assert.InDelta(t, 0.525, *alpha.AllocationProgress, 1e-12)
	assert.InDelta(t, 9.5, alpha.RemainingHours(), 1e-9)
	assert.Equal(t, 4.0, alpha.AllocationHours())

	gamma := l.Clients[20].Projects[601]
	require.NotNil(t, gamma.AllocationProgress)
	assert.Zero(t, *gamma.AllocationProgress, "no hours logged is zero progress, not an error")

	assert.Nil(t, l.Clients[10].Projects[502].AllocationProgress)
}

func TestAddAllocations_ZeroPeriodLeavesProgressUndefined(t *testing.T) {
	l := BuildSkeleton(projectAssignments(), nil)
	l.AddTimeEntries(nil)
	l.AddAllocations([]Allocation{{ForecastProjectID: 1, HarvestID: 501}})

	assert.Nil(t, l.Clients[10].Projects[501].AllocationProgress)
}

func TestAddAllocations_UnmappedProjectSkipped(t *testing.T) {
	l := BuildSkeleton(projectAssignments(), nil)
	l.AddTimeEntries(nil)

	warnings := l.AddAllocations([]Allocation{
		{ForecastProjectID: 8, HarvestID: 888, Project: "Ghost", Allocation: 3600, Days: 1, PeriodAllocation: 3600},
		{ForecastProjectID: 9, Project: "Unlinked", Allocation: 3600, Days: 1, PeriodAllocation: 3600},
		{ForecastProjectID: 1, HarvestID: 501, Allocation: 3600, Days: 1, PeriodAllocation: 3600},
	})

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnUnmappedAssignment, warnings[0].Kind)
	assert.Equal(t, int64(888), warnings[0].ProjectID)
	assert.ErrorIs(t, warnings[0], ErrUnmappedProject)
	assert.Equal(t, 3600.0, l.Clients[10].Projects[501].Allocation)
}

func scenario() Input {
	return Input{
		ProjectAssignments: projectAssignments(),
		TimeEntries: []harvest.TimeEntry{
			entry(1, 10, 501, 4.25),
			entry(2, 10, 501, 6.25),
			entry(3, 10, 999, 3),
		},
		Allocations: []Allocation{
			{ForecastProjectID: 1, HarvestID: 501, Allocation: 14400, Days: 5, PeriodAllocation: 72000},
		},
		Index: map[int64]ProjectSummary{501: {ForecastID: 1, HarvestID: 501, Name: "Alpha"}},
	}
}

func TestReconcile_EndToEnd(t *testing.T) {
	res := Reconcile(scenario())

	alpha, ok := res.Ledger.Project(501)
	require.True(t, ok)
	assert.Equal(t, 10.5, alpha.TotalHours)
	assert.Equal(t, int64(37800), alpha.TotalSeconds)
	require.NotNil(t, alpha.AllocationProgress)
	assert.InDelta(t, 0.525, *alpha.AllocationProgress, 1e-12)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnUnmappedTimeEntry, res.Warnings[0].Kind)
}

func TestReconcile_Idempotent(t *testing.T) {
	in := scenario()
	first := Reconcile(in)
	second := Reconcile(in)
	assert.Equal(t, first, second)
	assert.Len(t, in.TimeEntries, 3, "input is not modified")
}
