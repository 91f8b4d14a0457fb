package reconcile

import (
	"fmt"

	"github.com/christopherklint97/timething/internal/forecast"
	"github.com/christopherklint97/timething/internal/period"
)

const secondsPerHour = 3600

// Allocation is every assignment for one Forecast project within the
// report window, merged.
type Allocation struct {
	ForecastProjectID int64
	HarvestID         int64
	Project           string
	ProjectCode       string
	StartDate         string
	EndDate           string
	ProjectStartDate  string
	ProjectEndDate    string

	// Days is the sum of each assignment's own business-day span.
	Days int
	// PeriodAllocation is the committed seconds across the window.
	PeriodAllocation int64
	// Allocation is the weighted average in seconds per day.
	Allocation      float64
	AllocationHours float64

	windows []window
}

type window struct{ start, end string }

func (w window) overlaps(o window) bool {
	// YYYY-MM-DD compares lexically.
	return w.start <= o.end && o.start <= w.end
}

// MergeAssignments folds raw assignments into one Allocation per Forecast
// project, in order of first appearance. index must be keyed ByForecast.
//
// Overlapping windows for the same project are summed like any other pair
// and reported as a warning. An assignment whose dates cannot be parsed, or
// whose project is archived or not linked to Harvest, is skipped and
// reported.
func MergeAssignments(assignments []forecast.Assignment, index map[int64]ProjectSummary) ([]Allocation, []Warning) {
	var order []int64
	merged := make(map[int64]*Allocation)
	var warnings []Warning

	for _, a := range assignments {
		days, err := period.BusinessDaysInclusive(a.StartDate, a.EndDate)
		if err != nil {
			warnings = append(warnings, Warning{
				Kind:      WarnInvalidAssignment,
				ProjectID: a.ProjectID,
				Err:       fmt.Errorf("assignment %d: %w", a.ID, err),
			})
			continue
		}

		p, linked := index[a.ProjectID]
		if !linked {
			warnings = append(warnings, Warning{
				Kind:      WarnUnmappedAssignment,
				ProjectID: a.ProjectID,
				Err:       fmt.Errorf("assignment %d (forecast project %d) is archived or not linked to harvest: %w", a.ID, a.ProjectID, ErrUnmappedProject),
			})
			continue
		}

		alloc, ok := merged[a.ProjectID]
		if !ok {
			alloc = &Allocation{
				ForecastProjectID: a.ProjectID,
				HarvestID:         p.HarvestID,
				Project:           p.Name,
				ProjectCode:       p.Code,
				ProjectStartDate:  p.StartDate,
				ProjectEndDate:    p.EndDate,
			}
			merged[a.ProjectID] = alloc
			order = append(order, a.ProjectID)
		}

		w := window{start: a.StartDate, end: a.EndDate}
		for _, prev := range alloc.windows {
			if prev.overlaps(w) {
				warnings = append(warnings, Warning{
					Kind:      WarnOverlappingAssignment,
					ProjectID: a.ProjectID,
					Err:       fmt.Errorf("assignment %d (%s to %s) overlaps %s to %s", a.ID, w.start, w.end, prev.start, prev.end),
				})
				break
			}
		}
		alloc.windows = append(alloc.windows, w)

		alloc.StartDate = a.StartDate
		alloc.EndDate = a.EndDate
		alloc.Days += days
		alloc.PeriodAllocation += a.Allocation * int64(days)
		if alloc.Days != 0 {
			alloc.Allocation = float64(alloc.PeriodAllocation) / float64(alloc.Days)
		} else {
			alloc.Allocation = 0
		}
		alloc.AllocationHours = alloc.Allocation / secondsPerHour
	}

	out := make([]Allocation, 0, len(order))
	for _, id := range order {
		a := *merged[id]
		a.windows = nil
		out = append(out, a)
	}
	return out, warnings
}
