package reconcile

import "github.com/christopherklint97/timething/internal/forecast"

// KeyedBy selects which service's project id keys an index.
type KeyedBy int

const (
	// ByForecast keys by the scheduling-service id, which assignments use.
	ByForecast KeyedBy = iota
	// ByHarvest keys by the tracking-service id, which time entries use.
	ByHarvest
)

// ProjectSummary is a linked project as seen from both services.
type ProjectSummary struct {
	ForecastID int64
	HarvestID  int64
	Name       string
	Code       string
	StartDate  string
	EndDate    string
}

// BuildIndex maps project ids to summaries. Only projects linked to the
// tracking service and not archived are included.
func BuildIndex(projects []forecast.Project, key KeyedBy) map[int64]ProjectSummary {
	index := make(map[int64]ProjectSummary)
	for _, p := range projects {
		if p.HarvestID == nil || *p.HarvestID == 0 || p.Archived {
			continue
		}
		summary := ProjectSummary{
			ForecastID: p.ID,
			HarvestID:  *p.HarvestID,
			Name:       p.Name,
			Code:       p.Code,
			StartDate:  p.StartDate,
			EndDate:    p.EndDate,
		}
		switch key {
		case ByHarvest:
			index[summary.HarvestID] = summary
		default:
			index[summary.ForecastID] = summary
		}
	}
	return index
}
