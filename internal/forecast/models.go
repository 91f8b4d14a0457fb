package forecast

type Person struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Project is a Forecast project. HarvestID links it to the tracking
// service and is nil for projects that were never connected.
type Project struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	HarvestID *int64 `json:"harvest_id"`
	ClientID  *int64 `json:"client_id"`
	Archived  bool   `json:"archived"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Assignment commits a person to a project for a date range. Allocation
// is in seconds per day.
type Assignment struct {
	ID         int64  `json:"id"`
	ProjectID  int64  `json:"project_id"`
	PersonID   int64  `json:"person_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Allocation int64  `json:"allocation"`
	Notes      string `json:"notes"`
}
