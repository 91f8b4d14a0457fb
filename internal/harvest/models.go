package harvest

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Ref is the {id, name} pair Harvest nests inside other resources.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type TimeEntry struct {
	ID        int64      `json:"id"`
	SpentDate string     `json:"spent_date"`
	Hours     float64    `json:"hours"`
	Notes     string     `json:"notes"`
	User      Ref        `json:"user"`
	Client    Ref        `json:"client"`
	Project   ProjectRef `json:"project"`
	Task      Ref        `json:"task"`
}

type TaskAssignment struct {
	ID       int64 `json:"id"`
	Billable bool  `json:"billable"`
	Task     Ref   `json:"task"`
}

// ProjectAssignment is the user's membership of a project, carrying the
// client and task metadata used to seed reconciliation.
type ProjectAssignment struct {
	ID              int64            `json:"id"`
	IsActive        bool             `json:"is_active"`
	Project         ProjectRef       `json:"project"`
	Client          Ref              `json:"client"`
	TaskAssignments []TaskAssignment `json:"task_assignments"`
}
