package domain

// Project denormalized project identity as it appears inside a report snapshot.
// It is a frozen copy taken at generation time, not a live reference.
type Project struct {
	ProjectID       string       `json:"id"`
	ProjectCode     string       `json:"projectCode"`
	ProjectName     string       `json:"projectName"`
	Description     string       `json:"description,omitempty"`
	Client          *PartyRef    `json:"client,omitempty"`
	Consultants     []Consultant `json:"consultants,omitempty"`
	ProjectDirector *PersonRef   `json:"projectDirector,omitempty"`
	ProjectManager  *PersonRef   `json:"projectManager,omitempty"`
	StartDate       string       `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate         string       `json:"endDate,omitempty"`   // YYYY-MM-DD
	Duration        string       `json:"duration,omitempty"`
	ProjectValue    *float64     `json:"projectValue,omitempty"`
	Status          string       `json:"status,omitempty"`
}

// PartyRef client or consultant company
type PartyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PersonRef staff member reference (owned by the staff directory)
type PersonRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Consultant consultant company engaged on the project, by type
// (e.g. "Project Management", "Design", "Supervision", "Cost").
type Consultant struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// ProjectContact contact person associated with the project
type ProjectContact struct {
	ID           string `json:"id"`
	ProjectID    string `json:"projectId"`
	ContactID    string `json:"contactId"`
	Name         string `json:"name"`
	Position     string `json:"position,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"` // client or consultant name
	Role         string `json:"role,omitempty"`         // consultant type or "Client"
	IsPrimary    bool   `json:"isPrimary"`
}

// ProjectRef minimal identity used in report listings
type ProjectRef struct {
	ID          string `json:"id"`
	ProjectCode string `json:"projectCode"`
	ProjectName string `json:"projectName"`
}

// UserRef identity of the user who generated a report
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
