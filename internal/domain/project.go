package domain

type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectPending    ProjectStatus = "Pending"
	ProjectDelayed    ProjectStatus = "Delayed"
)

type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name" validate:"required"`
	ClientID       string        `json:"clientId" validate:"required"`
	Location       string        `json:"location"`
	Status         ProjectStatus `json:"status"`
	Progress       int           `json:"progress"`
	StartDate      string        `json:"startDate"`
	EndDate        string        `json:"endDate"`
	ProjectManager string        `json:"projectManager,omitempty"`
	Description    string        `json:"description,omitempty"`
}

type ProjectPatch struct {
	Name           *string        `json:"name,omitempty"`
	ClientID       *string        `json:"clientId,omitempty"`
	Location       *string        `json:"location,omitempty"`
	Status         *ProjectStatus `json:"status,omitempty"`
	Progress       *int           `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	StartDate      *string        `json:"startDate,omitempty"`
	EndDate        *string        `json:"endDate,omitempty"`
	ProjectManager *string        `json:"projectManager,omitempty"`
	Description    *string        `json:"description,omitempty"`
}

func (p ProjectPatch) Apply(pr *Project) {
	setString(&pr.Name, p.Name)
	setString(&pr.ClientID, p.ClientID)
	setString(&pr.Location, p.Location)
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.Progress != nil {
		pr.Progress = *p.Progress
	}
	setString(&pr.StartDate, p.StartDate)
	setString(&pr.EndDate, p.EndDate)
	setString(&pr.ProjectManager, p.ProjectManager)
	setString(&pr.Description, p.Description)
}

// IsActive reports whether the project still blocks deletion of its client.
func (pr Project) IsActive() bool {
	return pr.Status != ProjectCompleted
}
