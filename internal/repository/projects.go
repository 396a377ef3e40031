package repository

import "projecttracker/internal/domain"

func ProjectToRow(p domain.Project) (Row, error) {
	status := p.Status
	if status == "" {
		status = domain.ProjectPending
	}
	fields := map[string]any{
		"name":           p.Name,
		"clientId":       p.ClientID,
		"location":       optString(p.Location),
		"status":         string(status),
		"progress":       p.Progress,
		"startDate":      optString(p.StartDate),
		"endDate":        optString(p.EndDate),
		"projectManager": optString(p.ProjectManager),
		"description":    optString(p.Description),
	}
	if p.ID != "" {
		fields["id"] = p.ID
	}
	return ToWire(TableProjects, fields)
}

func ProjectFromRow(row Row) domain.Project {
	f := FromWire(TableProjects, row)
	return domain.Project{
		ID:             asString(f["id"]),
		Name:           asString(f["name"]),
		ClientID:       asString(f["clientId"]),
		Location:       asString(f["location"]),
		Status:         domain.ProjectStatus(asString(f["status"])),
		Progress:       asInt(f["progress"]),
		StartDate:      asString(f["startDate"]),
		EndDate:        asString(f["endDate"]),
		ProjectManager: asString(f["projectManager"]),
		Description:    asString(f["description"]),
	}
}

func ProjectPatchRow(p domain.ProjectPatch) (Row, error) {
	fields := map[string]any{}
	putString(fields, "name", p.Name)
	putString(fields, "clientId", p.ClientID)
	putOptString(fields, "location", p.Location)
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.Progress != nil {
		fields["progress"] = *p.Progress
	}
	putOptString(fields, "startDate", p.StartDate)
	putOptString(fields, "endDate", p.EndDate)
	putOptString(fields, "projectManager", p.ProjectManager)
	putOptString(fields, "description", p.Description)
	return ToWire(TableProjects, fields)
}
