package domain

type LinkType string

const (
	LinkReport   LinkType = "Report"
	LinkPhoto    LinkType = "Photo"
	LinkTracking LinkType = "Tracking"
)

// ExternalLink points at a document kept elsewhere. POID references a single
// purchase order row, not a poNumber group.
type ExternalLink struct {
	ID         string   `json:"id"`
	Title      string   `json:"title" validate:"required"`
	URL        string   `json:"url" validate:"required,url"`
	Type       LinkType `json:"type"`
	Date       string   `json:"date"`
	SupplierID string   `json:"supplierId,omitempty"`
	ProjectID  string   `json:"projectId,omitempty"`
	POID       string   `json:"poId,omitempty"`
}

type ExternalLinkPatch struct {
	Title      *string   `json:"title,omitempty"`
	URL        *string   `json:"url,omitempty" validate:"omitempty,url"`
	Type       *LinkType `json:"type,omitempty"`
	Date       *string   `json:"date,omitempty"`
	SupplierID *string   `json:"supplierId,omitempty"`
	ProjectID  *string   `json:"projectId,omitempty"`
	POID       *string   `json:"poId,omitempty"`
}

func (p ExternalLinkPatch) Apply(l *ExternalLink) {
	setString(&l.Title, p.Title)
	setString(&l.URL, p.URL)
	if p.Type != nil {
		l.Type = *p.Type
	}
	setString(&l.Date, p.Date)
	setString(&l.SupplierID, p.SupplierID)
	setString(&l.ProjectID, p.ProjectID)
	setString(&l.POID, p.POID)
}
