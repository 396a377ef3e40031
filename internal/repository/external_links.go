package repository

import "projecttracker/internal/domain"

func ExternalLinkToRow(l domain.ExternalLink) (Row, error) {
	fields := map[string]any{
		"title":      l.Title,
		"url":        l.URL,
		"type":       optString(string(l.Type)),
		"date":       optString(l.Date),
		"supplierId": optString(l.SupplierID),
		"projectId":  optString(l.ProjectID),
		"poId":       optString(l.POID),
	}
	if l.ID != "" {
		fields["id"] = l.ID
	}
	return ToWire(TableExternalLinks, fields)
}

func ExternalLinkFromRow(row Row) domain.ExternalLink {
	f := FromWire(TableExternalLinks, row)
	return domain.ExternalLink{
		ID:         asString(f["id"]),
		Title:      asString(f["title"]),
		URL:        asString(f["url"]),
		Type:       domain.LinkType(asString(f["type"])),
		Date:       asString(f["date"]),
		SupplierID: asString(f["supplierId"]),
		ProjectID:  asString(f["projectId"]),
		POID:       asString(f["poId"]),
	}
}

func ExternalLinkPatchRow(p domain.ExternalLinkPatch) (Row, error) {
	fields := map[string]any{}
	putString(fields, "title", p.Title)
	putString(fields, "url", p.URL)
	if p.Type != nil {
		fields["type"] = optString(string(*p.Type))
	}
	putOptString(fields, "date", p.Date)
	putOptString(fields, "supplierId", p.SupplierID)
	putOptString(fields, "projectId", p.ProjectID)
	putOptString(fields, "poId", p.POID)
	return ToWire(TableExternalLinks, fields)
}
