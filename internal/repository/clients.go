package repository

import "projecttracker/internal/domain"

func ClientToRow(c domain.Client) (Row, error) {
	fields := map[string]any{
		"name":          c.Name,
		"contactPerson": optString(c.ContactPerson),
		"email":         optString(c.Email),
		"phone":         optString(c.Phone),
		"location":      optString(c.Location),
	}
	if c.ID != "" {
		fields["id"] = c.ID
	}
	return ToWire(TableClients, fields)
}

func ClientFromRow(row Row) domain.Client {
	f := FromWire(TableClients, row)
	return domain.Client{
		ID:            asString(f["id"]),
		Name:          asString(f["name"]),
		ContactPerson: asString(f["contactPerson"]),
		Email:         asString(f["email"]),
		Phone:         asString(f["phone"]),
		Location:      asString(f["location"]),
	}
}

// ClientPatchRow builds a sparse wire patch holding only the fields set in p.
func ClientPatchRow(p domain.ClientPatch) (Row, error) {
	fields := map[string]any{}
	putString(fields, "name", p.Name)
	putOptString(fields, "contactPerson", p.ContactPerson)
	putOptString(fields, "email", p.Email)
	putOptString(fields, "phone", p.Phone)
	putOptString(fields, "location", p.Location)
	return ToWire(TableClients, fields)
}

func putString(fields map[string]any, name string, v *string) {
	if v != nil {
		fields[name] = *v
	}
}

func putOptString(fields map[string]any, name string, v *string) {
	if v != nil {
		fields[name] = optString(*v)
	}
}
