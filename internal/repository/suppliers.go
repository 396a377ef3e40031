package repository

import "projecttracker/internal/domain"

func SupplierToRow(s domain.Supplier) (Row, error) {
	fields := map[string]any{
		"name":             s.Name,
		"country":          optString(s.Country),
		"location":         optString(s.Location),
		"contactPerson":    optString(s.ContactPerson),
		"email":            optString(s.Email),
		"phone":            optString(s.Phone),
		"rating":           s.Rating,
		"onTimeDelivery":   s.OnTimeDelivery,
		"positiveComments": jsonList(nonNil(s.PositiveComments)),
		"negativeComments": jsonList(nonNil(s.NegativeComments)),
	}
	if s.ID != "" {
		fields["id"] = s.ID
	}
	return ToWire(TableSuppliers, fields)
}

func SupplierFromRow(row Row) domain.Supplier {
	f := FromWire(TableSuppliers, row)
	return domain.Supplier{
		ID:               asString(f["id"]),
		Name:             asString(f["name"]),
		Country:          asString(f["country"]),
		Location:         asString(f["location"]),
		ContactPerson:    asString(f["contactPerson"]),
		Email:            asString(f["email"]),
		Phone:            asString(f["phone"]),
		Rating:           asFloat(f["rating"]),
		OnTimeDelivery:   asFloat(f["onTimeDelivery"]),
		PositiveComments: nonNil(asStringList(f["positiveComments"])),
		NegativeComments: nonNil(asStringList(f["negativeComments"])),
	}
}

func SupplierPatchRow(p domain.SupplierPatch) (Row, error) {
	fields := map[string]any{}
	putString(fields, "name", p.Name)
	putOptString(fields, "country", p.Country)
	putOptString(fields, "location", p.Location)
	putOptString(fields, "contactPerson", p.ContactPerson)
	putOptString(fields, "email", p.Email)
	putOptString(fields, "phone", p.Phone)
	if p.Rating != nil {
		fields["rating"] = *p.Rating
	}
	if p.OnTimeDelivery != nil {
		fields["onTimeDelivery"] = *p.OnTimeDelivery
	}
	if p.PositiveComments != nil {
		fields["positiveComments"] = jsonList(nonNil(*p.PositiveComments))
	}
	if p.NegativeComments != nil {
		fields["negativeComments"] = jsonList(nonNil(*p.NegativeComments))
	}
	return ToWire(TableSuppliers, fields)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
