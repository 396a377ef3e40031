package repository

import "fmt"

// FieldMap translates in-memory field names (lowerCamelCase) to store columns
// (lower_snake_case) for one table.
type FieldMap map[string]string

var fieldMaps = map[Table]FieldMap{
	TableClients: {
		"id":            "id",
		"name":          "name",
		"contactPerson": "contact_person",
		"email":         "email",
		"phone":         "phone",
		"location":      "location",
	},
	TableSuppliers: {
		"id":               "id",
		"name":             "name",
		"country":          "country",
		"location":         "location",
		"contactPerson":    "contact_person",
		"email":            "email",
		"phone":            "phone",
		"rating":           "rating",
		"onTimeDelivery":   "on_time_delivery",
		"positiveComments": "positive_comments",
		"negativeComments": "negative_comments",
	},
	TableProjects: {
		"id":             "id",
		"name":           "name",
		"clientId":       "client_id",
		"location":       "location",
		"status":         "status",
		"progress":       "progress",
		"startDate":      "start_date",
		"endDate":        "end_date",
		"projectManager": "project_manager",
		"description":    "description",
	},
	TablePurchaseOrders: {
		"id":          "id",
		"poNumber":    "po_number",
		"projectId":   "project_id",
		"supplierId":  "supplier_id",
		"status":      "status",
		"issuedDate":  "issued_date",
		"deadline":    "deadline",
		"progress":    "progress",
		"amount":      "amount",
		"description": "description",
	},
	TableParts: {
		"id":              "id",
		"purchaseOrderId": "purchase_order_id",
		"name":            "name",
		"quantity":        "quantity",
		"status":          "status",
		"progress":        "progress",
	},
	TableExternalLinks: {
		"id":         "id",
		"title":      "title",
		"url":        "url",
		"type":       "type",
		"date":       "date",
		"supplierId": "supplier_id",
		"projectId":  "project_id",
		"poId":       "po_id",
	},
	TableShipments: {
		"id":               "id",
		"type":             "type",
		"projectId":        "project_id",
		"supplierId":       "supplier_id",
		"purchaseOrderIds": "purchase_order_ids",
		"partIds":          "part_ids",
		"shippedDate":      "shipped_date",
		"etd":              "etd",
		"eta":              "eta",
		"status":           "status",
		"containerNumber":  "container_number",
		"trackingNumber":   "tracking_number",
		"lockNumber":       "lock_number",
		"notes":            "notes",
	},
}

// FieldNames returns the field table for t, or nil for an unknown table.
func FieldNames(t Table) FieldMap {
	return fieldMaps[t]
}

// ToWire renames the keys of fields to store columns. Unknown names are an error.
func ToWire(t Table, fields map[string]any) (Row, error) {
	fm, ok := fieldMaps[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, string(t))
	}
	row := make(Row, len(fields))
	for name, v := range fields {
		col, ok := fm[name]
		if !ok {
			return nil, fmt.Errorf("%s: no column for field %q", t, name)
		}
		row[col] = v
	}
	return row, nil
}

// FromWire renames store columns back to in-memory field names. Columns the model
// does not know about (created_at and the like) are dropped.
func FromWire(t Table, row Row) map[string]any {
	fm := fieldMaps[t]
	out := make(map[string]any, len(row))
	for name, col := range fm {
		if v, ok := row[col]; ok {
			out[name] = v
		}
	}
	return out
}

func (fm FieldMap) hasColumn(col string) bool {
	for _, c := range fm {
		if c == col {
			return true
		}
	}
	return false
}
