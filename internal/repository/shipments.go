package repository

import "projecttracker/internal/domain"

func ShipmentToRow(s domain.Shipment) (Row, error) {
	fields := map[string]any{
		"type":             string(s.Type),
		"projectId":        s.ProjectID,
		"supplierId":       s.SupplierID,
		"purchaseOrderIds": jsonList(nonNil(s.PurchaseOrderIDs)),
		"partIds":          jsonList(s.PartIDs),
		"shippedDate":      optString(s.ShippedDate),
		"etd":              optString(s.ETD),
		"eta":              optString(s.ETA),
		"status":           optString(s.Status),
		"containerNumber":  optString(s.ContainerNumber),
		"trackingNumber":   optString(s.TrackingNumber),
		"lockNumber":       optString(s.LockNumber),
		"notes":            optString(s.Notes),
	}
	if s.ID != "" {
		fields["id"] = s.ID
	}
	return ToWire(TableShipments, fields)
}

func ShipmentFromRow(row Row) domain.Shipment {
	f := FromWire(TableShipments, row)
	return domain.Shipment{
		ID:               asString(f["id"]),
		Type:             domain.ShipmentType(asString(f["type"])),
		ProjectID:        asString(f["projectId"]),
		SupplierID:       asString(f["supplierId"]),
		PurchaseOrderIDs: nonNil(asStringList(f["purchaseOrderIds"])),
		PartIDs:          asStringList(f["partIds"]),
		ShippedDate:      asString(f["shippedDate"]),
		ETD:              asString(f["etd"]),
		ETA:              asString(f["eta"]),
		Status:           asString(f["status"]),
		ContainerNumber:  asString(f["containerNumber"]),
		TrackingNumber:   asString(f["trackingNumber"]),
		LockNumber:       asString(f["lockNumber"]),
		Notes:            asString(f["notes"]),
	}
}

func ShipmentPatchRow(p domain.ShipmentPatch) (Row, error) {
	fields := map[string]any{}
	if p.Type != nil {
		fields["type"] = string(*p.Type)
	}
	putString(fields, "projectId", p.ProjectID)
	putString(fields, "supplierId", p.SupplierID)
	if p.PurchaseOrderIDs != nil {
		fields["purchaseOrderIds"] = jsonList(nonNil(*p.PurchaseOrderIDs))
	}
	if p.PartIDs != nil {
		fields["partIds"] = jsonList(*p.PartIDs)
	}
	putOptString(fields, "shippedDate", p.ShippedDate)
	putOptString(fields, "etd", p.ETD)
	putOptString(fields, "eta", p.ETA)
	putOptString(fields, "status", p.Status)
	putOptString(fields, "containerNumber", p.ContainerNumber)
	putOptString(fields, "trackingNumber", p.TrackingNumber)
	putOptString(fields, "lockNumber", p.LockNumber)
	putOptString(fields, "notes", p.Notes)
	return ToWire(TableShipments, fields)
}
