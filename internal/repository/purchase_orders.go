package repository

import "projecttracker/internal/domain"

// PurchaseOrderToRow encodes the order itself. Parts go to their own table.
func PurchaseOrderToRow(po domain.PurchaseOrder) (Row, error) {
	status := po.Status
	if status == "" {
		status = domain.POActive
	}
	fields := map[string]any{
		"poNumber":    po.PONumber,
		"projectId":   po.ProjectID,
		"supplierId":  po.SupplierID,
		"status":      string(status),
		"issuedDate":  optString(po.IssuedDate),
		"deadline":    optString(po.Deadline),
		"progress":    intOrNil(po.Progress),
		"amount":      nil,
		"description": optString(po.Description),
	}
	if po.Amount != nil {
		fields["amount"] = *po.Amount
	}
	if po.ID != "" {
		fields["id"] = po.ID
	}
	return ToWire(TablePurchaseOrders, fields)
}

func PurchaseOrderFromRow(row Row, parts []domain.Part) domain.PurchaseOrder {
	f := FromWire(TablePurchaseOrders, row)
	if parts == nil {
		parts = []domain.Part{}
	}
	return domain.PurchaseOrder{
		ID:          asString(f["id"]),
		PONumber:    asString(f["poNumber"]),
		ProjectID:   asString(f["projectId"]),
		SupplierID:  asString(f["supplierId"]),
		Status:      domain.PurchaseOrderStatus(asString(f["status"])),
		IssuedDate:  asString(f["issuedDate"]),
		Deadline:    asString(f["deadline"]),
		Progress:    asIntPtr(f["progress"]),
		Amount:      asDecimalPtr(f["amount"]),
		Description: asString(f["description"]),
		Parts:       parts,
	}
}

func PurchaseOrderPatchRow(p domain.PurchaseOrderPatch) (Row, error) {
	fields := map[string]any{}
	putString(fields, "poNumber", p.PONumber)
	putString(fields, "projectId", p.ProjectID)
	putString(fields, "supplierId", p.SupplierID)
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	putOptString(fields, "issuedDate", p.IssuedDate)
	putOptString(fields, "deadline", p.Deadline)
	if p.Progress != nil {
		fields["progress"] = *p.Progress
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	putOptString(fields, "description", p.Description)
	return ToWire(TablePurchaseOrders, fields)
}

// PartToRow encodes a part owned by poID. Unsaved client-side ids are dropped so
// the store issues a real one.
func PartToRow(poID string, p domain.Part) (Row, error) {
	fields := map[string]any{
		"name":     p.Name,
		"quantity": p.Quantity,
		"status":   optString(p.Status),
		"progress": intOrNil(p.Progress),
	}
	if poID != "" {
		fields["purchaseOrderId"] = poID
	}
	if !domain.IsUnsavedPartID(p.ID) {
		fields["id"] = p.ID
	}
	return ToWire(TableParts, fields)
}

// PartFromRow decodes a part and reports the purchase order that owns it.
func PartFromRow(row Row) (domain.Part, string) {
	f := FromWire(TableParts, row)
	return domain.Part{
		ID:       asString(f["id"]),
		Name:     asString(f["name"]),
		Quantity: asInt(f["quantity"]),
		Status:   asString(f["status"]),
		Progress: asIntPtr(f["progress"]),
	}, asString(f["purchaseOrderId"])
}

// PartUpdateRow is the full set of mutable part columns, used when reconciling.
func PartUpdateRow(p domain.Part) (Row, error) {
	return ToWire(TableParts, map[string]any{
		"name":     p.Name,
		"quantity": p.Quantity,
		"status":   optString(p.Status),
		"progress": intOrNil(p.Progress),
	})
}

// AssemblePurchaseOrders joins order rows with part rows, keeping both in store order.
func AssemblePurchaseOrders(poRows, partRows []Row) []domain.PurchaseOrder {
	byPO := make(map[string][]domain.Part, len(poRows))
	for _, r := range partRows {
		part, poID := PartFromRow(r)
		byPO[poID] = append(byPO[poID], part)
	}
	out := make([]domain.PurchaseOrder, 0, len(poRows))
	for _, r := range poRows {
		id := asString(r["id"])
		out = append(out, PurchaseOrderFromRow(r, byPO[id]))
	}
	return out
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
