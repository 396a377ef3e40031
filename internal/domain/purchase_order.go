package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	POActive    PurchaseOrderStatus = "Active"
	POCompleted PurchaseOrderStatus = "Completed"
	PODelayed   PurchaseOrderStatus = "Delayed"
)

// unsavedPartPrefix marks part ids issued on the client before the store has seen them.
const unsavedPartPrefix = "new-"

// PurchaseOrder is one row of an order; several rows may share a PONumber.
type PurchaseOrder struct {
	ID          string              `json:"id"`
	PONumber    string              `json:"poNumber" validate:"required"`
	ProjectID   string              `json:"projectId" validate:"required"`
	SupplierID  string              `json:"supplierId" validate:"required"`
	Status      PurchaseOrderStatus `json:"status"`
	IssuedDate  string              `json:"issuedDate"`
	Deadline    string              `json:"deadline"`
	Progress    *int                `json:"progress,omitempty"`
	Amount      *decimal.Decimal    `json:"amount,omitempty"`
	Description string              `json:"description,omitempty"`
	Parts       []Part              `json:"parts" validate:"dive"`
}

type Part struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	Status   string `json:"status"`
	Progress *int   `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ProgressOrZero is the stored progress, zero when unset.
func (po PurchaseOrder) ProgressOrZero() int {
	if po.Progress == nil {
		return 0
	}
	return *po.Progress
}

func (p Part) ProgressOrZero() int {
	if p.Progress == nil {
		return 0
	}
	return *p.Progress
}

// Clone returns a deep copy so callers cannot mutate collection state through it.
func (po PurchaseOrder) Clone() PurchaseOrder {
	if po.Progress != nil {
		v := *po.Progress
		po.Progress = &v
	}
	if po.Amount != nil {
		v := *po.Amount
		po.Amount = &v
	}
	parts := make([]Part, len(po.Parts))
	for i, p := range po.Parts {
		if p.Progress != nil {
			v := *p.Progress
			p.Progress = &v
		}
		parts[i] = p
	}
	po.Parts = parts
	return po
}

type PurchaseOrderPatch struct {
	PONumber    *string              `json:"poNumber,omitempty"`
	ProjectID   *string              `json:"projectId,omitempty"`
	SupplierID  *string              `json:"supplierId,omitempty"`
	Status      *PurchaseOrderStatus `json:"status,omitempty"`
	IssuedDate  *string              `json:"issuedDate,omitempty"`
	Deadline    *string              `json:"deadline,omitempty"`
	Progress    *int                 `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	Amount      *decimal.Decimal     `json:"amount,omitempty"`
	Description *string              `json:"description,omitempty"`
	// Parts nil leaves the part list alone; a non-nil empty slice removes every part.
	Parts *[]Part `json:"parts,omitempty" validate:"omitempty,dive"`
}

// Apply merges the scalar fields of p into po. Parts are reconciled against the store
// separately and are not touched here.
func (p PurchaseOrderPatch) Apply(po *PurchaseOrder) {
	setString(&po.PONumber, p.PONumber)
	setString(&po.ProjectID, p.ProjectID)
	setString(&po.SupplierID, p.SupplierID)
	if p.Status != nil {
		po.Status = *p.Status
	}
	setString(&po.IssuedDate, p.IssuedDate)
	setString(&po.Deadline, p.Deadline)
	if p.Progress != nil {
		v := *p.Progress
		po.Progress = &v
	}
	if p.Amount != nil {
		v := *p.Amount
		po.Amount = &v
	}
	setString(&po.Description, p.Description)
}

type PartPatch struct {
	Name     *string `json:"name,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
	Status   *string `json:"status,omitempty"`
	Progress *int    `json:"progress,omitempty"`
}

// NewPartID issues an id for a part that has not been stored yet.
func NewPartID() string {
	return unsavedPartPrefix + uuid.NewString()
}

// IsUnsavedPartID reports whether id was issued by NewPartID (or is empty).
func IsUnsavedPartID(id string) bool {
	return id == "" || strings.HasPrefix(id, unsavedPartPrefix)
}
