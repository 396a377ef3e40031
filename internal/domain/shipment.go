package domain

type ShipmentType string

const (
	ShipmentAir   ShipmentType = "Air"
	ShipmentOcean ShipmentType = "Ocean"
)

type Shipment struct {
	ID               string       `json:"id"`
	Type             ShipmentType `json:"type" validate:"required,oneof=Air Ocean"`
	ProjectID        string       `json:"projectId" validate:"required"`
	SupplierID       string       `json:"supplierId" validate:"required"`
	PurchaseOrderIDs []string     `json:"purchaseOrderIds" validate:"required,min=1"`
	PartIDs          []string     `json:"partIds,omitempty"`
	ShippedDate      string       `json:"shippedDate,omitempty"`
	ETD              string       `json:"etd,omitempty"`
	ETA              string       `json:"eta,omitempty"`
	Status           string       `json:"status"`
	ContainerNumber  string       `json:"containerNumber,omitempty"`
	TrackingNumber   string       `json:"trackingNumber,omitempty"`
	LockNumber       string       `json:"lockNumber,omitempty"`
	Notes            string       `json:"notes,omitempty"`
}

type ShipmentPatch struct {
	Type             *ShipmentType `json:"type,omitempty"`
	ProjectID        *string       `json:"projectId,omitempty"`
	SupplierID       *string       `json:"supplierId,omitempty"`
	PurchaseOrderIDs *[]string     `json:"purchaseOrderIds,omitempty"`
	PartIDs          *[]string     `json:"partIds,omitempty"`
	ShippedDate      *string       `json:"shippedDate,omitempty"`
	ETD              *string       `json:"etd,omitempty"`
	ETA              *string       `json:"eta,omitempty"`
	Status           *string       `json:"status,omitempty"`
	ContainerNumber  *string       `json:"containerNumber,omitempty"`
	TrackingNumber   *string       `json:"trackingNumber,omitempty"`
	LockNumber       *string       `json:"lockNumber,omitempty"`
	Notes            *string       `json:"notes,omitempty"`
}

func (p ShipmentPatch) Apply(s *Shipment) {
	if p.Type != nil {
		s.Type = *p.Type
	}
	setString(&s.ProjectID, p.ProjectID)
	setString(&s.SupplierID, p.SupplierID)
	if p.PurchaseOrderIDs != nil {
		s.PurchaseOrderIDs = append([]string(nil), (*p.PurchaseOrderIDs)...)
	}
	if p.PartIDs != nil {
		s.PartIDs = append([]string(nil), (*p.PartIDs)...)
	}
	setString(&s.ShippedDate, p.ShippedDate)
	setString(&s.ETD, p.ETD)
	setString(&s.ETA, p.ETA)
	setString(&s.Status, p.Status)
	setString(&s.ContainerNumber, p.ContainerNumber)
	setString(&s.TrackingNumber, p.TrackingNumber)
	setString(&s.LockNumber, p.LockNumber)
	setString(&s.Notes, p.Notes)
}

func (s Shipment) Clone() Shipment {
	s.PurchaseOrderIDs = append([]string(nil), s.PurchaseOrderIDs...)
	if s.PartIDs != nil {
		s.PartIDs = append([]string(nil), s.PartIDs...)
	}
	return s
}
