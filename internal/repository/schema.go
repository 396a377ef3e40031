package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type clientModel struct {
	ID            string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name          string    `gorm:"column:name;not null"`
	ContactPerson *string   `gorm:"column:contact_person"`
	Email         *string   `gorm:"column:email"`
	Phone         *string   `gorm:"column:phone"`
	Location      *string   `gorm:"column:location"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
}

func (clientModel) TableName() string { return string(TableClients) }

type supplierModel struct {
	ID               string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name             string         `gorm:"column:name;not null"`
	Country          *string        `gorm:"column:country"`
	Location         *string        `gorm:"column:location"`
	ContactPerson    *string        `gorm:"column:contact_person"`
	Email            *string        `gorm:"column:email"`
	Phone            *string        `gorm:"column:phone"`
	Rating           float64        `gorm:"column:rating;not null;default:0"`
	OnTimeDelivery   float64        `gorm:"column:on_time_delivery;not null;default:0"`
	PositiveComments datatypes.JSON `gorm:"column:positive_comments"`
	NegativeComments datatypes.JSON `gorm:"column:negative_comments"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null"`
}

func (supplierModel) TableName() string { return string(TableSuppliers) }

type projectModel struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name           string    `gorm:"column:name;not null"`
	ClientID       string    `gorm:"column:client_id;type:varchar(64);not null;index"`
	Location       *string   `gorm:"column:location"`
	Status         string    `gorm:"column:status;not null;default:'Pending'"`
	Progress       int       `gorm:"column:progress;not null;default:0"`
	StartDate      *string   `gorm:"column:start_date"`
	EndDate        *string   `gorm:"column:end_date"`
	ProjectManager *string   `gorm:"column:project_manager"`
	Description    *string   `gorm:"column:description;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`

	Client *clientModel `gorm:"foreignKey:ClientID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (projectModel) TableName() string { return string(TableProjects) }

type purchaseOrderModel struct {
	ID          string           `gorm:"column:id;primaryKey;type:varchar(64)"`
	PONumber    string           `gorm:"column:po_number;not null;index"`
	ProjectID   string           `gorm:"column:project_id;type:varchar(64);not null;index"`
	SupplierID  string           `gorm:"column:supplier_id;type:varchar(64);not null;index"`
	Status      string           `gorm:"column:status;not null;default:'Active'"`
	IssuedDate  *string          `gorm:"column:issued_date"`
	Deadline    *string          `gorm:"column:deadline"`
	Progress    *int             `gorm:"column:progress"`
	Amount      *decimal.Decimal `gorm:"column:amount;type:numeric(14,2)"`
	Description *string          `gorm:"column:description;type:text"`
	CreatedAt   time.Time        `gorm:"column:created_at;not null"`

	Project  *projectModel  `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:RESTRICT"`
	Supplier *supplierModel `gorm:"foreignKey:SupplierID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (purchaseOrderModel) TableName() string { return string(TablePurchaseOrders) }

type partModel struct {
	ID              string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	PurchaseOrderID string    `gorm:"column:purchase_order_id;type:varchar(64);not null;index"`
	Name            string    `gorm:"column:name;not null"`
	Quantity        int       `gorm:"column:quantity;not null;check:quantity > 0"`
	Status          *string   `gorm:"column:status"`
	Progress        *int      `gorm:"column:progress"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`

	PurchaseOrder *purchaseOrderModel `gorm:"foreignKey:PurchaseOrderID;references:ID;constraint:OnDelete:CASCADE"`
}

func (partModel) TableName() string { return string(TableParts) }

type externalLinkModel struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Title      string    `gorm:"column:title;not null"`
	URL        string    `gorm:"column:url;not null"`
	Type       *string   `gorm:"column:type"`
	Date       *string   `gorm:"column:date"`
	SupplierID *string   `gorm:"column:supplier_id;type:varchar(64);index"`
	ProjectID  *string   `gorm:"column:project_id;type:varchar(64);index"`
	POID       *string   `gorm:"column:po_id;type:varchar(64);index"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (externalLinkModel) TableName() string { return string(TableExternalLinks) }

type shipmentModel struct {
	ID               string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	Type             string         `gorm:"column:type;not null"`
	ProjectID        string         `gorm:"column:project_id;type:varchar(64);not null;index"`
	SupplierID       string         `gorm:"column:supplier_id;type:varchar(64);not null;index"`
	PurchaseOrderIDs datatypes.JSON `gorm:"column:purchase_order_ids;not null"`
	PartIDs          datatypes.JSON `gorm:"column:part_ids"`
	ShippedDate      *string        `gorm:"column:shipped_date"`
	ETD              *string        `gorm:"column:etd"`
	ETA              *string        `gorm:"column:eta"`
	Status           *string        `gorm:"column:status"`
	ContainerNumber  *string        `gorm:"column:container_number"`
	TrackingNumber   *string        `gorm:"column:tracking_number"`
	LockNumber       *string        `gorm:"column:lock_number"`
	Notes            *string        `gorm:"column:notes;type:text"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null"`

	Project  *projectModel  `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:RESTRICT"`
	Supplier *supplierModel `gorm:"foreignKey:SupplierID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (shipmentModel) TableName() string { return string(TableShipments) }

// modelFor returns an empty model of t for statements that need a schema.
func modelFor(t Table) any {
	switch t {
	case TableClients:
		return &clientModel{}
	case TableSuppliers:
		return &supplierModel{}
	case TableProjects:
		return &projectModel{}
	case TablePurchaseOrders:
		return &purchaseOrderModel{}
	case TableParts:
		return &partModel{}
	case TableExternalLinks:
		return &externalLinkModel{}
	case TableShipments:
		return &shipmentModel{}
	}
	return nil
}

// Migrate creates or updates every table the tracker uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&clientModel{},
		&supplierModel{},
		&projectModel{},
		&purchaseOrderModel{},
		&partModel{},
		&externalLinkModel{},
		&shipmentModel{},
	)
}
