// Package seed holds the built-in demo dataset installed when the store cannot be read.
package seed

import (
	"fmt"

	"github.com/shopspring/decimal"

	"projecttracker/internal/domain"
	"projecttracker/internal/progress"
)

type Data struct {
	Clients        []domain.Client
	Suppliers      []domain.Supplier
	Projects       []domain.Project
	PurchaseOrders []domain.PurchaseOrder
	ExternalLinks  []domain.ExternalLink
	Shipments      []domain.Shipment
}

// Dataset returns the demo data. Every call yields equal, independent values, and
// stored progress already matches the roll-up.
func Dataset() Data {
	d := Data{
		Clients:   clients(),
		Suppliers: suppliers(),
		Projects:  projects(),
	}
	d.PurchaseOrders = purchaseOrders()
	for i := range d.PurchaseOrders {
		if len(d.PurchaseOrders[i].Parts) > 0 {
			d.PurchaseOrders[i].Progress = domain.Ptr(progress.PartOfProgress(d.PurchaseOrders[i]))
		}
	}
	for i := range d.Projects {
		d.Projects[i].Progress = progress.ProjectProgress(d.Projects[i], d.PurchaseOrders)
	}
	d.ExternalLinks = externalLinks()
	d.Shipments = shipments()
	return d
}

func clients() []domain.Client {
	return []domain.Client{
		{ID: "client-1", Name: "Northwind Energy", ContactPerson: "Maria Lopez", Email: "maria.lopez@northwind.example", Phone: "+1 512 555 0101", Location: "Austin, TX"},
		{ID: "client-2", Name: "Harbor Logistics", ContactPerson: "Tom Becker", Email: "t.becker@harbor.example", Phone: "+49 40 555 0102", Location: "Hamburg, DE"},
		{ID: "client-3", Name: "Sunrise Foods", ContactPerson: "Aiko Tanaka", Email: "aiko@sunrise.example", Phone: "+81 3 555 0103", Location: "Osaka, JP"},
		{ID: "client-4", Name: "Delta Mining", ContactPerson: "Sam Okafor", Email: "sam.okafor@delta.example", Phone: "+27 11 555 0104", Location: "Johannesburg, ZA"},
	}
}

func suppliers() []domain.Supplier {
	return []domain.Supplier{
		{ID: "supplier-1", Name: "Apex Steel", Country: "China", Location: "Tianjin", ContactPerson: "Li Wei", Email: "sales@apexsteel.example", Phone: "+86 22 555 0201",
			Rating: 4.5, OnTimeDelivery: 94, PositiveComments: []string{"Consistent weld quality", "Responsive to drawing changes"}, NegativeComments: []string{"Packaging could be sturdier"}},
		{ID: "supplier-2", Name: "Baltic Hydraulics", Country: "Poland", Location: "Gdansk", ContactPerson: "Piotr Nowak", Email: "orders@baltichyd.example", Phone: "+48 58 555 0202",
			Rating: 4.1, OnTimeDelivery: 88, PositiveComments: []string{"Good documentation"}, NegativeComments: []string{"Long lead time on seals"}},
		{ID: "supplier-3", Name: "Cobalt Electrics", Country: "Vietnam", Location: "Hai Phong", ContactPerson: "Nguyen An", Email: "an@cobalt.example", Phone: "+84 225 555 0203",
			Rating: 3.8, OnTimeDelivery: 79, PositiveComments: []string{"Competitive pricing"}, NegativeComments: []string{"Missed two FAT dates", "Slow replies"}},
		{ID: "supplier-4", Name: "Dune Castings", Country: "India", Location: "Pune", ContactPerson: "Ravi Mehta", Email: "ravi@dunecast.example", Phone: "+91 20 555 0204",
			Rating: 4.7, OnTimeDelivery: 97, PositiveComments: []string{"Excellent surface finish", "Proactive updates"}, NegativeComments: []string{}},
		{ID: "supplier-5", Name: "Eastline Conveyors", Country: "Turkey", Location: "Izmir", ContactPerson: "Selin Kaya", Email: "selin@eastline.example", Phone: "+90 232 555 0205",
			Rating: 4.0, OnTimeDelivery: 85, PositiveComments: []string{"Flexible on scope"}, NegativeComments: []string{"Invoices often late"}},
	}
}

func projects() []domain.Project {
	return []domain.Project{
		{ID: "project-1", Name: "Solar Farm Expansion", ClientID: "client-1", Location: "Pecos, TX", Status: domain.ProjectInProgress, StartDate: "2024-01-15", EndDate: "2024-11-30", ProjectManager: "Alex Kim", Description: "Mounting structures and inverter skids for phase two."},
		{ID: "project-2", Name: "Cold Storage Terminal", ClientID: "client-2", Location: "Hamburg, DE", Status: domain.ProjectInProgress, StartDate: "2024-02-01", EndDate: "2024-12-15", ProjectManager: "Jana Vogel", Description: "Refrigerated container racks and dock levellers."},
		{ID: "project-3", Name: "Packaging Line Retrofit", ClientID: "client-3", Location: "Osaka, JP", Status: domain.ProjectDelayed, StartDate: "2023-10-01", EndDate: "2024-06-30", ProjectManager: "Kenji Sato", Description: "Replace conveyors and controls on line 4."},
		{ID: "project-4", Name: "Ore Crusher Upgrade", ClientID: "client-4", Location: "Rustenburg, ZA", Status: domain.ProjectPending, StartDate: "2024-05-01", EndDate: "2025-03-31", ProjectManager: "Thabo Dlamini", Description: "Crusher housing and hydraulic adjustment system."},
		{ID: "project-5", Name: "Substation Enclosures", ClientID: "client-1", Location: "Midland, TX", Status: domain.ProjectCompleted, StartDate: "2023-03-01", EndDate: "2023-12-20", ProjectManager: "Alex Kim", Description: "Prefabricated switchgear enclosures."},
		{ID: "project-6", Name: "Warehouse Automation", ClientID: "client-2", Location: "Bremen, DE", Status: domain.ProjectInProgress, StartDate: "2024-03-10", EndDate: "2025-01-31", ProjectManager: "Jana Vogel", Description: "Shuttle racking and sortation conveyors."},
	}
}

type partSpec struct {
	name     string
	quantity int
	progress int
}

type poSpec struct {
	number   string
	project  string
	supplier string
	status   domain.PurchaseOrderStatus
	issued   string
	deadline string
	amount   string
	desc     string
	parts    []partSpec
}

var poSpecs = []poSpec{
	{"PO-2024-001", "project-1", "supplier-1", domain.POActive, "2024-01-20", "2024-05-30", "184500.00", "Galvanised mounting rails", []partSpec{
		{"Rail 6m", 1200, 80}, {"Clamp set", 4800, 70}, {"Ground lug", 2400, 60}}},
	{"PO-2024-002", "project-1", "supplier-3", domain.POActive, "2024-02-05", "2024-07-15", "96250.00", "Inverter skid wiring", []partSpec{
		{"Cable tray", 300, 40}, {"Junction box", 60, 30}, {"Terminal kit", 60, 20}, {"Busbar", 120, 50}}},
	{"PO-2024-003", "project-2", "supplier-1", domain.POActive, "2024-02-10", "2024-06-30", "142000.00", "Container rack frames", []partSpec{
		{"Upright frame", 240, 90}, {"Beam pair", 960, 85}, {"Base plate", 480, 100}}},
	// Second release of the same order number: same scope, delivered in two lots.
	{"PO-2024-003", "project-2", "supplier-1", domain.POActive, "2024-03-01", "2024-08-30", "71000.00", "Container rack frames, lot 2", []partSpec{
		{"Upright frame", 120, 40}, {"Beam pair", 480, 30}, {"Base plate", 240, 50}}},
	{"PO-2024-004", "project-2", "supplier-2", domain.PODelayed, "2024-02-20", "2024-05-31", "58900.00", "Dock leveller hydraulics", []partSpec{
		{"Cylinder", 24, 35}, {"Power pack", 12, 20}, {"Hose kit", 24, 45}}},
	{"PO-2023-017", "project-3", "supplier-5", domain.PODelayed, "2023-10-12", "2024-02-28", "210300.00", "Line 4 conveyors", []partSpec{
		{"Belt conveyor 3m", 18, 60}, {"Transfer unit", 6, 40}, {"Drive motor", 24, 75}, {"Guard rail", 90, 55}}},
	{"PO-2023-018", "project-3", "supplier-3", domain.POActive, "2023-11-02", "2024-04-15", "48700.00", "Line 4 control cabinet", []partSpec{
		{"PLC rack", 2, 50}, {"HMI panel", 2, 30}, {"Sensor kit", 40, 65}}},
	{"PO-2024-010", "project-4", "supplier-4", domain.POActive, "2024-05-06", "2024-12-20", "325000.00", "Crusher housing castings", []partSpec{
		{"Upper housing", 1, 10}, {"Lower housing", 1, 5}, {"Liner segment", 36, 0}}},
	{"PO-2024-011", "project-4", "supplier-2", domain.POActive, "2024-05-10", "2025-01-31", "87400.00", "Setting adjustment hydraulics", []partSpec{
		{"Adjustment cylinder", 4, 0}, {"Accumulator", 2, 15}, {"Control valve", 4, 5}}},
	{"PO-2023-005", "project-5", "supplier-1", domain.POCompleted, "2023-03-15", "2023-09-30", "156800.00", "Enclosure steelwork", []partSpec{
		{"Wall panel", 64, 100}, {"Roof panel", 16, 100}, {"Door set", 8, 100}}},
	{"PO-2024-020", "project-6", "supplier-5", domain.POActive, "2024-03-18", "2024-10-31", "264100.00", "Sortation conveyors", []partSpec{
		{"Sorter module", 12, 45}, {"Merge unit", 6, 30}, {"Spiral chute", 4, 20}, {"Roller section", 80, 55}}},
	{"PO-2024-021", "project-6", "supplier-4", domain.POActive, "2024-04-02", "2024-11-15", "119900.00", "Shuttle rail castings", []partSpec{
		{"Rail bracket", 800, 70}, {"End stop", 120, 60}, {"Lift carriage", 8, 25}}},
}

func purchaseOrders() []domain.PurchaseOrder {
	out := make([]domain.PurchaseOrder, 0, len(poSpecs))
	for i, s := range poSpecs {
		id := fmt.Sprintf("po-%d", i+1)
		amount := decimal.RequireFromString(s.amount)
		parts := make([]domain.Part, 0, len(s.parts))
		for j, p := range s.parts {
			status := "In Production"
			switch {
			case p.progress == 100:
				status = "Completed"
			case p.progress == 0:
				status = "Not Started"
			}
			parts = append(parts, domain.Part{
				ID:       fmt.Sprintf("%s-part-%d", id, j+1),
				Name:     p.name,
				Quantity: p.quantity,
				Status:   status,
				Progress: domain.Ptr(p.progress),
			})
		}
		out = append(out, domain.PurchaseOrder{
			ID:          id,
			PONumber:    s.number,
			ProjectID:   s.project,
			SupplierID:  s.supplier,
			Status:      s.status,
			IssuedDate:  s.issued,
			Deadline:    s.deadline,
			Amount:      &amount,
			Description: s.desc,
			Parts:       parts,
		})
	}
	return out
}

func externalLinks() []domain.ExternalLink {
	return []domain.ExternalLink{
		{ID: "link-1", Title: "Rail FAT report", URL: "https://docs.example.com/reports/po-2024-001-fat.pdf", Type: domain.LinkReport, Date: "2024-04-18", SupplierID: "supplier-1", ProjectID: "project-1", POID: "po-1"},
		{ID: "link-2", Title: "Rack frame photos", URL: "https://photos.example.com/albums/po-2024-003", Type: domain.LinkPhoto, Date: "2024-05-02", SupplierID: "supplier-1", ProjectID: "project-2", POID: "po-3"},
		{ID: "link-3", Title: "Hamburg ocean tracking", URL: "https://track.example.com/MSCU7788123", Type: domain.LinkTracking, Date: "2024-06-10", ProjectID: "project-2", POID: "po-3"},
		{ID: "link-4", Title: "Conveyor delay notice", URL: "https://docs.example.com/reports/po-2023-017-delay.pdf", Type: domain.LinkReport, Date: "2024-03-05", SupplierID: "supplier-5", ProjectID: "project-3", POID: "po-6"},
		{ID: "link-5", Title: "Casting pattern photos", URL: "https://photos.example.com/albums/po-2024-010", Type: domain.LinkPhoto, Date: "2024-07-22", SupplierID: "supplier-4", ProjectID: "project-4", POID: "po-8"},
		{ID: "link-6", Title: "Supplier audit Dune Castings", URL: "https://docs.example.com/audits/dune-2024.pdf", Type: domain.LinkReport, Date: "2024-02-14", SupplierID: "supplier-4"},
		{ID: "link-7", Title: "Enclosure handover", URL: "https://docs.example.com/reports/project-5-handover.pdf", Type: domain.LinkReport, Date: "2023-12-20", ProjectID: "project-5"},
		{ID: "link-8", Title: "Sorter air freight", URL: "https://track.example.com/AWB-176-55512345", Type: domain.LinkTracking, Date: "2024-08-03", SupplierID: "supplier-5", ProjectID: "project-6", POID: "po-11"},
	}
}

func shipments() []domain.Shipment {
	return []domain.Shipment{
		{ID: "shipment-1", Type: domain.ShipmentOcean, ProjectID: "project-2", SupplierID: "supplier-1",
			PurchaseOrderIDs: []string{"po-3"}, PartIDs: []string{"po-3-part-1", "po-3-part-3"},
			ShippedDate: "2024-06-08", ETD: "2024-06-10", ETA: "2024-07-22", Status: "In Transit",
			ContainerNumber: "MSCU7788123", LockNumber: "SL-448812", Notes: "Lot 1 frames and base plates."},
		{ID: "shipment-2", Type: domain.ShipmentAir, ProjectID: "project-6", SupplierID: "supplier-5",
			PurchaseOrderIDs: []string{"po-11"}, PartIDs: []string{"po-11-part-1"},
			ShippedDate: "2024-08-02", ETD: "2024-08-03", ETA: "2024-08-05", Status: "Delivered",
			TrackingNumber: "176-55512345", Notes: "Expedited sorter modules."},
		{ID: "shipment-3", Type: domain.ShipmentOcean, ProjectID: "project-5", SupplierID: "supplier-1",
			PurchaseOrderIDs: []string{"po-10"},
			ShippedDate: "2023-10-02", ETD: "2023-10-04", ETA: "2023-11-15", Status: "Delivered",
			ContainerNumber: "HLXU5521907", LockNumber: "SL-300215"},
	}
}
