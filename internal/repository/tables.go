package repository

import "fmt"

// Table names a physical table in the remote store.
type Table string

const (
	TableClients        Table = "clients"
	TableSuppliers      Table = "suppliers"
	TableProjects       Table = "projects"
	TablePurchaseOrders Table = "purchase_orders"
	TableParts          Table = "parts"
	TableExternalLinks  Table = "external_links"
	TableShipments      Table = "shipments"
)

// AllTables lists every table in parent-before-child order.
var AllTables = []Table{
	TableClients,
	TableSuppliers,
	TableProjects,
	TablePurchaseOrders,
	TableParts,
	TableExternalLinks,
	TableShipments,
}

func (t Table) Valid() bool {
	_, ok := fieldMaps[t]
	return ok
}

func (t Table) validate() error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTable, string(t))
	}
	return nil
}

// Row is a single record in wire shape: snake_case column names to values.
type Row map[string]any

// Filter selects rows whose Column equals Value.
type Filter struct {
	Column string
	Value  any
}

func ByID(id string) Filter {
	return Filter{Column: "id", Value: id}
}

func ByPurchaseOrder(poID string) Filter {
	return Filter{Column: "purchase_order_id", Value: poID}
}
