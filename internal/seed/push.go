package seed

import (
	"context"
	"fmt"

	"projecttracker/internal/repository"
)

type Inserter interface {
	Insert(ctx context.Context, t repository.Table, rows []repository.Row) ([]repository.Row, error)
}

// Push writes d into the store, parents first. It stops at the first failure and
// leaves whatever was already written.
func Push(ctx context.Context, s Inserter, d Data) error {
	batches, err := rows(d)
	if err != nil {
		return err
	}
	for _, t := range repository.AllTables {
		if len(batches[t]) == 0 {
			continue
		}
		if _, err := s.Insert(ctx, t, batches[t]); err != nil {
			return fmt.Errorf("seed %s: %w", t, err)
		}
	}
	return nil
}

func rows(d Data) (map[repository.Table][]repository.Row, error) {
	out := make(map[repository.Table][]repository.Row, len(repository.AllTables))
	add := func(t repository.Table, row repository.Row, err error) error {
		if err != nil {
			return err
		}
		out[t] = append(out[t], row)
		return nil
	}

	for _, c := range d.Clients {
		row, err := repository.ClientToRow(c)
		if err := add(repository.TableClients, row, err); err != nil {
			return nil, err
		}
	}
	for _, s := range d.Suppliers {
		row, err := repository.SupplierToRow(s)
		if err := add(repository.TableSuppliers, row, err); err != nil {
			return nil, err
		}
	}
	for _, p := range d.Projects {
		row, err := repository.ProjectToRow(p)
		if err := add(repository.TableProjects, row, err); err != nil {
			return nil, err
		}
	}
	for _, po := range d.PurchaseOrders {
		row, err := repository.PurchaseOrderToRow(po)
		if err := add(repository.TablePurchaseOrders, row, err); err != nil {
			return nil, err
		}
		for _, part := range po.Parts {
			row, err := repository.PartToRow(po.ID, part)
			if err := add(repository.TableParts, row, err); err != nil {
				return nil, err
			}
		}
	}
	for _, l := range d.ExternalLinks {
		row, err := repository.ExternalLinkToRow(l)
		if err := add(repository.TableExternalLinks, row, err); err != nil {
			return nil, err
		}
	}
	for _, s := range d.Shipments {
		row, err := repository.ShipmentToRow(s)
		if err := add(repository.TableShipments, row, err); err != nil {
			return nil, err
		}
	}
	return out, nil
}
