package tracker

import (
	"context"
	"fmt"

	"projecttracker/internal/domain"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

// entity describes how one collection maps to its table.
type entity[T, P any] struct {
	table    repository.Table
	toRow    func(T) (repository.Row, error)
	fromRow  func(repository.Row) T
	patchRow func(P) (repository.Row, error)
	apply    func(P, *T)
	id       func(T) string
	list     func(*Controller) *[]T
}

var (
	clientEntity = entity[domain.Client, domain.ClientPatch]{
		table:    repository.TableClients,
		toRow:    repository.ClientToRow,
		fromRow:  repository.ClientFromRow,
		patchRow: repository.ClientPatchRow,
		apply:    domain.ClientPatch.Apply,
		id:       func(v domain.Client) string { return v.ID },
		list:     func(c *Controller) *[]domain.Client { return &c.clients },
	}
	supplierEntity = entity[domain.Supplier, domain.SupplierPatch]{
		table:    repository.TableSuppliers,
		toRow:    repository.SupplierToRow,
		fromRow:  repository.SupplierFromRow,
		patchRow: repository.SupplierPatchRow,
		apply:    domain.SupplierPatch.Apply,
		id:       func(v domain.Supplier) string { return v.ID },
		list:     func(c *Controller) *[]domain.Supplier { return &c.suppliers },
	}
	projectEntity = entity[domain.Project, domain.ProjectPatch]{
		table:    repository.TableProjects,
		toRow:    repository.ProjectToRow,
		fromRow:  repository.ProjectFromRow,
		patchRow: repository.ProjectPatchRow,
		apply:    domain.ProjectPatch.Apply,
		id:       func(v domain.Project) string { return v.ID },
		list:     func(c *Controller) *[]domain.Project { return &c.projects },
	}
	externalLinkEntity = entity[domain.ExternalLink, domain.ExternalLinkPatch]{
		table:    repository.TableExternalLinks,
		toRow:    repository.ExternalLinkToRow,
		fromRow:  repository.ExternalLinkFromRow,
		patchRow: repository.ExternalLinkPatchRow,
		apply:    domain.ExternalLinkPatch.Apply,
		id:       func(v domain.ExternalLink) string { return v.ID },
		list:     func(c *Controller) *[]domain.ExternalLink { return &c.externalLinks },
	}
	shipmentEntity = entity[domain.Shipment, domain.ShipmentPatch]{
		table:    repository.TableShipments,
		toRow:    repository.ShipmentToRow,
		fromRow:  repository.ShipmentFromRow,
		patchRow: repository.ShipmentPatchRow,
		apply:    domain.ShipmentPatch.Apply,
		id:       func(v domain.Shipment) string { return v.ID },
		list:     func(c *Controller) *[]domain.Shipment { return &c.shipments },
	}
	// purchase order rows without parts; parts go through the purchase order methods
	purchaseOrderEntity = entity[domain.PurchaseOrder, domain.PurchaseOrderPatch]{
		table:    repository.TablePurchaseOrders,
		toRow:    repository.PurchaseOrderToRow,
		fromRow:  func(r repository.Row) domain.PurchaseOrder { return repository.PurchaseOrderFromRow(r, nil) },
		patchRow: repository.PurchaseOrderPatchRow,
		apply:    domain.PurchaseOrderPatch.Apply,
		id:       func(v domain.PurchaseOrder) string { return v.ID },
		list:     func(c *Controller) *[]domain.PurchaseOrder { return &c.purchaseOrders },
	}
)

func (c *Controller) logErr(funcName, context string, data any, err error) {
	logger.LogError(c.log, "tracker", funcName, context, data, err)
}

// addEntity inserts v and appends the stored row locally. Nothing is appended
// before the store confirms.
func addEntity[T, P any](ctx context.Context, c *Controller, e entity[T, P], funcName string, v T) (T, error) {
	var zero T
	if err := c.ready(); err != nil {
		return zero, err
	}
	row, err := e.toRow(v)
	if err != nil {
		c.logErr(funcName, "encode", v, err)
		return zero, err
	}

	gen := c.gen(e.table)
	rows, err := c.store.Insert(ctx, e.table, []repository.Row{row})
	if err != nil {
		c.logErr(funcName, "insert", v, err)
		return zero, err
	}
	if len(rows) != 1 {
		err := fmt.Errorf("%s: insert returned %d rows", e.table, len(rows))
		c.logErr(funcName, "insert", v, err)
		return zero, err
	}

	stored := e.fromRow(rows[0])
	c.applyLocal(e.table, gen, func() {
		l := e.list(c)
		*l = append(*l, stored)
	})
	return stored, nil
}

// updateEntity sends only the fields set in p and merges them into the local entry.
func updateEntity[T, P any](ctx context.Context, c *Controller, e entity[T, P], funcName, id string, p P) error {
	if err := c.ready(); err != nil {
		return err
	}
	patch, err := e.patchRow(p)
	if err != nil {
		c.logErr(funcName, "encode", p, err)
		return err
	}
	if len(patch) == 0 {
		if _, ok := findLocal(c, e, id); !ok {
			err := notFound(e.table, id)
			c.logErr(funcName, "empty patch", id, err)
			return err
		}
		return nil
	}

	gen := c.gen(e.table)
	n, err := c.store.Update(ctx, e.table, repository.ByID(id), patch)
	if err != nil {
		c.logErr(funcName, "update", patch, err)
		return err
	}
	if n == 0 {
		err := notFound(e.table, id)
		c.logErr(funcName, "update", patch, err)
		return err
	}

	c.applyLocal(e.table, gen, func() {
		l := *e.list(c)
		for i := range l {
			if e.id(l[i]) == id {
				e.apply(p, &l[i])
				return
			}
		}
	})
	return nil
}

// deleteEntity removes the row and then the local entry. A missing row is an error.
func deleteEntity[T, P any](ctx context.Context, c *Controller, e entity[T, P], funcName, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	gen := c.gen(e.table)
	n, err := c.store.Delete(ctx, e.table, repository.ByID(id))
	if err != nil {
		c.logErr(funcName, "delete", id, err)
		return err
	}
	if n == 0 {
		err := notFound(e.table, id)
		c.logErr(funcName, "delete", id, err)
		return err
	}

	c.applyLocal(e.table, gen, func() {
		l := e.list(c)
		out := (*l)[:0:0]
		for _, v := range *l {
			if e.id(v) != id {
				out = append(out, v)
			}
		}
		*l = out
	})
	return nil
}

func findLocal[T, P any](c *Controller, e entity[T, P], id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range *e.list(c) {
		if e.id(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller) AddClient(ctx context.Context, v domain.Client) (domain.Client, error) {
	return addEntity(ctx, c, clientEntity, "AddClient", v)
}

func (c *Controller) UpdateClient(ctx context.Context, id string, p domain.ClientPatch) error {
	return updateEntity(ctx, c, clientEntity, "UpdateClient", id, p)
}

func (c *Controller) DeleteClient(ctx context.Context, id string) error {
	return deleteEntity(ctx, c, clientEntity, "DeleteClient", id)
}

func (c *Controller) AddSupplier(ctx context.Context, v domain.Supplier) (domain.Supplier, error) {
	return addEntity(ctx, c, supplierEntity, "AddSupplier", v)
}

func (c *Controller) UpdateSupplier(ctx context.Context, id string, p domain.SupplierPatch) error {
	return updateEntity(ctx, c, supplierEntity, "UpdateSupplier", id, p)
}

func (c *Controller) DeleteSupplier(ctx context.Context, id string) error {
	return deleteEntity(ctx, c, supplierEntity, "DeleteSupplier", id)
}

func (c *Controller) AddProject(ctx context.Context, v domain.Project) (domain.Project, error) {
	p, err := addEntity(ctx, c, projectEntity, "AddProject", v)
	if err != nil {
		return p, err
	}
	c.reconcileAfter(ctx, "AddProject")
	return p, nil
}

func (c *Controller) UpdateProject(ctx context.Context, id string, p domain.ProjectPatch) error {
	if err := c.updateProject(ctx, id, p); err != nil {
		return err
	}
	c.reconcileAfter(ctx, "UpdateProject")
	return nil
}

// updateProject is UpdateProject without the reconcile pass; the pipeline uses it.
func (c *Controller) updateProject(ctx context.Context, id string, p domain.ProjectPatch) error {
	return updateEntity(ctx, c, projectEntity, "UpdateProject", id, p)
}

func (c *Controller) DeleteProject(ctx context.Context, id string) error {
	return deleteEntity(ctx, c, projectEntity, "DeleteProject", id)
}

func (c *Controller) AddExternalLink(ctx context.Context, v domain.ExternalLink) (domain.ExternalLink, error) {
	return addEntity(ctx, c, externalLinkEntity, "AddExternalLink", v)
}

func (c *Controller) UpdateExternalLink(ctx context.Context, id string, p domain.ExternalLinkPatch) error {
	return updateEntity(ctx, c, externalLinkEntity, "UpdateExternalLink", id, p)
}

func (c *Controller) DeleteExternalLink(ctx context.Context, id string) error {
	return deleteEntity(ctx, c, externalLinkEntity, "DeleteExternalLink", id)
}

func (c *Controller) AddShipment(ctx context.Context, v domain.Shipment) (domain.Shipment, error) {
	if err := c.checkShipmentParts(v); err != nil {
		c.logErr("AddShipment", "check parts", v, err)
		return domain.Shipment{}, err
	}
	return addEntity(ctx, c, shipmentEntity, "AddShipment", v)
}

func (c *Controller) UpdateShipment(ctx context.Context, id string, p domain.ShipmentPatch) error {
	if p.PartIDs != nil || p.PurchaseOrderIDs != nil {
		if cur, ok := findLocal(c, shipmentEntity, id); ok {
			next := cur.Clone()
			p.Apply(&next)
			if err := c.checkShipmentParts(next); err != nil {
				c.logErr("UpdateShipment", "check parts", p, err)
				return err
			}
		}
	}
	return updateEntity(ctx, c, shipmentEntity, "UpdateShipment", id, p)
}

func (c *Controller) DeleteShipment(ctx context.Context, id string) error {
	return deleteEntity(ctx, c, shipmentEntity, "DeleteShipment", id)
}

// checkShipmentParts requires every listed part to belong to one of the
// shipment's purchase orders.
func (c *Controller) checkShipmentParts(s domain.Shipment) error {
	if len(s.PartIDs) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(s.PurchaseOrderIDs))
	for _, id := range s.PurchaseOrderIDs {
		wanted[id] = true
	}

	owned := make(map[string]bool)
	c.mu.RLock()
	for _, po := range c.purchaseOrders {
		if !wanted[po.ID] {
			continue
		}
		for _, part := range po.Parts {
			owned[part.ID] = true
		}
	}
	c.mu.RUnlock()

	for _, id := range s.PartIDs {
		if !owned[id] {
			return fmt.Errorf("%w: %s", ErrShipmentPartMismatch, id)
		}
	}
	return nil
}
