package tracker

import (
	"context"
	"errors"
	"fmt"

	"projecttracker/internal/domain"
	"projecttracker/internal/repository"
)

const partsFK = "purchase_order_id"

// AddPurchaseOrder stores po and then its parts under the issued id. Stores that
// support it write both in one transaction. Otherwise a failed parts insert leaves
// the order stored without parts and returns ErrPartialPurchaseOrder.
func (c *Controller) AddPurchaseOrder(ctx context.Context, po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	if err := c.ready(); err != nil {
		return domain.PurchaseOrder{}, err
	}
	row, err := repository.PurchaseOrderToRow(po)
	if err != nil {
		c.logErr("AddPurchaseOrder", "encode", po, err)
		return domain.PurchaseOrder{}, err
	}
	partRows := make([]repository.Row, 0, len(po.Parts))
	for _, p := range po.Parts {
		pr, err := repository.PartToRow("", p)
		if err != nil {
			c.logErr("AddPurchaseOrder", "encode part", p, err)
			return domain.PurchaseOrder{}, err
		}
		partRows = append(partRows, pr)
	}

	gen := c.gen(repository.TablePurchaseOrders)
	stored, partial, err := c.insertPurchaseOrder(ctx, row, partRows)
	if err != nil && !partial {
		c.logErr("AddPurchaseOrder", "insert", po, err)
		return domain.PurchaseOrder{}, err
	}

	c.applyLocal(repository.TablePurchaseOrders, gen, func() {
		c.purchaseOrders = append(c.purchaseOrders, stored)
	})
	c.reconcileAfter(ctx, "AddPurchaseOrder")

	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrPartialPurchaseOrder, stored.ID, err)
		c.logErr("AddPurchaseOrder", "insert parts", po, err)
		return stored, err
	}
	return stored, nil
}

// insertPurchaseOrder reports partial when the order row was written but its parts
// were not.
func (c *Controller) insertPurchaseOrder(ctx context.Context, row repository.Row, partRows []repository.Row) (domain.PurchaseOrder, bool, error) {
	if tx, ok := c.store.(childInserter); ok {
		poRow, stored, err := tx.InsertWithChildren(ctx, repository.TablePurchaseOrders, row, repository.TableParts, partsFK, partRows)
		if err != nil {
			return domain.PurchaseOrder{}, false, err
		}
		return repository.AssemblePurchaseOrders([]repository.Row{poRow}, stored)[0], false, nil
	}

	rows, err := c.store.Insert(ctx, repository.TablePurchaseOrders, []repository.Row{row})
	if err != nil {
		return domain.PurchaseOrder{}, false, err
	}
	if len(rows) != 1 {
		return domain.PurchaseOrder{}, false, fmt.Errorf("%s: insert returned %d rows", repository.TablePurchaseOrders, len(rows))
	}
	po := repository.PurchaseOrderFromRow(rows[0], nil)
	if len(partRows) == 0 {
		return po, false, nil
	}

	for _, pr := range partRows {
		pr[partsFK] = po.ID
	}
	stored, err := c.store.Insert(ctx, repository.TableParts, partRows)
	if err != nil {
		return po, true, err
	}
	return repository.AssemblePurchaseOrders(rows, stored)[0], false, nil
}

// UpdatePurchaseOrder patches the order's own fields. When p.Parts is set the
// stored parts are reconciled against it (unsaved ids inserted, known ids
// updated, missing ones deleted) and orders are then reloaded from the store.
func (c *Controller) UpdatePurchaseOrder(ctx context.Context, id string, p domain.PurchaseOrderPatch) error {
	if err := c.ready(); err != nil {
		return err
	}
	if p.Parts == nil {
		if err := c.patchPurchaseOrder(ctx, id, p); err != nil {
			return err
		}
		c.reconcileAfter(ctx, "UpdatePurchaseOrder")
		return nil
	}

	scalar := p
	scalar.Parts = nil
	patch, err := repository.PurchaseOrderPatchRow(scalar)
	if err != nil {
		c.logErr("UpdatePurchaseOrder", "encode", p, err)
		return err
	}
	if len(patch) > 0 {
		n, err := c.store.Update(ctx, repository.TablePurchaseOrders, repository.ByID(id), patch)
		if err != nil {
			c.logErr("UpdatePurchaseOrder", "update", patch, err)
			return err
		}
		if n == 0 {
			err := notFound(repository.TablePurchaseOrders, id)
			c.logErr("UpdatePurchaseOrder", "update", patch, err)
			return err
		}
	} else if _, ok := findLocal(c, purchaseOrderEntity, id); !ok {
		err := notFound(repository.TablePurchaseOrders, id)
		c.logErr("UpdatePurchaseOrder", "reconcile parts", id, err)
		return err
	}

	partsErr := c.reconcileParts(ctx, id, *p.Parts)
	if partsErr != nil {
		c.logErr("UpdatePurchaseOrder", "reconcile parts", p.Parts, partsErr)
	}
	if err := c.reloadPurchaseOrders(ctx); err != nil {
		c.logErr("UpdatePurchaseOrder", "reload purchase orders", id, err)
		return errors.Join(partsErr, err)
	}
	c.reconcileAfter(ctx, "UpdatePurchaseOrder")
	return partsErr
}

// patchPurchaseOrder updates order fields only. Parts in p are ignored.
func (c *Controller) patchPurchaseOrder(ctx context.Context, id string, p domain.PurchaseOrderPatch) error {
	p.Parts = nil
	return updateEntity(ctx, c, purchaseOrderEntity, "UpdatePurchaseOrder", id, p)
}

func (c *Controller) reconcileParts(ctx context.Context, poID string, want []domain.Part) error {
	rows, err := c.store.FetchAll(ctx, repository.TableParts)
	if err != nil {
		return err
	}
	existing := make(map[string]bool)
	for _, r := range rows {
		part, owner := repository.PartFromRow(r)
		if owner == poID {
			existing[part.ID] = true
		}
	}

	var inserts []repository.Row
	keep := make(map[string]bool, len(want))
	for _, part := range want {
		if domain.IsUnsavedPartID(part.ID) || !existing[part.ID] {
			row, err := repository.PartToRow(poID, part)
			if err != nil {
				return err
			}
			inserts = append(inserts, row)
			continue
		}
		keep[part.ID] = true
		patch, err := repository.PartUpdateRow(part)
		if err != nil {
			return err
		}
		if _, err := c.store.Update(ctx, repository.TableParts, repository.ByID(part.ID), patch); err != nil {
			return err
		}
	}
	if len(inserts) > 0 {
		if _, err := c.store.Insert(ctx, repository.TableParts, inserts); err != nil {
			return err
		}
	}
	for id := range existing {
		if keep[id] {
			continue
		}
		if _, err := c.store.Delete(ctx, repository.TableParts, repository.ByID(id)); err != nil {
			return err
		}
	}
	return nil
}

// DeletePurchaseOrder removes the order's parts, then the order.
func (c *Controller) DeletePurchaseOrder(ctx context.Context, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	gen := c.gen(repository.TablePurchaseOrders)
	if _, err := c.store.Delete(ctx, repository.TableParts, repository.ByPurchaseOrder(id)); err != nil {
		c.logErr("DeletePurchaseOrder", "delete parts", id, err)
		return err
	}
	n, err := c.store.Delete(ctx, repository.TablePurchaseOrders, repository.ByID(id))
	if err != nil {
		c.logErr("DeletePurchaseOrder", "delete", id, err)
		return err
	}
	if n == 0 {
		err := notFound(repository.TablePurchaseOrders, id)
		c.logErr("DeletePurchaseOrder", "delete", id, err)
		return err
	}

	c.applyLocal(repository.TablePurchaseOrders, gen, func() {
		out := make([]domain.PurchaseOrder, 0, len(c.purchaseOrders))
		for _, po := range c.purchaseOrders {
			if po.ID != id {
				out = append(out, po)
			}
		}
		c.purchaseOrders = out
	})
	c.reconcileAfter(ctx, "DeletePurchaseOrder")
	return nil
}
