package tracker

import (
	"context"
	"errors"

	"projecttracker/internal/domain"
	"projecttracker/internal/progress"
)

// ReconcileProgress brings stored progress in line with the roll-up. Stage one
// writes each order's part-derived progress, stage two each project's deduplicated
// mean. Only values that differ are written, so a second run over unchanged data
// issues no writes. Passes never overlap: a call made while a pass is running,
// including one from a collection listener, schedules one more pass and returns nil
// at once. The running caller returns the error of its last pass.
func (c *Controller) ReconcileProgress(ctx context.Context) error {
	c.reconcileMu.Lock()
	if c.reconciling {
		c.reconcileAgain = true
		c.reconcileMu.Unlock()
		return nil
	}
	c.reconciling = true
	c.reconcileMu.Unlock()

	for {
		err := c.reconcileOnce(ctx)

		c.reconcileMu.Lock()
		again := c.reconcileAgain && ctx.Err() == nil
		c.reconcileAgain = false
		if !again {
			c.reconciling = false
		}
		c.reconcileMu.Unlock()
		if !again {
			return err
		}
	}
}

func (c *Controller) reconcileOnce(ctx context.Context) error {
	var errs []error
	for _, po := range c.PurchaseOrders() {
		if len(po.Parts) == 0 {
			continue
		}
		want := progress.PartOfProgress(po)
		if po.Progress != nil && *po.Progress == want {
			continue
		}
		err := c.patchPurchaseOrder(ctx, po.ID, domain.PurchaseOrderPatch{Progress: &want})
		if err != nil {
			errs = append(errs, err)
		}
	}

	orders := c.PurchaseOrders()
	for _, p := range c.Projects() {
		want := progress.ProjectProgress(p, orders)
		if p.Progress == want {
			continue
		}
		err := c.updateProject(ctx, p.ID, domain.ProjectPatch{Progress: &want})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// reconcileAfter runs the pipeline after a mutation that touched orders or
// projects. Its failure does not fail the mutation.
func (c *Controller) reconcileAfter(ctx context.Context, funcName string) {
	if err := c.ReconcileProgress(ctx); err != nil {
		c.logErr(funcName, "reconcile progress", nil, err)
	}
}
