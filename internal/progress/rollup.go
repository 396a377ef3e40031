// Package progress derives purchase-order and project completion from their children.
package progress

import (
	"math"

	"projecttracker/internal/domain"
)

// PartOfProgress is the mean part progress of po, or its stored progress when it has
// no parts. Missing values count as zero.
func PartOfProgress(po domain.PurchaseOrder) int {
	if len(po.Parts) == 0 {
		return po.ProgressOrZero()
	}
	sum := 0
	for _, p := range po.Parts {
		sum += p.ProgressOrZero()
	}
	return roundDiv(sum, len(po.Parts))
}

// ProjectProgress averages the stored progress of the best row in every poNumber
// group belonging to project. Parts only reach it once reconcile has written
// PartOfProgress back to the order.
func ProjectProgress(project domain.Project, all []domain.PurchaseOrder) int {
	var own []domain.PurchaseOrder
	for _, po := range all {
		if po.ProjectID == project.ID {
			own = append(own, po)
		}
	}
	unique := DedupeByPONumber(own)
	if len(unique) == 0 {
		return 0
	}
	sum := 0
	for _, po := range unique {
		sum += po.ProgressOrZero()
	}
	return roundDiv(sum, len(unique))
}

// DedupeByPONumber keeps one row per poNumber: the one with the highest stored
// progress, the earliest on ties. Groups come out in first-seen order.
func DedupeByPONumber(pos []domain.PurchaseOrder) []domain.PurchaseOrder {
	index := make(map[string]int, len(pos))
	best := make([]int, 0, len(pos))
	out := make([]domain.PurchaseOrder, 0, len(pos))
	for _, po := range pos {
		v := po.ProgressOrZero()
		i, seen := index[po.PONumber]
		if !seen {
			index[po.PONumber] = len(out)
			out = append(out, po)
			best = append(best, v)
			continue
		}
		if v > best[i] {
			out[i] = po
			best[i] = v
		}
	}
	return out
}

// DistinctPONumbers keeps the first row seen for every poNumber. It is for counting
// and listing; the roll-up uses DedupeByPONumber.
func DistinctPONumbers(pos []domain.PurchaseOrder) []domain.PurchaseOrder {
	seen := make(map[string]struct{}, len(pos))
	out := make([]domain.PurchaseOrder, 0, len(pos))
	for _, po := range pos {
		if _, ok := seen[po.PONumber]; ok {
			continue
		}
		seen[po.PONumber] = struct{}{}
		out = append(out, po)
	}
	return out
}

func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
