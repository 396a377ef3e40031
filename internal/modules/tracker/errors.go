package tracker

import (
	"errors"
	"fmt"

	"projecttracker/internal/repository"
)

var (
	ErrNotFound             = errors.New("entity not found")
	ErrNotReady             = errors.New("tracker not started")
	ErrAlreadyStarted       = errors.New("tracker already started")
	ErrPartialPurchaseOrder = errors.New("purchase order stored without its parts")
	ErrShipmentPartMismatch = errors.New("shipment part does not belong to its purchase orders")
)

// NotFoundError reports a mutation whose target row does not exist in the store.
type NotFoundError struct {
	Table repository.Table
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Table, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(t repository.Table, id string) error {
	return &NotFoundError{Table: t, ID: id}
}
