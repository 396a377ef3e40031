package tracker

import (
	"context"

	"projecttracker/internal/repository"
)

// Store is the remote store the controller mirrors. *repository.Store satisfies it.
type Store interface {
	FetchAll(ctx context.Context, t repository.Table) ([]repository.Row, error)
	Insert(ctx context.Context, t repository.Table, rows []repository.Row) ([]repository.Row, error)
	Update(ctx context.Context, t repository.Table, f repository.Filter, patch repository.Row) (int64, error)
	Delete(ctx context.Context, t repository.Table, f repository.Filter) (int64, error)
	Truncate(ctx context.Context) error
}

// childInserter is implemented by stores that can write a parent and its children
// atomically.
type childInserter interface {
	InsertWithChildren(ctx context.Context, parent repository.Table, row repository.Row, child repository.Table, fkColumn string, children []repository.Row) (repository.Row, []repository.Row, error)
}

// Listener is told which collection changed. Purchase orders and their parts are
// reported as repository.TablePurchaseOrders.
type Listener func(table repository.Table)
