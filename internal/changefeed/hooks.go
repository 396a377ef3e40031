package changefeed

import (
	"fmt"
	"maps"

	"gorm.io/gorm"

	"projecttracker/internal/repository"
)

// RegisterGormHooks publishes an event after every committed create, update or
// delete on a tracked table. Single-row inserts carry the row. Statements inside an
// explicit transaction are skipped; the Store reports those through OnCommit.
func RegisterGormHooks(db *gorm.DB, p Publisher) error {
	hook := func(op Op) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if tx.Error != nil || tx.RowsAffected == 0 {
				return
			}
			if _, inTx := tx.Statement.ConnPool.(gorm.TxCommitter); inTx {
				return
			}
			table := repository.Table(tx.Statement.Table)
			if !table.Valid() {
				return
			}
			e := Event{Table: table, Op: op}
			if rows, ok := tx.Statement.Dest.(*[]map[string]any); ok && len(*rows) == 1 {
				e.Row = repository.Row(maps.Clone((*rows)[0]))
				e.ID, _ = e.Row["id"].(string)
			}
			p.Publish(e)
		}
	}

	const after = "gorm:commit_or_rollback_transaction"
	if err := db.Callback().Create().After(after).Register("changefeed:after_create", hook(OpInsert)); err != nil {
		return fmt.Errorf("register create hook: %w", err)
	}
	if err := db.Callback().Update().After(after).Register("changefeed:after_update", hook(OpUpdate)); err != nil {
		return fmt.Errorf("register update hook: %w", err)
	}
	if err := db.Callback().Delete().After(after).Register("changefeed:after_delete", hook(OpDelete)); err != nil {
		return fmt.Errorf("register delete hook: %w", err)
	}
	return nil
}
