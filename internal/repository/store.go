package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store performs CRUD against the relational store. It never retries; callers own
// any retry policy.
type Store struct {
	db       *gorm.DB
	onCommit func(tables ...Table)
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// OnCommit sets a callback fired after an explicit transaction commits, with the
// tables it wrote. Per-statement hooks cannot see those commits.
func (s *Store) OnCommit(fn func(tables ...Table)) {
	s.onCommit = fn
}

func (s *Store) FetchAll(ctx context.Context, t Table) ([]Row, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	var raw []map[string]any
	tx := s.db.WithContext(ctx).Table(string(t)).Order("created_at, id").Find(&raw)
	if tx.Error != nil {
		return nil, wrapErr("select", t, tx.Error)
	}
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, normalizeRow(r))
	}
	return rows, nil
}

// Insert stores rows and returns them as persisted, in input order. Rows without an
// id are issued one.
func (s *Store) Insert(ctx context.Context, t Table, rows []Row) ([]Row, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	values := make([]map[string]any, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for i, r := range rows {
		m := make(map[string]any, len(r)+2)
		for k, v := range r {
			m[k] = v
		}
		id, _ := m["id"].(string)
		if id == "" {
			id = uuid.NewString()
			m["id"] = id
		}
		if _, ok := m["created_at"]; !ok {
			// keep insertion order stable for rows created in the same batch
			m["created_at"] = now.Add(time.Duration(i) * time.Microsecond)
		}
		values = append(values, m)
		ids = append(ids, id)
	}

	if err := s.db.WithContext(ctx).Table(string(t)).Create(&values).Error; err != nil {
		return nil, wrapErr("insert", t, err)
	}

	var raw []map[string]any
	if err := s.db.WithContext(ctx).Table(string(t)).Where("id IN ?", ids).Find(&raw).Error; err != nil {
		return nil, wrapErr("insert", t, err)
	}
	byID := make(map[string]Row, len(raw))
	for _, r := range raw {
		row := normalizeRow(r)
		byID[asString(row["id"])] = row
	}
	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			return nil, wrapErr("insert", t, fmt.Errorf("row %s missing after insert", id))
		}
		out = append(out, row)
	}
	return out, nil
}

// Update applies patch to the rows matching f and reports how many matched.
func (s *Store) Update(ctx context.Context, t Table, f Filter, patch Row) (int64, error) {
	if err := s.checkFilter(t, f); err != nil {
		return 0, err
	}
	if len(patch) == 0 {
		return 0, nil
	}
	tx := s.db.WithContext(ctx).Table(string(t)).Where(f.Column+" = ?", f.Value).Updates(map[string]any(patch))
	if tx.Error != nil {
		return 0, wrapErr("update", t, tx.Error)
	}
	return tx.RowsAffected, nil
}

// Delete removes the rows matching f and reports how many were removed.
func (s *Store) Delete(ctx context.Context, t Table, f Filter) (int64, error) {
	if err := s.checkFilter(t, f); err != nil {
		return 0, err
	}
	tx := s.db.WithContext(ctx).Where(f.Column+" = ?", f.Value).Delete(modelFor(t))
	if tx.Error != nil {
		return 0, wrapErr("delete", t, tx.Error)
	}
	return tx.RowsAffected, nil
}

// InsertWithChildren inserts parent and then children in one transaction, setting
// fkColumn on every child to the parent's issued id.
func (s *Store) InsertWithChildren(ctx context.Context, parent Table, row Row, child Table, fkColumn string, children []Row) (Row, []Row, error) {
	var (
		stored      Row
		storedChild []Row
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := &Store{db: tx}
		rows, err := inner.Insert(ctx, parent, []Row{row})
		if err != nil {
			return err
		}
		stored = rows[0]
		if len(children) == 0 {
			return nil
		}
		withFK := make([]Row, 0, len(children))
		for _, c := range children {
			cc := make(Row, len(c)+1)
			for k, v := range c {
				cc[k] = v
			}
			cc[fkColumn] = stored["id"]
			withFK = append(withFK, cc)
		}
		storedChild, err = inner.Insert(ctx, child, withFK)
		return err
	})
	if err != nil {
		return nil, nil, wrapErr("insert", parent, err)
	}
	if s.onCommit != nil {
		s.onCommit(parent, child)
	}
	return stored, storedChild, nil
}

// Truncate deletes every row of every table, children first.
func (s *Store) Truncate(ctx context.Context) error {
	for i := len(AllTables) - 1; i >= 0; i-- {
		t := AllTables[i]
		if err := s.db.WithContext(ctx).Where("1 = 1").Delete(modelFor(t)).Error; err != nil {
			return wrapErr("truncate", t, err)
		}
	}
	return nil
}

func (s *Store) checkFilter(t Table, f Filter) error {
	if err := t.validate(); err != nil {
		return err
	}
	if !fieldMaps[t].hasColumn(f.Column) {
		return fmt.Errorf("%s: cannot filter on column %q", t, f.Column)
	}
	return nil
}
