package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"projecttracker/internal/changefeed"
	"projecttracker/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// fakeStore keeps rows in memory and records every write.
type fakeStore struct {
	mu     sync.Mutex
	tables map[repository.Table][]repository.Row
	seq    int
	ops    []string
	fail   map[string]error
	// afterUpdate runs once the update is applied, before Update returns
	afterUpdate func(t repository.Table, f repository.Filter, patch repository.Row)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables: make(map[repository.Table][]repository.Row),
		fail:   make(map[string]error),
	}
}

func (s *fakeStore) failOn(op string, t repository.Table, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op+":"+string(t)] = err
}

func (s *fakeStore) failure(op string, t repository.Table) error {
	if err := s.fail[op+":*"]; err != nil {
		return err
	}
	return s.fail[op+":"+string(t)]
}

func (s *fakeStore) put(t repository.Table, rows ...repository.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[t] = append(s.tables[t], copyRow(r))
	}
}

func (s *fakeStore) rows(t repository.Table) []repository.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.Row, 0, len(s.tables[t]))
	for _, r := range s.tables[t] {
		out = append(out, copyRow(r))
	}
	return out
}

func (s *fakeStore) opLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

func (s *fakeStore) countOps(prefix string) int {
	n := 0
	for _, op := range s.opLog() {
		if len(op) >= len(prefix) && op[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (s *fakeStore) FetchAll(_ context.Context, t repository.Table) ([]repository.Row, error) {
	s.mu.Lock()
	err := s.failure("select", t)
	s.mu.Unlock()
	if err != nil {
		return nil, &repository.StoreError{Op: "select", Table: t, Kind: repository.KindNetwork, Err: err}
	}
	return s.rows(t), nil
}

func (s *fakeStore) Insert(_ context.Context, t repository.Table, rows []repository.Row) ([]repository.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("insert", t); err != nil {
		return nil, &repository.StoreError{Op: "insert", Table: t, Kind: repository.KindUnknown, Err: err}
	}
	out := make([]repository.Row, 0, len(rows))
	for _, r := range rows {
		row := copyRow(r)
		if id, _ := row["id"].(string); id == "" {
			s.seq++
			row["id"] = fmt.Sprintf("%s-%d", t, s.seq)
		}
		s.tables[t] = append(s.tables[t], row)
		s.ops = append(s.ops, fmt.Sprintf("insert:%s:%s", t, row["id"]))
		out = append(out, copyRow(row))
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, t repository.Table, f repository.Filter, patch repository.Row) (int64, error) {
	s.mu.Lock()
	if err := s.failure("update", t); err != nil {
		s.mu.Unlock()
		return 0, &repository.StoreError{Op: "update", Table: t, Kind: repository.KindUnknown, Err: err}
	}
	var n int64
	for _, r := range s.tables[t] {
		if r[f.Column] == f.Value {
			for k, v := range patch {
				r[k] = v
			}
			n++
		}
	}
	s.ops = append(s.ops, fmt.Sprintf("update:%s:%v", t, f.Value))
	hook := s.afterUpdate
	s.mu.Unlock()

	if hook != nil {
		hook(t, f, patch)
	}
	return n, nil
}

func (s *fakeStore) Delete(_ context.Context, t repository.Table, f repository.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("delete", t); err != nil {
		return 0, &repository.StoreError{Op: "delete", Table: t, Kind: repository.KindForeignKey, Err: err}
	}
	var n int64
	kept := s.tables[t][:0:0]
	for _, r := range s.tables[t] {
		if r[f.Column] == f.Value {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.tables[t] = kept
	s.ops = append(s.ops, fmt.Sprintf("delete:%s:%v", t, f.Value))
	return n, nil
}

func (s *fakeStore) Truncate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("truncate", "*"); err != nil {
		return err
	}
	s.tables = make(map[repository.Table][]repository.Row)
	s.ops = append(s.ops, "truncate")
	return nil
}

func copyRow(r repository.Row) repository.Row {
	out := make(repository.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// fakeFeed hands the controller's handler to the test.
type fakeFeed struct {
	mu      sync.Mutex
	handler changefeed.Handler
	closes  int
	err     error
}

func (f *fakeFeed) Subscribe(_ context.Context, h changefeed.Handler) (changefeed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.handler = h
	return fakeSub{f}, nil
}

func (f *fakeFeed) emit(e changefeed.Event) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(e)
}

func (f *fakeFeed) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

type fakeSub struct{ f *fakeFeed }

func (s fakeSub) Close() error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.closes++
	return nil
}
