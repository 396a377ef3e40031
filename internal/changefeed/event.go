// Package changefeed delivers push notifications about row changes in the store.
package changefeed

import (
	"context"
	"errors"
	"sync"

	"projecttracker/internal/repository"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event says that a row of Table changed. Consumers reload the whole table, so ID
// and Row are informational and may be empty. Row holds the new record, or the old
// one for deletes, in store column names.
type Event struct {
	Table  repository.Table `json:"table"`
	Op     Op               `json:"op"`
	ID     string           `json:"id,omitempty"`
	Row    repository.Row   `json:"row,omitempty"`
	Origin string           `json:"origin,omitempty"`
}

type Handler func(Event)

// Subscription ends a Subscribe call. Close may be called any number of times.
type Subscription interface {
	Close() error
}

type Source interface {
	Subscribe(ctx context.Context, h Handler) (Subscription, error)
}

type Publisher interface {
	Publish(e Event)
}

// Merge fans events from several sources into one handler.
func Merge(sources ...Source) Source {
	return merged(sources)
}

type merged []Source

func (m merged) Subscribe(ctx context.Context, h Handler) (Subscription, error) {
	subs := make(multiSub, 0, len(m))
	for _, s := range m {
		sub, err := s.Subscribe(ctx, h)
		if err != nil {
			_ = subs.Close()
			return nil, err
		}
		subs = append(subs, sub)
	}
	return &onceSub{close: subs.Close}, nil
}

type multiSub []Subscription

func (m multiSub) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// onceSub runs close at most once.
type onceSub struct {
	once  sync.Once
	close func() error
	err   error
}

func (s *onceSub) Close() error {
	s.once.Do(func() {
		s.err = s.close()
	})
	return s.err
}
