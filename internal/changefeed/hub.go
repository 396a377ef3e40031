package changefeed

import (
	"context"
	"sync"

	"projecttracker/internal/repository"
)

// Hub is an in-process broker. Publish never blocks: pending events are coalesced
// per table for each subscriber, which is enough because consumers reload whole tables.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*hubSub
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*hubSub)}
}

type hubSub struct {
	mu      sync.Mutex
	pending map[repository.Table]Event
	signal  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		s.push(e)
	}
}

// Touch publishes an insert event for every table. It matches Store.OnCommit.
func (h *Hub) Touch(tables ...repository.Table) {
	for _, t := range tables {
		h.Publish(Event{Table: t, Op: OpInsert})
	}
}

func (h *Hub) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	s := &hubSub{
		pending: make(map[repository.Table]Event),
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	h.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx, handler)

	return &onceSub{close: func() error {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		close(s.done)
		s.wg.Wait()
		return nil
	}}, nil
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (s *hubSub) push(e Event) {
	s.mu.Lock()
	s.pending[e.Table] = e
	s.mu.Unlock()
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *hubSub) run(ctx context.Context, handler Handler) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.signal:
		}

		s.mu.Lock()
		batch := s.pending
		s.pending = make(map[repository.Table]Event)
		s.mu.Unlock()

		for _, t := range repository.AllTables {
			if e, ok := batch[t]; ok {
				handler(e)
			}
		}
	}
}
