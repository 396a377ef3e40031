package changefeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

func TestRouter_PartsShareOrderReload(t *testing.T) {
	r := NewRouter(logger.Discard())
	var calls []string
	r.Handle(func(context.Context) error {
		calls = append(calls, "orders")
		return nil
	}, repository.TablePurchaseOrders, repository.TableParts)
	r.Handle(func(context.Context) error {
		calls = append(calls, "clients")
		return nil
	}, repository.TableClients)

	ctx := context.Background()
	require.NoError(t, r.Dispatch(ctx, Event{Table: repository.TableParts}))
	require.NoError(t, r.Dispatch(ctx, Event{Table: repository.TablePurchaseOrders}))
	require.NoError(t, r.Dispatch(ctx, Event{Table: repository.TableClients}))
	require.NoError(t, r.Dispatch(ctx, Event{Table: repository.TableShipments}))

	assert.Equal(t, []string{"orders", "orders", "clients"}, calls)
}

func TestRouter_HandlerSwallowsErrors(t *testing.T) {
	r := NewRouter(logger.Discard())
	called := false
	r.Handle(func(context.Context) error {
		called = true
		return errors.New("store down")
	}, repository.TableClients)

	assert.NotPanics(t, func() {
		r.Handler(context.Background())(Event{Table: repository.TableClients})
	})
	assert.True(t, called)
}

func TestDecodePayload(t *testing.T) {
	e, err := decodePayload(`{"table":"parts","op":"delete","id":"abc"}`)
	require.NoError(t, err)
	assert.Equal(t, Event{Table: repository.TableParts, Op: OpDelete, ID: "abc"}, e)

	e, err = decodePayload(`{"table":"clients","op":"update","id":"c1","row":{"id":"c1","name":"Acme","contact_person":null}}`)
	require.NoError(t, err)
	assert.Equal(t, "c1", e.ID)
	assert.Equal(t, repository.Row{"id": "c1", "name": "Acme", "contact_person": nil}, e.Row)

	_, err = decodePayload(`{"table":"widgets","op":"insert"}`)
	assert.ErrorIs(t, err, repository.ErrUnknownTable)

	_, err = decodePayload(`not json`)
	assert.Error(t, err)
}

func TestPGListener_BurstIsCoalesced(t *testing.T) {
	l := NewPGListener("", logger.Discard())
	hub := NewHub()

	block := make(chan struct{})
	var mu sync.Mutex
	var got []Event
	sub, err := hub.Subscribe(context.Background(), func(e Event) {
		mu.Lock()
		got = append(got, e)
		n := len(got)
		mu.Unlock()
		if n == 1 {
			<-block
		}
	})
	require.NoError(t, err)
	defer sub.Close()

	l.dispatch(`{"table":"shipments","op":"insert","id":"sh1"}`, hub)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	for i := 0; i < 100; i++ {
		l.dispatch(fmt.Sprintf(`{"table":"parts","op":"update","id":"p%d"}`, i), hub)
	}
	l.dispatch(`{"table":"widgets","op":"insert"}`, hub)
	close(block)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, repository.TableParts, got[1].Table)
	assert.Equal(t, "p99", got[1].ID)
}

func TestRedisBridge_IgnoresOwnEvents(t *testing.T) {
	b := NewRedisBridge(nil, "instance-a", logger.Discard())

	_, ok := b.accept(`{"table":"clients","op":"insert","origin":"instance-a"}`)
	assert.False(t, ok)

	e, ok := b.accept(`{"table":"clients","op":"insert","origin":"instance-b"}`)
	assert.True(t, ok)
	assert.Equal(t, repository.TableClients, e.Table)

	_, ok = b.accept(`garbage`)
	assert.False(t, ok)
}

type fakeSource struct {
	closed  int
	failSub bool
}

func (f *fakeSource) Subscribe(context.Context, Handler) (Subscription, error) {
	if f.failSub {
		return nil, errors.New("no feed")
	}
	return &onceSub{close: func() error {
		f.closed++
		return nil
	}}, nil
}

func TestMerge_ClosesEverySourceOnce(t *testing.T) {
	a, b := &fakeSource{}, &fakeSource{}
	sub, err := Merge(a, b).Subscribe(context.Background(), func(Event) {})
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
}

func TestMerge_FailureReleasesEarlierSubscriptions(t *testing.T) {
	a, b := &fakeSource{}, &fakeSource{failSub: true}
	_, err := Merge(a, b).Subscribe(context.Background(), func(Event) {})
	require.Error(t, err)
	assert.Equal(t, 1, a.closed)
}
