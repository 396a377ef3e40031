package changefeed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecttracker/internal/database"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) tables() []repository.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.Table, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Table)
	}
	return out
}

func (r *recorder) has(t repository.Table) bool {
	for _, got := range r.tables() {
		if got == t {
			return true
		}
	}
	return false
}

func (r *recorder) first(t repository.Table) Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Table == t {
			return e
		}
	}
	return Event{}
}

func TestHub_DeliversAndCloses(t *testing.T) {
	hub := NewHub()
	rec := &recorder{}
	sub, err := hub.Subscribe(context.Background(), rec.handle)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.Publish(Event{Table: repository.TableClients, Op: OpInsert})
	assert.Eventually(t, func() bool { return rec.has(repository.TableClients) }, time.Second, 5*time.Millisecond)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 0, hub.SubscriberCount())

	hub.Publish(Event{Table: repository.TableProjects, Op: OpInsert})
	time.Sleep(20 * time.Millisecond)
	assert.False(t, rec.has(repository.TableProjects))
}

func TestHub_CoalescesPerTable(t *testing.T) {
	hub := NewHub()
	block := make(chan struct{})
	var mu sync.Mutex
	var got []Event
	first := true
	sub, err := hub.Subscribe(context.Background(), func(e Event) {
		mu.Lock()
		wait := first
		first = false
		got = append(got, e)
		mu.Unlock()
		if wait {
			<-block
		}
	})
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish(Event{Table: repository.TableShipments, Op: OpInsert})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	for i := 0; i < 50; i++ {
		hub.Publish(Event{Table: repository.TableClients, Op: OpUpdate})
	}
	hub.Publish(Event{Table: repository.TableParts, Op: OpDelete})
	close(block)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, repository.TableClients, got[1].Table)
	assert.Equal(t, repository.TableParts, got[2].Table)
}

func TestHub_StopsOnContextCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	sub, err := hub.Subscribe(ctx, rec.handle)
	require.NoError(t, err)
	cancel()
	require.NoError(t, sub.Close())
}

func TestRegisterGormHooks(t *testing.T) {
	db, err := database.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Discard())
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	hub := NewHub()
	require.NoError(t, RegisterGormHooks(db, hub))
	store := repository.NewStore(db)
	store.OnCommit(hub.Touch)

	rec := &recorder{}
	sub, err := hub.Subscribe(context.Background(), rec.handle)
	require.NoError(t, err)
	defer sub.Close()

	ctx := context.Background()
	rows, err := store.Insert(ctx, repository.TableClients, []repository.Row{{"name": "Acme"}})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return rec.has(repository.TableClients) }, time.Second, 5*time.Millisecond)
	inserted := rec.first(repository.TableClients)
	assert.Equal(t, OpInsert, inserted.Op)
	assert.Equal(t, rows[0]["id"], inserted.ID)
	assert.Equal(t, "Acme", inserted.Row["name"])

	_, err = store.Update(ctx, repository.TableSuppliers, repository.ByID("missing"), repository.Row{"name": "x"})
	require.NoError(t, err)

	clientID := rows[0]["id"].(string)
	sup, err := store.Insert(ctx, repository.TableSuppliers, []repository.Row{{"name": "Steel"}})
	require.NoError(t, err)
	prj, err := store.Insert(ctx, repository.TableProjects, []repository.Row{{"name": "Tower", "client_id": clientID}})
	require.NoError(t, err)

	_, _, err = store.InsertWithChildren(ctx,
		repository.TablePurchaseOrders,
		repository.Row{"po_number": "PO-1", "project_id": prj[0]["id"], "supplier_id": sup[0]["id"]},
		repository.TableParts, "purchase_order_id",
		[]repository.Row{{"name": "Bolt", "quantity": 2}})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return rec.has(repository.TablePurchaseOrders) && rec.has(repository.TableParts)
	}, time.Second, 5*time.Millisecond)
}
