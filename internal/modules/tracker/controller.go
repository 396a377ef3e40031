package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"projecttracker/internal/changefeed"
	"projecttracker/internal/domain"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
	"projecttracker/internal/seed"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateSeeded  State = "seeded"
)

type Status struct {
	State     State  `json:"state"`
	Loading   bool   `json:"loading"`
	LastError string `json:"lastError,omitempty"`
}

// Snapshot is a consistent copy of every collection.
type Snapshot struct {
	Clients        []domain.Client        `json:"clients"`
	Suppliers      []domain.Supplier      `json:"suppliers"`
	Projects       []domain.Project       `json:"projects"`
	PurchaseOrders []domain.PurchaseOrder `json:"purchaseOrders"`
	ExternalLinks  []domain.ExternalLink  `json:"externalLinks"`
	Shipments      []domain.Shipment      `json:"shipments"`
	Status         Status                 `json:"status"`
}

// Controller owns the in-memory copy of every collection and keeps it in step
// with the store. Collections are only written after a store round trip succeeds.
type Controller struct {
	store Store
	feed  changefeed.Source
	log   *logrus.Logger
	seed  func() seed.Data

	mu             sync.RWMutex
	clients        []domain.Client
	suppliers      []domain.Supplier
	projects       []domain.Project
	purchaseOrders []domain.PurchaseOrder
	externalLinks  []domain.ExternalLink
	shipments      []domain.Shipment
	// generation counts wholesale reloads per collection
	generation map[repository.Table]uint64
	state      State
	loading    int
	lastErr    error

	listenersMu  sync.Mutex
	listeners    map[repository.Table]map[uint64]Listener
	nextListener uint64

	reconcileMu    sync.Mutex
	reconciling    bool
	reconcileAgain bool
	router         *changefeed.Router

	runCtx    context.Context
	cancelRun context.CancelFunc
	sub       changefeed.Subscription
	closeOnce sync.Once
	seedWG    sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithoutSeedFallback makes Start fail when the initial load fails instead of
// installing the built-in dataset.
func WithoutSeedFallback() Option {
	return func(c *Controller) { c.seed = nil }
}

// NewController builds a controller over store. feed may be nil, in which case
// the collections change only through Reload and the mutation methods.
func NewController(store Store, feed changefeed.Source, log *logrus.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		feed:       feed,
		log:        log,
		seed:       seed.Dataset,
		generation: make(map[repository.Table]uint64),
		state:      StateIdle,
		listeners:  make(map[repository.Table]map[uint64]Listener),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.router = changefeed.NewRouter(log)
	c.router.Handle(c.reloadClients, repository.TableClients)
	c.router.Handle(c.reloadSuppliers, repository.TableSuppliers)
	c.router.Handle(c.reloadExternalLinks, repository.TableExternalLinks)
	c.router.Handle(c.reloadShipments, repository.TableShipments)
	c.router.Handle(c.withReconcile(c.reloadProjects), repository.TableProjects)
	c.router.Handle(c.withReconcile(c.reloadPurchaseOrders), repository.TablePurchaseOrders, repository.TableParts)
	return c
}

// Start performs the initial load and subscribes to the change feed. If the load
// fails the built-in dataset is installed and pushed to the store in the background.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateLoading
	c.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.runCtx = runCtx
	c.cancelRun = cancel

	err := c.loadAll(ctx)
	switch {
	case err == nil:
		c.setState(StateReady, nil)
		if err := c.ReconcileProgress(ctx); err != nil {
			logger.LogError(c.log, "tracker", "Start", "reconcile progress", nil, err)
		}
	case c.seed == nil:
		logger.LogError(c.log, "tracker", "Start", "initial load failed", nil, err)
		cancel()
		c.setState(StateIdle, err)
		return fmt.Errorf("initial load: %w", err)
	default:
		logger.LogError(c.log, "tracker", "Start", "initial load failed, installing seed data", nil, err)
		data := c.seed()
		c.install(data, StateSeeded, err)

		c.seedWG.Add(1)
		go func() {
			defer c.seedWG.Done()
			if err := seed.Push(runCtx, c.store, data); err != nil {
				logger.LogError(c.log, "tracker", "Start", "push seed data", nil, err)
				return
			}
			c.log.Info("seed data pushed to store")
		}()
	}

	if c.feed == nil {
		return nil
	}
	sub, err := c.feed.Subscribe(runCtx, c.router.Handler(runCtx))
	if err != nil {
		logger.LogError(c.log, "tracker", "Start", "subscribe to change feed", nil, err)
		return nil
	}
	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()
	return nil
}

// Close releases the change-feed subscription. Only the first call does anything.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		sub := c.sub
		c.sub = nil
		c.mu.Unlock()

		if sub != nil {
			err = sub.Close()
		}
		if c.cancelRun != nil {
			c.cancelRun()
		}
		c.seedWG.Wait()
	})
	return err
}

// Reload re-reads every collection from the store. It returns ErrNotReady until
// Start has finished.
func (c *Controller) Reload(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.loadAll(ctx); err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	c.setState(StateReady, nil)
	return c.ReconcileProgress(ctx)
}

// ReloadTable re-reads the collection backed by t. Parts reload purchase orders.
func (c *Controller) ReloadTable(ctx context.Context, t repository.Table) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", repository.ErrUnknownTable, string(t))
	}
	return c.router.Dispatch(ctx, changefeed.Event{Table: t})
}

func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Status{State: c.state, Loading: c.loading > 0}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// ClearAll deletes every row in the store and empties the local collections.
func (c *Controller) ClearAll(ctx context.Context) error {
	if err := c.store.Truncate(ctx); err != nil {
		logger.LogError(c.log, "tracker", "ClearAll", "truncate store", nil, err)
		return err
	}
	c.mu.Lock()
	c.clients = nil
	c.suppliers = nil
	c.projects = nil
	c.purchaseOrders = nil
	c.externalLinks = nil
	c.shipments = nil
	for _, t := range repository.AllTables {
		c.generation[t]++
	}
	c.mu.Unlock()
	c.notifyAll()
	return nil
}

// OnCollectionChanged registers l for changes to table. The returned func removes it.
func (c *Controller) OnCollectionChanged(table repository.Table, l Listener) func() {
	if table == repository.TableParts {
		table = repository.TablePurchaseOrders
	}
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	if c.listeners[table] == nil {
		c.listeners[table] = make(map[uint64]Listener)
	}
	c.listeners[table][id] = l
	c.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners[table], id)
			c.listenersMu.Unlock()
		})
	}
}

func (c *Controller) notify(table repository.Table) {
	c.listenersMu.Lock()
	ls := make([]Listener, 0, len(c.listeners[table]))
	for _, l := range c.listeners[table] {
		ls = append(ls, l)
	}
	c.listenersMu.Unlock()
	for _, l := range ls {
		l(table)
	}
}

func (c *Controller) notifyAll() {
	for _, t := range collections {
		c.notify(t)
	}
}

// collections are the tables that back a local collection.
var collections = []repository.Table{
	repository.TableClients,
	repository.TableSuppliers,
	repository.TableProjects,
	repository.TablePurchaseOrders,
	repository.TableExternalLinks,
	repository.TableShipments,
}

func (c *Controller) Clients() []domain.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Client(nil), c.clients...)
}

func (c *Controller) Suppliers() []domain.Supplier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.suppliers, domain.Supplier.Clone)
}

func (c *Controller) Projects() []domain.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Project(nil), c.projects...)
}

func (c *Controller) PurchaseOrders() []domain.PurchaseOrder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.purchaseOrders, domain.PurchaseOrder.Clone)
}

func (c *Controller) ExternalLinks() []domain.ExternalLink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ExternalLink(nil), c.externalLinks...)
}

func (c *Controller) Shipments() []domain.Shipment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.shipments, domain.Shipment.Clone)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{
		Clients:        append([]domain.Client{}, c.clients...),
		Suppliers:      cloneAll(c.suppliers, domain.Supplier.Clone),
		Projects:       append([]domain.Project{}, c.projects...),
		PurchaseOrders: cloneAll(c.purchaseOrders, domain.PurchaseOrder.Clone),
		ExternalLinks:  append([]domain.ExternalLink{}, c.externalLinks...),
		Shipments:      cloneAll(c.shipments, domain.Shipment.Clone),
		Status:         Status{State: c.state, Loading: c.loading > 0},
	}
	if c.lastErr != nil {
		s.Status.LastError = c.lastErr.Error()
	}
	return s
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, clone(v))
	}
	return out
}

func (c *Controller) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Controller) beginLoad() func() {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
	}
}

func (c *Controller) ready() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == StateIdle || c.state == StateLoading {
		return ErrNotReady
	}
	return nil
}

// install replaces every collection with d.
func (c *Controller) install(d seed.Data, s State, err error) {
	c.mu.Lock()
	c.clients = d.Clients
	c.suppliers = d.Suppliers
	c.projects = d.Projects
	c.purchaseOrders = d.PurchaseOrders
	c.externalLinks = d.ExternalLinks
	c.shipments = d.Shipments
	for _, t := range repository.AllTables {
		c.generation[t]++
	}
	c.state = s
	c.lastErr = err
	c.mu.Unlock()
	c.notifyAll()
}

// loadAll fetches every table before touching local state, so a failure leaves
// the collections as they were.
func (c *Controller) loadAll(ctx context.Context) error {
	done := c.beginLoad()
	defer done()

	raw := make(map[repository.Table][]repository.Row, len(repository.AllTables))
	for _, t := range repository.AllTables {
		rows, err := c.store.FetchAll(ctx, t)
		if err != nil {
			return err
		}
		raw[t] = rows
	}

	d := seed.Data{
		Clients:        decodeAll(raw[repository.TableClients], repository.ClientFromRow),
		Suppliers:      decodeAll(raw[repository.TableSuppliers], repository.SupplierFromRow),
		Projects:       decodeAll(raw[repository.TableProjects], repository.ProjectFromRow),
		PurchaseOrders: repository.AssemblePurchaseOrders(raw[repository.TablePurchaseOrders], raw[repository.TableParts]),
		ExternalLinks:  decodeAll(raw[repository.TableExternalLinks], repository.ExternalLinkFromRow),
		Shipments:      decodeAll(raw[repository.TableShipments], repository.ShipmentFromRow),
	}

	c.mu.RLock()
	s := c.state
	c.mu.RUnlock()
	c.install(d, s, nil)
	return nil
}

func decodeAll[T any](rows []repository.Row, decode func(repository.Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, decode(r))
	}
	return out
}

// reloadInto fetches t and hands the decoded rows to assign under the write lock.
func reloadInto[T any](ctx context.Context, c *Controller, t repository.Table, decode func(repository.Row) T, assign func([]T)) error {
	done := c.beginLoad()
	defer done()

	rows, err := c.store.FetchAll(ctx, t)
	if err != nil {
		return err
	}
	list := decodeAll(rows, decode)

	c.mu.Lock()
	assign(list)
	c.generation[t]++
	c.mu.Unlock()
	c.notify(t)
	return nil
}

func (c *Controller) reloadClients(ctx context.Context) error {
	return reloadInto(ctx, c, repository.TableClients, repository.ClientFromRow, func(l []domain.Client) { c.clients = l })
}

func (c *Controller) reloadSuppliers(ctx context.Context) error {
	return reloadInto(ctx, c, repository.TableSuppliers, repository.SupplierFromRow, func(l []domain.Supplier) { c.suppliers = l })
}

func (c *Controller) reloadProjects(ctx context.Context) error {
	return reloadInto(ctx, c, repository.TableProjects, repository.ProjectFromRow, func(l []domain.Project) { c.projects = l })
}

func (c *Controller) reloadExternalLinks(ctx context.Context) error {
	return reloadInto(ctx, c, repository.TableExternalLinks, repository.ExternalLinkFromRow, func(l []domain.ExternalLink) { c.externalLinks = l })
}

func (c *Controller) reloadShipments(ctx context.Context) error {
	return reloadInto(ctx, c, repository.TableShipments, repository.ShipmentFromRow, func(l []domain.Shipment) { c.shipments = l })
}

// reloadPurchaseOrders reads orders and parts together and replaces the collection.
func (c *Controller) reloadPurchaseOrders(ctx context.Context) error {
	done := c.beginLoad()
	defer done()

	poRows, err := c.store.FetchAll(ctx, repository.TablePurchaseOrders)
	if err != nil {
		return err
	}
	partRows, err := c.store.FetchAll(ctx, repository.TableParts)
	if err != nil {
		return err
	}
	list := repository.AssemblePurchaseOrders(poRows, partRows)

	c.mu.Lock()
	c.purchaseOrders = list
	c.generation[repository.TablePurchaseOrders]++
	c.mu.Unlock()
	c.notify(repository.TablePurchaseOrders)
	return nil
}

// withReconcile runs the progress pipeline after a successful reload. Pipeline
// failures are logged; the reload itself already succeeded.
func (c *Controller) withReconcile(reload changefeed.ReloadFunc) changefeed.ReloadFunc {
	return func(ctx context.Context) error {
		if err := reload(ctx); err != nil {
			return err
		}
		if err := c.ReconcileProgress(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.LogError(c.log, "tracker", "ReconcileProgress", "after reload", nil, err)
		}
		return nil
	}
}

func (c *Controller) gen(t repository.Table) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation[t]
}

// applyLocal runs fn under the write lock unless t was reloaded since gen, in which
// case the reload already reflects the store and fn is dropped.
func (c *Controller) applyLocal(t repository.Table, gen uint64, fn func()) bool {
	c.mu.Lock()
	applied := c.generation[t] == gen
	if applied {
		fn()
	}
	c.mu.Unlock()
	if applied {
		c.notify(t)
	}
	return applied
}
