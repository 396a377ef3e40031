package changefeed

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

type ReloadFunc func(ctx context.Context) error

// Router sends each event to the reload routine registered for its table.
// Several tables may share one routine; purchase orders and parts do.
type Router struct {
	mu     sync.RWMutex
	routes map[repository.Table]ReloadFunc
	log    *logrus.Logger
}

func NewRouter(log *logrus.Logger) *Router {
	return &Router{routes: make(map[repository.Table]ReloadFunc), log: log}
}

func (r *Router) Handle(fn ReloadFunc, tables ...repository.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tables {
		r.routes[t] = fn
	}
}

// Dispatch runs the reload for e.Table. Unrouted tables are ignored.
func (r *Router) Dispatch(ctx context.Context, e Event) error {
	r.mu.RLock()
	fn, ok := r.routes[e.Table]
	r.mu.RUnlock()
	if !ok {
		r.log.WithField("table", e.Table).Debug("no reload registered")
		return nil
	}
	return fn(ctx)
}

// Handler adapts Dispatch to a Source handler. Reload failures are logged and the
// collection keeps its last state.
func (r *Router) Handler(ctx context.Context) Handler {
	return func(e Event) {
		if err := r.Dispatch(ctx, e); err != nil {
			logger.LogError(r.log, "changefeed", "Router.Handler", "reload after change", e, err)
		}
	}
}
