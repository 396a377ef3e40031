package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

// NotifyChannel is the postgres channel the row triggers notify on.
const NotifyChannel = "tracker_changes"

// PGListener receives trigger notifications over a dedicated pgx connection and
// hands them to subscribers through a Hub, so a burst of notifications on one table
// reaches the handler once per pending batch. A broken connection ends the
// subscription; it is not re-established here.
type PGListener struct {
	dsn string
	log *logrus.Logger
}

func NewPGListener(dsn string, log *logrus.Logger) *PGListener {
	return &PGListener{dsn: dsn, log: log}
}

func (l *PGListener) Subscribe(ctx context.Context, h Handler) (Subscription, error) {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("changefeed connect: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("changefeed listen: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	hub := NewHub()
	hubSub, err := hub.Subscribe(ctx, h)
	if err != nil {
		cancel()
		_ = conn.Close(context.Background())
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.loop(ctx, conn, hub)
	}()

	return &onceSub{close: func() error {
		cancel()
		wg.Wait()
		_ = hubSub.Close()
		return conn.Close(context.Background())
	}}, nil
}

func (l *PGListener) loop(ctx context.Context, conn *pgx.Conn, p Publisher) {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				logger.LogError(l.log, "changefeed", "PGListener.loop", "wait for notification", nil, err)
			}
			return
		}
		l.dispatch(n.Payload, p)
	}
}

func (l *PGListener) dispatch(payload string, p Publisher) {
	e, err := decodePayload(payload)
	if err != nil {
		logger.LogError(l.log, "changefeed", "PGListener.dispatch", "decode payload", payload, err)
		return
	}
	p.Publish(e)
}

func decodePayload(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, err
	}
	if !e.Table.Valid() {
		return Event{}, fmt.Errorf("%w: %q", repository.ErrUnknownTable, string(e.Table))
	}
	return e, nil
}

const notifyFunction = `
CREATE OR REPLACE FUNCTION tracker_notify() RETURNS trigger AS $$
DECLARE
	rec record;
BEGIN
	IF TG_OP = 'DELETE' THEN
		rec := OLD;
	ELSE
		rec := NEW;
	END IF;
	PERFORM pg_notify('` + NotifyChannel + `', json_build_object(
		'table', TG_TABLE_NAME,
		'op', lower(TG_OP),
		'id', rec.id,
		'row', row_to_json(rec)
	)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`

// InstallTriggers creates the notify function and one row trigger per table.
// Postgres only; safe to run on every start.
func InstallTriggers(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.Exec(notifyFunction).Error; err != nil {
		return fmt.Errorf("create notify function: %w", err)
	}
	for _, t := range repository.AllTables {
		name := "tracker_notify_" + string(t)
		if err := tx.Exec(fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s", name, t)).Error; err != nil {
			return fmt.Errorf("drop trigger on %s: %w", t, err)
		}
		stmt := fmt.Sprintf(
			"CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s FOR EACH ROW EXECUTE FUNCTION tracker_notify()",
			name, t)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create trigger on %s: %w", t, err)
		}
	}
	return nil
}
