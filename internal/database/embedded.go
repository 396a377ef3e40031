package database

import (
	"fmt"
	"net"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	embeddedDataPath = "./db_data"
	embeddedPort     = 5433
	embeddedUser     = "postgres"
	embeddedPassword = "postgres"
	embeddedDatabase = "tracker"
)

// Embedded is a postgres process owned by this service.
type Embedded struct {
	pg  *embeddedpostgres.EmbeddedPostgres
	dsn string
}

// StartEmbedded launches a local postgres for development. Stop must be called on shutdown.
func StartEmbedded(log *logrus.Logger) (*Embedded, error) {
	if isPortInUse(embeddedPort) {
		return nil, fmt.Errorf("port %d is already in use", embeddedPort)
	}

	cfg := embeddedpostgres.DefaultConfig().
		DataPath(embeddedDataPath).
		Port(uint32(embeddedPort)).
		Database(embeddedDatabase).
		Username(embeddedUser).
		Password(embeddedPassword)

	pg := embeddedpostgres.NewDatabase(cfg)
	if err := pg.Start(); err != nil {
		return nil, fmt.Errorf("failed to start embedded database: %w", err)
	}
	log.WithField("port", embeddedPort).Info("embedded PostgreSQL started")

	return &Embedded{
		pg: pg,
		dsn: fmt.Sprintf("postgres://%s:%s@127.0.0.1:%d/%s?sslmode=disable",
			embeddedUser, embeddedPassword, embeddedPort, embeddedDatabase),
	}, nil
}

func (e *Embedded) DSN() string {
	return e.dsn
}

func (e *Embedded) Stop() error {
	if e == nil || e.pg == nil {
		return nil
	}
	return e.pg.Stop()
}

func isPortInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// EmbeddedDSN as a database URL asks Open to start the embedded postgres.
const EmbeddedDSN = "embedded"

// Open connects to dsn, starting the embedded postgres first when dsn is EmbeddedDSN.
// The returned DSN is the one actually used; stop releases the embedded server.
func Open(dsn string, log *logrus.Logger) (db *gorm.DB, resolved string, stop func(), err error) {
	stop = func() {}
	if dsn == EmbeddedDSN {
		emb, err := StartEmbedded(log)
		if err != nil {
			return nil, "", stop, err
		}
		stop = func() {
			if err := emb.Stop(); err != nil {
				log.WithError(err).Error("stop embedded database")
			}
		}
		dsn = emb.DSN()
	}

	db, err = Connect(dsn, log)
	if err != nil {
		stop()
		return nil, "", func() {}, err
	}
	return db, dsn, stop, nil
}
