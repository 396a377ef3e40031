package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrStore        = errors.New("store error")
	ErrUnknownTable = errors.New("unknown table")
)

type ErrorKind string

const (
	KindForeignKey ErrorKind = "foreign_key"
	KindUnique     ErrorKind = "unique"
	KindNotNull    ErrorKind = "not_null"
	KindPermission ErrorKind = "permission"
	KindNetwork    ErrorKind = "network"
	KindCanceled   ErrorKind = "canceled"
	KindUnknown    ErrorKind = "unknown"
)

// StoreError is returned for every failed store operation.
type StoreError struct {
	Op    string
	Table Table
	Kind  ErrorKind
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s (%s): %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func wrapErr(op string, t Table, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Table: t, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return KindForeignKey
		case "23505":
			return KindUnique
		case "23502":
			return KindNotNull
		case "42501":
			return KindPermission
		}
		if strings.HasPrefix(pgErr.Code, "08") {
			return KindNetwork
		}
		return KindUnknown
	}

	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return KindForeignKey
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindUnique
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "foreign key constraint"):
		return KindForeignKey
	case strings.Contains(msg, "unique constraint"):
		return KindUnique
	case strings.Contains(msg, "not null constraint"):
		return KindNotNull
	}
	return KindUnknown
}
