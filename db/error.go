package db

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/zetteln/server/o11y"
)

var (
	ErrNop         = o11y.NewWarning("no update or results")
	ErrConstrained = errors.New("violates constraints")
	ErrException   = errors.New("exception")
	ErrCanceled    = o11y.NewWarning("statement canceled")
	ErrBadConn     = o11y.NewWarning("bad connection")
)

// MySQL server error numbers
// https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	myDuplicateEntry           = 1062
	myQueryInterrupted         = 1317
	myRowIsReferenced          = 1451
	myNoReferencedRow          = 1452
	mySignalException          = 1644
	myMaxExecutionTimeExceeded = 3024
)

// mapError wraps a few driver errors with errors defined in this package. The
// original error stays in the chain, so errors.As can still reach *mysql.MySQLError.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return fmt.Errorf("%w: %w", ErrBadConn, err)
	}

	var e *mysql.MySQLError
	if !errors.As(err, &e) {
		return err
	}
	switch e.Number {
	case myDuplicateEntry:
		return fmt.Errorf("%w: %w", ErrNop, err)
	case myRowIsReferenced, myNoReferencedRow:
		return fmt.Errorf("%w: %w", ErrConstrained, err)
	case mySignalException:
		return fmt.Errorf("%w: %w", ErrException, err)
	case myQueryInterrupted, myMaxExecutionTimeExceeded:
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}

// MySQLError returns the server error in err's chain, or nil.
func MySQLError(err error) *mysql.MySQLError {
	var e *mysql.MySQLError
	if errors.As(err, &e) {
		return e
	}
	return nil
}
