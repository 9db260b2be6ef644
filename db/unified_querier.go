package db

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
)

// unifiedQuerier wraps a Querier so every method returns this package's errors.
type unifiedQuerier struct {
	q Querier
}

// ExecContext maps errors only. DDL such as CREATE DATABASE IF NOT EXISTS
// legitimately affects no rows, so zero rows is not treated as ErrNop here.
func (u unifiedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := u.q.ExecContext(ctx, query, args...)
	return result, mapError(err)
}

func (u unifiedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := u.q.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNop
	}
	return mapError(err)
}

func (u unifiedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := u.q.SelectContext(ctx, dest, query, args...); err != nil {
		return mapError(err)
	}
	// SelectContext has asserted dest is a pointer to a slice
	if reflect.Indirect(reflect.ValueOf(dest)).Len() == 0 {
		return ErrNop
	}
	return nil
}

// Wrap returns q with error mapping applied.
func Wrap(q Querier) Querier {
	if u, ok := q.(unifiedQuerier); ok {
		return u
	}
	return unifiedQuerier{q: q}
}
