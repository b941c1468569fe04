// Package store holds the PostgreSQL repositories used by the workers and functions.
package store

import (
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"
)

// Store groups the table accessors over one sqlx handle.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func isNoRows(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}
