package repository

import (
	"context"

	"github.com/brightwash/catalog-server/internal/database"
)

// sqlxDB is satisfied by *sqlx.DB, *sqlx.Tx and *database.Pool.
type sqlxDB = database.DBTX

// txDB is a connection that can also open transactions.
type txDB interface {
	sqlxDB
	WithTx(ctx context.Context, fn database.TxFunc) error
}

var _ txDB = (*database.Pool)(nil)
