package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/brightwash/catalog-server/internal/config"
)

// DBTX is the query surface shared by the pool and a transaction, so
// repositories run unchanged inside WithTx.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

var _ DBTX = (*sqlx.DB)(nil)
var _ DBTX = (*sqlx.Tx)(nil)
var _ DBTX = (*Pool)(nil)

// Pool is the process-wide connection pool. The underlying connection is
// opened on first use and reused until Close.
type Pool struct {
	url   string
	open  func(url string) (*sqlx.DB, error)
	once  sync.Once
	db    *sqlx.DB
	err   error
	mu    sync.Mutex
	close bool
}

func NewPool(databaseURL string) *Pool {
	return &Pool{url: databaseURL, open: connect}
}

func connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(config.DBConnMaxLifetime)

	return db, nil
}

// Acquire returns the shared connection, opening it on the first call.
// An open failure is sticky for the lifetime of the pool.
func (p *Pool) Acquire() (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.close {
		return nil, sql.ErrConnDone
	}

	p.once.Do(func() {
		p.db, p.err = p.open(p.url)
	})
	if p.err != nil {
		return nil, fmt.Errorf("open database: %w", p.err)
	}
	return p.db, nil
}

func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.Acquire()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (p *Pool) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	db, err := p.Acquire()
	if err != nil {
		return err
	}
	return db.GetContext(ctx, dest, query, args...)
}

func (p *Pool) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	db, err := p.Acquire()
	if err != nil {
		return err
	}
	return db.SelectContext(ctx, dest, query, args...)
}

func (p *Pool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	db, err := p.Acquire()
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, query, args...)
}

// Close releases the pool. It is safe to call on a pool that was never used.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.close {
		return nil
	}
	p.close = true
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// TxFunc is a function that runs within a transaction.
type TxFunc func(tx *sqlx.Tx) error

// WithTx executes fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func (p *Pool) WithTx(ctx context.Context, fn TxFunc) error {
	db, err := p.Acquire()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
