/*
Package sqlstore provides a durable KVStore on top of a relational database.

Both SQLite (driver "sqlite", modernc.org/sqlite) and Postgres (driver "pgx",
github.com/jackc/pgx/v5/stdlib) are supported. All values live in a single
key-value table; batches are applied inside one SQL transaction.
*/
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/store"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	// DriverSQLite is the modernc.org/sqlite driver name.
	DriverSQLite = "sqlite"
	// DriverPostgres is the pgx stdlib driver name.
	DriverPostgres = "pgx"

	defaultTimeout = 10 * time.Second
)

// Store is a KVStore persisted in a SQL database.
type Store struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
}

var _ supi.KVStore = (*Store)(nil)
var _ supi.Batcher = (*Store)(nil)

// Open connects to the database and ensures the schema exists.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "empty sqlite path")
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, errors.Wrap(errors.ErrDatabase, err.Error())
			}
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "empty postgres dsn")
		}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if driver == DriverSQLite {
		// A single connection serializes writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	s := &Store{db: db, driver: driver, timeout: defaultTimeout}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	ctx, cancel := s.context()
	defer cancel()

	var stmts []string
	switch s.driver {
	case DriverSQLite:
		stmts = []string{
			"PRAGMA journal_mode=WAL;",
			"PRAGMA synchronous=FULL;",
			"PRAGMA busy_timeout=5000;",
			`CREATE TABLE IF NOT EXISTS kv (
				k BLOB PRIMARY KEY,
				v BLOB NOT NULL
			);`,
		}
	case DriverPostgres:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS kv (
				k BYTEA PRIMARY KEY,
				v BYTEA NOT NULL
			);`,
		}
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return wrapDBErr(err, "init schema")
		}
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrapDBErr(s.db.PingContext(ctx), "ping")
}

// CacheWrap returns a btree cache that is flushed to the database in a single
// transaction.
func (s *Store) CacheWrap() supi.KVCacheWrap {
	return store.BTreeCacheable{KVStore: s}.CacheWrap()
}

func (s *Store) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get returns the value stored under key or nil.
func (s *Store) Get(key []byte) ([]byte, error) {
	ctx, cancel := s.context()
	defer cancel()

	var value []byte
	err := s.db.QueryRowContext(ctx, s.query("SELECT v FROM kv WHERE k = ?"), key).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, wrapDBErr(err, "get")
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Has returns true if a value is stored under key.
func (s *Store) Has(key []byte) (bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	var n int
	err := s.db.QueryRowContext(ctx, s.query("SELECT COUNT(1) FROM kv WHERE k = ?"), key).Scan(&n)
	if err != nil {
		return false, wrapDBErr(err, "has")
	}
	return n > 0, nil
}

// Set writes the value directly, outside of any batch.
func (s *Store) Set(key, value []byte) error {
	ctx, cancel := s.context()
	defer cancel()
	return set(ctx, s.db, s, key, value)
}

// Delete removes the value directly, outside of any batch.
func (s *Store) Delete(key []byte) error {
	ctx, cancel := s.context()
	defer cancel()
	return del(ctx, s.db, s, key)
}

// NewBatch returns a batch that applies all collected operations in one SQL
// transaction.
func (s *Store) NewBatch() supi.Batch {
	return &batch{store: s}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func set(ctx context.Context, db execer, s *Store, key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	q := s.query("INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT (k) DO UPDATE SET v = excluded.v")
	if _, err := db.ExecContext(ctx, q, key, value); err != nil {
		return wrapDBErr(err, "set")
	}
	return nil
}

func del(ctx context.Context, db execer, s *Store, key []byte) error {
	if _, err := db.ExecContext(ctx, s.query("DELETE FROM kv WHERE k = ?"), key); err != nil {
		return wrapDBErr(err, "delete")
	}
	return nil
}

// query rewrites ? placeholders into the numbered form Postgres expects.
func (s *Store) query(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type batch struct {
	store *Store
	ops   []store.Op
}

var _ supi.Batch = (*batch)(nil)

func (b *batch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

// Write commits all operations or none of them.
func (b *batch) Write() (err error) {
	if len(b.ops) == 0 {
		return nil
	}
	ctx, cancel := b.store.context()
	defer cancel()

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBErr(err, "begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	w := &txWriter{ctx: ctx, tx: tx, store: b.store}
	for _, op := range b.ops {
		if err := op.Apply(w); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapDBErr(err, "commit")
	}
	b.ops = nil
	return nil
}

// Discard drops all collected operations.
func (b *batch) Discard() {
	b.ops = nil
}

// txWriter adapts an open SQL transaction to SetDeleter.
type txWriter struct {
	ctx   context.Context
	tx    *sql.Tx
	store *Store
}

func (w *txWriter) Set(key, value []byte) error {
	return set(w.ctx, w.tx, w.store, key, value)
}

func (w *txWriter) Delete(key []byte) error {
	return del(w.ctx, w.tx, w.store, key)
}

func wrapDBErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return errors.Wrapf(errors.ErrDatabase, "%s: postgres %s: %s", op, pgErr.Code, pgErr.Message)
	}
	return errors.Wrapf(errors.ErrDatabase, "%s: %s", op, err)
}
