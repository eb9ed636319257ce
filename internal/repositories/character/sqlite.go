package character

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/pkg/clock"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// OpenSQLite opens the SQLite file at path and creates the kv table
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.InvalidArgument("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite db")
	}
	// One connection serializes every transaction on the collection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to ping sqlite db")
	}
	if _, err := db.Exec(createKVTable); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create kv table")
	}
	return db, nil
}

// SQLiteConfig contains configuration for the SQLite character repository
type SQLiteConfig struct {
	DB    *sql.DB
	Key   string
	Clock clock.Clock
}

// Validate validates the SQLiteConfig
func (cfg *SQLiteConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DB == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	return nil
}

// NewSQLite creates a character repository stored in a SQLite kv table
func NewSQLite(cfg *SQLiteConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return New(&Config{
		Backend: &sqliteBackend{db: cfg.DB, key: key},
		Clock:   c,
	})
}

type sqliteBackend struct {
	db  *sql.DB
	key string
}

func (b *sqliteBackend) Load(ctx context.Context) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, b.key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", b.key)
	}
	return value, nil
}

// Transact stamps updated_at with the repository's write time
func (b *sqliteBackend) Transact(ctx context.Context, at time.Time, fn func(current []byte) ([]byte, error)) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var current []byte
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, b.key).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrapf(err, "failed to read %s", b.key)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if next == nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, b.key)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			b.key, next, at.UnixMilli())
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", b.key)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
