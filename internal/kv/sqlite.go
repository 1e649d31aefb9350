package kv

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteFile is the database file name created inside the data directory.
const SQLiteFile = "otakublog.db"

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps slots as rows of a single SQLite table.
type SQLiteStore struct {
	db   *sql.DB
	opts storeOptions
}

// OpenSQLiteStore opens (creating if needed) the slot database in dir and
// applies pending migrations.
func OpenSQLiteStore(dir string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: creating directory: %w", err)
	}
	return OpenSQLite(filepath.Join(dir, SQLiteFile), opts...)
}

// OpenSQLite opens the slot database at dsn and applies pending migrations.
func OpenSQLite(dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kv: opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, opts: applyOptions(opts)}, nil
}

// RunMigrations brings the slot schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{zap.L().Sugar()})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("kv: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("kv: migrating: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv: reading slot %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := checkQuota(key, value, s.opts.maxSlotBytes); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	query := `INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("kv: writing slot %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv: deleting slot %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// gooseLogger routes migration output through zap instead of stdout.
type gooseLogger struct {
	l *zap.SugaredLogger
}

func (g gooseLogger) Printf(format string, v ...any) { g.l.Debugf(format, v...) }

func (g gooseLogger) Fatalf(format string, v ...any) { g.l.Errorf(format, v...) }
