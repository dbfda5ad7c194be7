package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLKV keeps the storage area in a single kv table.
type SQLKV struct {
	db     *sqlx.DB
	driver string
}

// OpenSQL connects to the database and creates the kv table if needed.
// driver is "sqlite" or "mysql".
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLKV, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &SQLKV{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLKV) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS kv (
    k VARCHAR(191) PRIMARY KEY,
    v TEXT NOT NULL,
    updated_at BIGINT NOT NULL
)`
	if s.driver == "mysql" {
		ddl = `CREATE TABLE IF NOT EXISTS kv (
    k VARCHAR(191) PRIMARY KEY,
    v LONGTEXT NOT NULL,
    updated_at BIGINT NOT NULL
)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// Get reads the value of key.
func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT v FROM kv WHERE k = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(v), true, nil
}

// Set upserts key.
func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	q := `INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`
	if s.driver == "mysql" {
		q = `INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)`
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), key, string(value), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv WHERE k = ?`), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLKV) Close() error {
	return s.db.Close()
}
