// Package storage provides the key-value storage area that holds the
// persisted task snapshot, with directory, SQL and in-memory backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// KV is a flat key-value storage area.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver string // "dir", "sqlite", "mysql", "memory"
	Path   string // directory for "dir", database file for "sqlite"
	DSN    string // data source name for "mysql"
}

// Open opens the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case "", "dir":
		return NewDirKV(opts.Path), nil
	case "sqlite":
		dsn := opts.DSN
		if dsn == "" {
			dsn = opts.Path
			if filepath.Ext(dsn) == "" {
				dsn = filepath.Join(dsn, "taskboard.db")
			}
		}
		return OpenSQL(ctx, "sqlite", dsn)
	case "mysql":
		if opts.DSN == "" {
			return nil, fmt.Errorf("mysql storage requires a dsn")
		}
		return OpenSQL(ctx, "mysql", opts.DSN)
	case "memory":
		return NewMemKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
