package store

import (
	"context"
	"errors"
	"fmt"
)

// Session backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a session backend.
type Options struct {
	Backend string
	// DBPath is the SQLite file. The event log always lives there unless
	// the backend is memory.
	DBPath string
	// Dir is the directory for the file backend.
	Dir   string
	Redis RedisOptions
}

// Backend bundles the session store with the event log.
type Backend struct {
	Sessions SessionStore
	Events   EventRepo
	// Log is non-nil when the SQLite event log is open.
	Log *EventLog

	closers []func() error
}

// OpenBackend opens the configured session store and the event log.
func OpenBackend(ctx context.Context, opts Options) (*Backend, error) {
	if opts.Backend == BackendMemory {
		return &Backend{Sessions: NewMemoryStore(), Events: NopEventRepo{}}, nil
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	} else if err := ensureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	b := &Backend{Log: db.EventRepo(), closers: []func() error{db.Close}}
	b.Events = b.Log

	switch opts.Backend {
	case BackendSQLite, "":
		b.Sessions = db.Sessions()
	case BackendFile:
		dir := opts.Dir
		if dir == "" {
			if dir, err = DefaultFileDir(); err != nil {
				b.Close()
				return nil, err
			}
		}
		fs, err := NewFileStore(dir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Sessions = fs
	case BackendRedis:
		rs, err := DialRedis(ctx, opts.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Sessions = rs
		b.closers = append(b.closers, rs.Close)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown session backend: %q", opts.Backend)
	}
	return b, nil
}

// Close releases every resource opened by OpenBackend.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
