// Package lock keeps concurrent piiscan runs from sampling the same MySQL
// server at the same time.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockHeld is returned when another session holds the scan lock.
var ErrLockHeld = errors.New("scan lock is held by another session")

// MaxNameLength is MySQL's limit for GET_LOCK names.
const MaxNameLength = 64

// ScanLockName is the server-wide lock taken by piiscan scan.
const ScanLockName = "piiscan:scan"

// AdvisoryLock is a MySQL named lock. GET_LOCK locks belong to a session,
// so the lock pins one connection from the pool until it is released.
type AdvisoryLock struct {
	db   *sql.DB
	conn *sql.Conn
	name string
}

// NewAdvisoryLock creates a lock. Nothing is acquired until Acquire.
func NewAdvisoryLock(db *sql.DB, name string) (*AdvisoryLock, error) {
	if name == "" {
		return nil, fmt.Errorf("lock name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("lock name %q exceeds %d characters", name, MaxNameLength)
	}
	if strings.ContainsAny(name, "\x00") {
		return nil, fmt.Errorf("lock name contains a NUL byte")
	}
	return &AdvisoryLock{db: db, name: name}, nil
}

// Acquire takes the lock, waiting up to timeout (whole seconds, 0 for no
// wait). It returns ErrLockHeld when another session keeps it.
//
// MySQL GET_LOCK() return values:
//   - 1: Lock was obtained successfully
//   - 0: Timeout was reached without obtaining the lock
//   - NULL: An error occurred (e.g., out of memory, thread killed)
func (a *AdvisoryLock) Acquire(ctx context.Context, timeout time.Duration) error {
	if a.conn != nil {
		return nil
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve connection for lock: %w", err)
	}

	var result sql.NullInt64
	err = conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.name, int(timeout/time.Second)).Scan(&result)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}
	if !result.Valid {
		_ = conn.Close()
		return fmt.Errorf("GET_LOCK returned NULL for lock %q", a.name)
	}

	switch result.Int64 {
	case 1:
		a.conn = conn
		return nil
	case 0:
		_ = conn.Close()
		return fmt.Errorf("%w: %q", ErrLockHeld, a.name)
	default:
		_ = conn.Close()
		return fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// Release frees the lock and returns its connection to the pool. Releasing
// a lock that is not held is a no-op.
func (a *AdvisoryLock) Release(ctx context.Context) error {
	if a.conn == nil {
		return nil
	}
	conn := a.conn
	a.conn = nil
	defer func() { _ = conn.Close() }()

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.name).Scan(&result); err != nil {
		return fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid || result.Int64 != 1 {
		return fmt.Errorf("lock %q was not held by this session", a.name)
	}
	return nil
}

// IsHeld reports whether this instance holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.conn != nil
}

// Name returns the lock name.
func (a *AdvisoryLock) Name() string {
	return a.name
}

// WithLock runs fn while holding the lock, releasing it even if fn panics.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeout time.Duration, fn func() error) error {
	if err := a.Acquire(ctx, timeout); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Release(releaseCtx)
	}()
	return fn()
}
