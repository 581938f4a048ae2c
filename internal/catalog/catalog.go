// Package catalog reads containers, tables and column layouts from the
// backend's catalog views. It never scans table data except for the row
// count.
package catalog

import (
	"context"
	"time"

	"github.com/dbsmedya/piiscan/internal/types"
)

// DefaultQueryTimeout bounds a single catalog query when none is configured.
const DefaultQueryTimeout = 60 * time.Second

// Introspector lists containers and tables and reads table metadata.
// Containers are databases on MySQL and schemas (owners) on Oracle.
type Introspector interface {
	// Engine returns the backend name ("mysql" or "oracle").
	Engine() string
	// ListContainers returns every container visible to the connected user,
	// in catalog order. System containers are not filtered here.
	ListContainers(ctx context.Context) ([]string, error)
	// ListTables returns the base tables of a container ordered by name.
	ListTables(ctx context.Context, container string) ([]string, error)
	// TableMetadata returns the row count and column layout of a table.
	TableMetadata(ctx context.Context, container, table string) (*types.TableHandle, error)
}

// TableError wraps a catalog failure for a single table.
type TableError struct {
	Container string
	Table     string
	Op        string
	Err       error
}

func (e *TableError) Error() string {
	return e.Op + " failed for " + e.Container + "." + e.Table + ": " + e.Err.Error()
}

func (e *TableError) Unwrap() error {
	return e.Err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}
