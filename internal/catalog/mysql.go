package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dbsmedya/piiscan/internal/logger"
	"github.com/dbsmedya/piiscan/internal/sqlutil"
	"github.com/dbsmedya/piiscan/internal/types"
)

// MySQL reads the MySQL information_schema.
type MySQL struct {
	db           *sqlx.DB
	queryTimeout time.Duration
	logger       *logger.Logger
}

// NewMySQL creates a MySQL introspector over an open pool.
func NewMySQL(db *sql.DB, queryTimeout time.Duration, log *logger.Logger) *MySQL {
	if log == nil {
		log = logger.NewDefault()
	}
	return &MySQL{
		db:           sqlx.NewDb(db, "mysql"),
		queryTimeout: queryTimeout,
		logger:       log,
	}
}

// Engine implements Introspector.
func (m *MySQL) Engine() string { return "mysql" }

// ListContainers implements Introspector using SHOW DATABASES.
func (m *MySQL) ListContainers(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	var names []string
	if err := m.db.SelectContext(ctx, &names, "SHOW DATABASES"); err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return names, nil
}

// ListTables implements Introspector.
func (m *MySQL) ListTables(ctx context.Context, container string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	const query = `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	var tables []string
	if err := m.db.SelectContext(ctx, &tables, query, container); err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", container, err)
	}
	return tables, nil
}

type mysqlColumn struct {
	Name      string        `db:"column_name"`
	Type      string        `db:"column_type"`
	Nullable  string        `db:"is_nullable"`
	Length    sql.NullInt64 `db:"char_length"`
	Precision sql.NullInt64 `db:"num_precision"`
	Scale     sql.NullInt64 `db:"num_scale"`
}

// TableMetadata implements Introspector.
func (m *MySQL) TableMetadata(ctx context.Context, container, table string) (*types.TableHandle, error) {
	qualified, err := sqlutil.QualifiedName(sqlutil.MySQL, container, table)
	if err != nil {
		return nil, &TableError{Container: container, Table: table, Op: "row count", Err: err}
	}

	count, err := m.countRows(ctx, qualified)
	if err != nil {
		return nil, &TableError{Container: container, Table: table, Op: "row count", Err: err}
	}

	cols, err := m.columns(ctx, container, table)
	if err != nil {
		return nil, &TableError{Container: container, Table: table, Op: "column metadata", Err: err}
	}

	m.logger.Debugf("Read metadata for %s.%s: %d rows, %d columns", container, table, count, len(cols))
	return &types.TableHandle{
		Container: container,
		Name:      table,
		RowCount:  count,
		Columns:   cols,
	}, nil
}

func (m *MySQL) countRows(ctx context.Context, qualified string) (int64, error) {
	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	var count int64
	if err := m.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+qualified); err != nil {
		return 0, err
	}
	return count, nil
}

func (m *MySQL) columns(ctx context.Context, container, table string) ([]types.ColumnMetadata, error) {
	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	const query = `
		SELECT COLUMN_NAME AS column_name,
			COLUMN_TYPE AS column_type,
			IS_NULLABLE AS is_nullable,
			CHARACTER_MAXIMUM_LENGTH AS char_length,
			NUMERIC_PRECISION AS num_precision,
			NUMERIC_SCALE AS num_scale
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	var rows []mysqlColumn
	if err := m.db.SelectContext(ctx, &rows, query, container, table); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns found")
	}

	out := make([]types.ColumnMetadata, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.ColumnMetadata{
			Name:         r.Name,
			DeclaredType: r.Type,
			Nullable:     r.Nullable == "YES",
			Length:       nullInt(r.Length),
			Precision:    nullInt(r.Precision),
			Scale:        nullInt(r.Scale),
			Kind:         Classify(r.Type),
		})
	}
	return out, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return types.Int64Ptr(v.Int64)
}
