package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dbsmedya/piiscan/internal/logger"
	"github.com/dbsmedya/piiscan/internal/sqlutil"
	"github.com/dbsmedya/piiscan/internal/types"
)

// Oracle reads the ALL_* dictionary views.
type Oracle struct {
	db           *sqlx.DB
	queryTimeout time.Duration
	logger       *logger.Logger
}

// NewOracle creates an Oracle introspector over an open pool.
func NewOracle(db *sql.DB, queryTimeout time.Duration, log *logger.Logger) *Oracle {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Oracle{
		db:           sqlx.NewDb(db, "godror"),
		queryTimeout: queryTimeout,
		logger:       log,
	}
}

// Engine implements Introspector.
func (o *Oracle) Engine() string { return "oracle" }

// ListContainers implements Introspector. Owners on the Oracle system
// list are excluded in the query itself.
func (o *Oracle) ListContainers(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, o.queryTimeout)
	defer cancel()

	placeholders := make([]string, len(OracleSystemSchemas))
	args := make([]interface{}, len(OracleSystemSchemas))
	for i, s := range OracleSystemSchemas {
		placeholders[i] = fmt.Sprintf(":%d", i+1)
		args[i] = s
	}

	query := `
		SELECT DISTINCT OWNER
		FROM ALL_TABLES
		WHERE OWNER NOT IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY OWNER`

	var owners []string
	if err := o.db.SelectContext(ctx, &owners, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return owners, nil
}

// ListTables implements Introspector.
func (o *Oracle) ListTables(ctx context.Context, container string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, o.queryTimeout)
	defer cancel()

	const query = `
		SELECT TABLE_NAME
		FROM ALL_TABLES
		WHERE OWNER = :1
		ORDER BY TABLE_NAME`

	var tables []string
	if err := o.db.SelectContext(ctx, &tables, query, container); err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", container, err)
	}
	return tables, nil
}

// Oracle folds unquoted aliases to upper case.
type oracleColumn struct {
	Name      string        `db:"COLUMN_NAME"`
	Type      string        `db:"DATA_TYPE"`
	Nullable  string        `db:"NULLABLE"`
	Length    sql.NullInt64 `db:"DATA_LENGTH"`
	Precision sql.NullInt64 `db:"DATA_PRECISION"`
	Scale     sql.NullInt64 `db:"DATA_SCALE"`
}

// TableMetadata implements Introspector.
func (o *Oracle) TableMetadata(ctx context.Context, container, table string) (*types.TableHandle, error) {
	qualified, err := sqlutil.QualifiedName(sqlutil.Oracle, container, table)
	if err != nil {
		return nil, &TableError{Container: container, Table: table, Op: "row count", Err: err}
	}

	count, err := o.countRows(ctx, qualified)
	if err != nil {
		return nil, &TableError{Container: container, Table: table, Op: "row count", Err: err}
	}

	cols, err := o.columns(ctx, container, table)
	if err != nil {
		return nil, &TableError{Container: container, Table: table, Op: "column metadata", Err: err}
	}

	o.logger.Debugf("Read metadata for %s.%s: %d rows, %d columns", container, table, count, len(cols))
	return &types.TableHandle{
		Container: container,
		Name:      table,
		RowCount:  count,
		Columns:   cols,
	}, nil
}

func (o *Oracle) countRows(ctx context.Context, qualified string) (int64, error) {
	ctx, cancel := withTimeout(ctx, o.queryTimeout)
	defer cancel()

	var count int64
	if err := o.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+qualified); err != nil {
		return 0, err
	}
	return count, nil
}

func (o *Oracle) columns(ctx context.Context, container, table string) ([]types.ColumnMetadata, error) {
	ctx, cancel := withTimeout(ctx, o.queryTimeout)
	defer cancel()

	const query = `
		SELECT COLUMN_NAME, DATA_TYPE, NULLABLE, DATA_LENGTH, DATA_PRECISION, DATA_SCALE
		FROM ALL_TAB_COLUMNS
		WHERE OWNER = :1
		AND TABLE_NAME = :2
		ORDER BY COLUMN_ID`

	var rows []oracleColumn
	if err := o.db.SelectContext(ctx, &rows, query, container, table); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns found")
	}

	out := make([]types.ColumnMetadata, 0, len(rows))
	for _, r := range rows {
		kind := Classify(r.Type)
		col := types.ColumnMetadata{
			Name:         r.Name,
			DeclaredType: r.Type,
			Nullable:     r.Nullable == "Y",
			Precision:    nullInt(r.Precision),
			Scale:        nullInt(r.Scale),
			Kind:         kind,
		}
		// DATA_LENGTH is the storage width for every type; only text
		// lengths are meaningful downstream.
		if kind == types.KindText {
			col.Length = nullInt(r.Length)
		}
		out = append(out, col)
	}
	return out, nil
}
