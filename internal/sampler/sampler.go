// Package sampler fetches a bounded random subset of a table's rows and
// materializes it into plain Go values.
package sampler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dbsmedya/piiscan/internal/logger"
	"github.com/dbsmedya/piiscan/internal/types"
)

// DefaultQueryTimeout bounds a sample query when none is configured.
const DefaultQueryTimeout = 60 * time.Second

// Sampler loads a sample for one table. Failures never surface as Go
// errors; they are reported through SamplingInfo with method ERROR and
// an empty sample.
type Sampler interface {
	LoadSample(ctx context.Context, table *types.TableHandle) (*types.Sample, types.SamplingInfo)
}

// Plan decides how a table is sampled. Empty tables are not queried,
// tables that fit in the sample are read whole, and larger tables use
// the backend's partial method.
func Plan(rowCount int64, sampleSize int, partial types.SamplingMethod) types.SamplingMethod {
	switch {
	case rowCount <= 0:
		return types.SampleEmpty
	case rowCount <= int64(sampleSize):
		return types.SampleFull
	default:
		return partial
	}
}

// Options configures a sampler.
type Options struct {
	SampleSize   int
	QueryTimeout time.Duration
	Logger       *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.SampleSize <= 0 {
		o.SampleSize = 100
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = DefaultQueryTimeout
	}
	if o.Logger == nil {
		o.Logger = logger.NewDefault()
	}
	return o
}

// queryBuilder renders the SQL for a planned method.
type queryBuilder func(table *types.TableHandle, method types.SamplingMethod) (query string, percent float64, err error)

// base holds the policy shared by every backend; only the SQL differs.
type base struct {
	db      *sql.DB
	opts    Options
	partial types.SamplingMethod
	build   queryBuilder
}

func (b *base) LoadSample(ctx context.Context, table *types.TableHandle) (*types.Sample, types.SamplingInfo) {
	info := types.SamplingInfo{TotalRows: table.RowCount}
	method := Plan(table.RowCount, b.opts.SampleSize, b.partial)

	if method == types.SampleEmpty {
		info.Method = types.SampleEmpty
		return &types.Sample{}, info
	}

	query, percent, err := b.build(table, method)
	if err != nil {
		return failed(info, err)
	}

	sample, err := b.fetch(ctx, query)
	if err != nil {
		b.opts.Logger.Warnf("Sampling %s failed: %v", table.QualifiedName(), err)
		return failed(info, err)
	}

	info.SampledRows = sample.Len()
	if sample.Len() == 0 {
		// rows vanished between the count and the sample
		info.Method = types.SampleEmpty
		return sample, info
	}

	info.Method = method
	info.SamplePercent = percent
	info.SamplingRatio = float64(info.SampledRows) / float64(info.TotalRows)
	if info.SamplingRatio > 1 {
		info.SamplingRatio = 1
	}

	b.opts.Logger.Debugf("Sampled %d of %d rows from %s (%s)",
		info.SampledRows, info.TotalRows, table.QualifiedName(), info.Method)
	return sample, info
}

// fetch runs the query on a dedicated connection and materializes every
// value before the connection is returned to the pool.
func (b *base) fetch(ctx context.Context, query string) (*types.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.QueryTimeout)
	defer cancel()

	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	sample := &types.Sample{Columns: cols}
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}

		row := make([]interface{}, len(cols))
		for i, v := range raw {
			mv, err := types.Materialize(v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", cols[i], err)
			}
			row[i] = mv
		}
		sample.Rows = append(sample.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sample, nil
}

func failed(info types.SamplingInfo, err error) (*types.Sample, types.SamplingInfo) {
	info.Method = types.SampleError
	info.SampledRows = 0
	info.SamplingRatio = 0
	info.Error = err.Error()
	return &types.Sample{}, info
}
