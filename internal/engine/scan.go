package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/dbsmedya/piiscan/internal/logger"
	"github.com/dbsmedya/piiscan/internal/risk"
	"github.com/dbsmedya/piiscan/internal/scanner"
	"github.com/dbsmedya/piiscan/internal/types"
)

// ContainerScan is the scan document of one container. Its JSON form is
// the contract consumed by dashboards and report generators.
type ContainerScan struct {
	Container  string                                `json:"container"`
	ScanTime   time.Time                             `json:"scan_time"`
	Engine     string                                `json:"engine"`
	SampleSize int                                   `json:"sample_size"`
	Tables     *types.Ordered[types.TableScanResult] `json:"tables"`
	Summary    risk.Summary                          `json:"summary"`
	Error      string                                `json:"error,omitempty"`
}

// ScanResult is everything a scan run produced.
type ScanResult struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Containers  []ContainerScan
	Summary     risk.Summary
	Cancelled   bool
}

// Duration returns the wall time of the run.
func (r *ScanResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Scan samples and scans every table of the selected containers. An
// empty filter selects all user containers.
//
// Failures below the run level are recorded in the result. Only a failure
// to list containers is returned as an error. When ctx is cancelled no new
// tables are started, tables already running finish, and the partial
// result is returned with Cancelled set.
func (e *Engine) Scan(ctx context.Context, filter []string, progress ProgressFunc) (*ScanResult, error) {
	result := &ScanResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := e.logger.WithRun(result.RunID)
	rep := &progressReporter{fn: progress}

	rep.report("", "", PhaseConnect, 0)
	containers, err := e.resolveContainers(ctx, filter)
	if err != nil {
		return nil, err
	}
	log.Infow("Starting privacy scan",
		"engine", e.opts.EngineLabel,
		"containers", len(containers),
		"sample_size", e.opts.SampleSize,
		"workers", e.opts.Workers,
	)

	for _, container := range containers {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		cs, cancelled := e.scanContainer(ctx, container, log.WithContainer(container), rep)
		result.Containers = append(result.Containers, cs)
		result.Summary.Merge(cs.Summary)
		if cancelled {
			result.Cancelled = true
			break
		}
	}

	rep.report("", "", PhaseSummarize, 100)
	result.CompletedAt = time.Now()

	if result.Cancelled {
		log.Warnw("Scan cancelled, returning partial result",
			"containers", len(result.Containers),
			"tables", result.Summary.TotalTables,
		)
	}
	log.Infow("Privacy scan finished",
		"tables", result.Summary.TotalTables,
		"high_risk", result.Summary.HighRiskTables,
		"medium_risk", result.Summary.MediumRiskTables,
		"errors", result.Summary.ErrorTables,
		"duration", result.Duration().String(),
	)
	return result, nil
}

// scanContainer scans one container. It reports whether cancellation
// stopped it before every table was started.
func (e *Engine) scanContainer(ctx context.Context, container string, log *logger.Logger, rep *progressReporter) (ContainerScan, bool) {
	cs := ContainerScan{
		Container:  container,
		ScanTime:   time.Now(),
		Engine:     e.opts.EngineLabel,
		SampleSize: e.opts.SampleSize,
		Tables:     types.NewOrdered[types.TableScanResult](),
	}

	rep.report(container, "", PhaseStructure, 0)
	tables, err := e.introspector.ListTables(ctx, container)
	if err != nil {
		log.Errorf("Failed to list tables: %v", err)
		cs.Error = err.Error()
		return cs, false
	}
	log.Infof("Scanning %d tables", len(tables))

	// Tables already started run to completion even if ctx is cancelled.
	work := context.WithoutCancel(ctx)
	agg := risk.NewAggregator()
	results := make([]*types.TableScanResult, len(tables))
	cancelled := false

	scanOne := func(i int, table string) {
		r := e.scanTable(work, container, table, log.WithTable(table))
		results[i] = &r
		agg.Add(r)
		rep.report(container, table, PhasePatternScan, percentOf(agg.Len(), len(tables)))
	}

	if e.opts.Workers > 1 {
		// p.Go blocks until a slot frees, so cancellation is checked again
		// once the table holds a slot.
		var stopped atomic.Bool
		p := pool.New().WithMaxGoroutines(e.opts.Workers)
		for i, table := range tables {
			if ctx.Err() != nil {
				stopped.Store(true)
				break
			}
			p.Go(func() {
				if ctx.Err() != nil {
					stopped.Store(true)
					return
				}
				scanOne(i, table)
			})
		}
		p.Wait()
		cancelled = stopped.Load()
	} else {
		for i, table := range tables {
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			scanOne(i, table)
		}
	}

	// catalog order, regardless of completion order
	for _, r := range results {
		if r != nil {
			cs.Tables.Set(r.Table, *r)
		}
	}
	cs.Summary = agg.Summary()

	rep.report(container, "", PhaseSummarize, 100)
	log.Infow("Container scan complete",
		"tables", cs.Summary.TotalTables,
		"high_risk", cs.Summary.HighRiskTables,
		"medium_risk", cs.Summary.MediumRiskTables,
		"low_risk", cs.Summary.LowRiskTables,
		"empty", cs.Summary.EmptyTables,
		"errors", cs.Summary.ErrorTables,
	)
	return cs, cancelled
}

// scanTable never fails: catalog and sampling errors become an error result.
func (e *Engine) scanTable(ctx context.Context, container, table string, log *logger.Logger) types.TableScanResult {
	handle, err := e.introspector.TableMetadata(ctx, container, table)
	if err != nil {
		log.Warnf("Catalog query failed: %v", err)
		return types.NewTableError(container, table, 0, err)
	}

	sample, info := e.sampler.LoadSample(ctx, handle)
	result := scanner.AnalyzeTable(e.library, handle, sample, info)

	log.Debugw("Table scanned",
		"method", info.Method,
		"total_rows", info.TotalRows,
		"sampled_rows", info.SampledRows,
		"score", result.PrivacyScore,
		"risk", result.RiskLevel,
	)
	return result
}
