package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/piiscan/internal/estimate"
	"github.com/dbsmedya/piiscan/internal/risk"
	"github.com/dbsmedya/piiscan/internal/types"
)

// Preview table states.
const (
	StatusScannable = "scannable"
	StatusEmpty     = "empty"
	StatusError     = "error"
)

// TableEstimate is the preview of one table.
type TableEstimate struct {
	TotalRows    int64                  `json:"total_rows"`
	TotalColumns int                    `json:"total_columns"`
	Columns      []types.ColumnMetadata `json:"columns,omitempty"`
	Size         *estimate.SizeEstimate `json:"size_estimate,omitempty"`
	Time         *estimate.TimeEstimate `json:"time_estimate,omitempty"`
	Status       string                 `json:"status"`
	Error        string                 `json:"error,omitempty"`
}

// StructureAnalysis is the preview document of one container.
type StructureAnalysis struct {
	Container    string                        `json:"container"`
	AnalysisTime time.Time                     `json:"analysis_time"`
	Engine       string                        `json:"engine"`
	SampleSize   int                           `json:"sample_size"`
	Tables       *types.Ordered[TableEstimate] `json:"tables"`
	Summary      risk.StructureSummary         `json:"summary"`
	Error        string                        `json:"error,omitempty"`
}

// PreviewResult is everything a preview produced.
type PreviewResult struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Containers  []StructureAnalysis
	Summary     risk.StructureSummary
	Cancelled   bool
}

// Preview reads catalog metadata for the selected containers and estimates
// the cost of scanning each table. It samples no data and may be run
// repeatedly.
func (e *Engine) Preview(ctx context.Context, filter []string) (*PreviewResult, error) {
	result := &PreviewResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := e.logger.WithRun(result.RunID)

	containers, err := e.resolveContainers(ctx, filter)
	if err != nil {
		return nil, err
	}
	log.Infof("Previewing %d containers", len(containers))

	for _, container := range containers {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		analysis, stopped := e.previewContainer(ctx, container)
		result.Containers = append(result.Containers, analysis)
		result.Summary.Merge(analysis.Summary)
		if stopped {
			result.Cancelled = true
			break
		}
	}

	result.CompletedAt = time.Now()
	log.Infow("Preview finished",
		"tables", result.Summary.TotalTables,
		"large_tables", result.Summary.LargeTables,
		"estimated_sec", result.Summary.EstimatedTotalScanSec,
	)
	return result, nil
}

// previewContainer estimates one container. It reports whether cancellation
// stopped it before every table was estimated.
func (e *Engine) previewContainer(ctx context.Context, container string) (StructureAnalysis, bool) {
	log := e.logger.WithContainer(container)
	analysis := StructureAnalysis{
		Container:    container,
		AnalysisTime: time.Now(),
		Engine:       e.opts.EngineLabel,
		SampleSize:   e.opts.SampleSize,
		Tables:       types.NewOrdered[TableEstimate](),
	}

	tables, err := e.introspector.ListTables(ctx, container)
	if err != nil {
		log.Errorf("Failed to list tables: %v", err)
		analysis.Error = err.Error()
		return analysis, false
	}

	for _, table := range tables {
		if ctx.Err() != nil {
			return analysis, true
		}
		est := e.EstimateTable(ctx, container, table)
		analysis.Tables.Set(table, est)

		st := risk.TableStructure{
			RowCount: est.TotalRows,
			Columns:  est.TotalColumns,
			Failed:   est.Status == StatusError,
		}
		if est.Size != nil {
			st.TextColumns = est.Size.TextColumns
			st.EstimatedMB = est.Size.EstimatedMB
		}
		if est.Time != nil {
			st.ScanSec = est.Time.TotalSec
		}
		analysis.Summary.Add(st)
	}
	return analysis, false
}

// EstimateTable reads one table's metadata and estimates its scan cost.
func (e *Engine) EstimateTable(ctx context.Context, container, table string) TableEstimate {
	handle, err := e.introspector.TableMetadata(ctx, container, table)
	if err != nil {
		e.logger.WithContainer(container).WithTable(table).Warnf("Catalog query failed: %v", err)
		return TableEstimate{Status: StatusError, Error: err.Error()}
	}

	sampleRows := 0
	if handle.RowCount > 0 {
		sampleRows = int(min(handle.RowCount, int64(e.opts.SampleSize)))
	}
	size := estimate.EstimateSize(e.profile, handle.Columns, sampleRows)
	tm := estimate.EstimateTime(e.profile, handle.RowCount, len(handle.Columns), size.TextColumns, size.EstimatedMB, sampleRows)

	status := StatusScannable
	if handle.RowCount == 0 {
		status = StatusEmpty
	}
	return TableEstimate{
		TotalRows:    handle.RowCount,
		TotalColumns: len(handle.Columns),
		Columns:      handle.Columns,
		Size:         &size,
		Time:         &tm,
		Status:       status,
	}
}
