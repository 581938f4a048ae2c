package report

import (
	"time"

	"github.com/dbsmedya/piiscan/internal/engine"
	"github.com/dbsmedya/piiscan/internal/estimate"
	"github.com/dbsmedya/piiscan/internal/risk"
	"github.com/dbsmedya/piiscan/internal/types"
)

var started = time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)

func matchResult(counts map[string]int, order []string, total, rows int) *types.PatternMatchResult {
	m := types.NewOrdered[int]()
	for _, k := range order {
		m.Set(k, counts[k])
	}
	return &types.PatternMatchResult{
		Matches:       m,
		TotalValues:   total,
		RowsWithMatch: rows,
		MatchRatio:    float64(rows) / float64(total),
		SampleValues:  []string{"ab***@test.com"},
	}
}

func tableResult(container, table string, score int, level types.RiskLevel, cols *types.Ordered[types.ColumnScanResult]) types.TableScanResult {
	if cols == nil {
		cols = types.NewOrdered[types.ColumnScanResult]()
	}
	return types.TableScanResult{
		Container:    container,
		Table:        table,
		SamplingInfo: types.SamplingInfo{Method: types.SampleFull, TotalRows: 5, SampledRows: 5, SamplingRatio: 1},
		Columns:      cols,
		PrivacyScore: score,
		RiskLevel:    level,
		Status:       types.StatusScanned,
	}
}

func scanFixture() *engine.ScanResult {
	custCols := types.NewOrdered[types.ColumnScanResult]()
	custCols.Set("email", types.ColumnScanResult{
		DeclaredType: "varchar(100)", Kind: types.KindText, SuspiciousName: true,
		PatternScan: matchResult(map[string]int{"email": 3}, []string{"email"}, 5, 3),
	})
	custCols.Set("연락처", types.ColumnScanResult{
		DeclaredType: "varchar(20)", Kind: types.KindText,
		PatternScan: matchResult(map[string]int{"phone": 5, "email": 0}, []string{"phone"}, 5, 5),
	})

	tables := types.NewOrdered[types.TableScanResult]()
	tables.Set("zeta", tableResult("shop", "zeta", 1, types.RiskLow, nil))
	tables.Set("고객", tableResult("shop", "고객", 19, types.RiskHigh, custCols))
	tables.Set("alpha", tableResult("shop", "alpha", 9, types.RiskMedium, nil))

	cs := engine.ContainerScan{
		Container:  "shop",
		ScanTime:   started,
		Engine:     "MySQL",
		SampleSize: 100,
		Tables:     tables,
	}
	tables.Each(func(_ string, r types.TableScanResult) { cs.Summary.Add(r) })

	failed := engine.ContainerScan{
		Container: "crm", ScanTime: started, Engine: "MySQL", SampleSize: 100,
		Tables: types.NewOrdered[types.TableScanResult](),
		Error:  "Error 1044: Access denied for user 'scanner'@'%' to database 'crm'",
	}

	res := &engine.ScanResult{
		RunID:       "3f2a9c4e-0000-4000-8000-000000000001",
		StartedAt:   started,
		CompletedAt: started.Add(1500 * time.Millisecond),
		Containers:  []engine.ContainerScan{cs, failed},
	}
	res.Summary.Merge(cs.Summary)
	return res
}

func estimateFor(rows int64, cols, text int, sec float64) engine.TableEstimate {
	size := estimate.SizeEstimate{TotalColumns: cols, TextColumns: text, EstimatedMB: 0.5, SampleRows: 100}
	tm := estimate.TimeEstimate{TotalSec: sec}
	status := engine.StatusScannable
	if rows == 0 {
		status = engine.StatusEmpty
	}
	return engine.TableEstimate{TotalRows: rows, TotalColumns: cols, Size: &size, Time: &tm, Status: status}
}

func previewFixture() *engine.PreviewResult {
	tables := types.NewOrdered[engine.TableEstimate]()
	tables.Set("events", estimateFor(2_000_000, 10, 3, 2.06))
	tables.Set("audit_trail", estimateFor(400_000, 40, 30, 45))
	tables.Set("orders", estimateFor(5_000_000, 8, 1, 5))
	tables.Set("archive", estimateFor(0, 3, 1, 0.01))
	tables.Set("secret", engine.TableEstimate{Status: engine.StatusError, Error: "SELECT command denied\nto user"})

	a := engine.StructureAnalysis{
		Container: "shop", AnalysisTime: started, Engine: "MySQL", SampleSize: 100, Tables: tables,
	}
	tables.Each(func(_ string, t engine.TableEstimate) {
		st := risk.TableStructure{RowCount: t.TotalRows, Columns: t.TotalColumns, Failed: t.Status == engine.StatusError}
		if t.Size != nil {
			st.TextColumns = t.Size.TextColumns
			st.EstimatedMB = t.Size.EstimatedMB
		}
		if t.Time != nil {
			st.ScanSec = t.Time.TotalSec
		}
		a.Summary.Add(st)
	})

	return &engine.PreviewResult{
		RunID:       "run-preview",
		StartedAt:   started,
		CompletedAt: started.Add(time.Second),
		Containers:  []engine.StructureAnalysis{a},
		Summary:     a.Summary,
	}
}
