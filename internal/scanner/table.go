package scanner

import (
	"strings"

	"github.com/dbsmedya/piiscan/internal/pattern"
	"github.com/dbsmedya/piiscan/internal/risk"
	"github.com/dbsmedya/piiscan/internal/types"
)

// AnalyzeTable builds the scan result for one table from its sample.
// Every column gets a suspicious-name check; only text columns are
// pattern-scanned. Failed and empty samples produce a result with no
// columns and the matching risk level.
func AnalyzeTable(lib *pattern.Library, table *types.TableHandle, sample *types.Sample, info types.SamplingInfo) types.TableScanResult {
	result := types.TableScanResult{
		Container:    table.Container,
		Table:        table.Name,
		SamplingInfo: info,
		Columns:      types.NewOrdered[types.ColumnScanResult](),
	}

	if !info.Failed() && sample.Len() > 0 {
		for _, name := range sample.Columns {
			meta := columnMeta(table, name, sample)
			col := types.ColumnScanResult{
				DeclaredType:   meta.DeclaredType,
				Kind:           meta.Kind,
				SuspiciousName: lib.IsSuspiciousName(name),
			}
			if meta.Kind == types.KindText {
				col.PatternScan = ScanColumn(lib, sample.Values(name))
			}
			result.Columns.Set(name, col)
		}
	}

	risk.Assess(&result)
	return result
}

// columnMeta finds catalog metadata for a sampled column. Drivers may
// report a different case than the catalog; when nothing matches, the
// kind is inferred from the sampled values.
func columnMeta(table *types.TableHandle, name string, sample *types.Sample) types.ColumnMetadata {
	if meta, ok := table.Column(name); ok {
		return meta
	}
	for _, c := range table.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return types.ColumnMetadata{Name: name, DeclaredType: "unknown", Kind: inferKind(sample.Values(name))}
}

func inferKind(values []interface{}) types.ColumnKind {
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := v.(string); !ok {
			return types.KindOther
		}
		seen = true
	}
	if seen {
		return types.KindText
	}
	return types.KindOther
}
