package estimate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dbsmedya/piiscan/internal/catalog"
	"github.com/dbsmedya/piiscan/internal/types"
)

// SizeEstimate is the predicted in-memory size of a table sample.
type SizeEstimate struct {
	TotalColumns   int     `json:"total_columns"`
	TextColumns    int     `json:"text_columns"`
	NumericColumns int     `json:"numeric_columns"`
	DateColumns    int     `json:"date_columns"`
	OtherColumns   int     `json:"other_columns"`
	BytesPerRow    int64   `json:"estimated_bytes_per_row"`
	TotalBytes     int64   `json:"estimated_total_bytes"`
	EstimatedMB    float64 `json:"estimated_mb"`
	SampleRows     int     `json:"sample_rows"`
}

// TimeEstimate is the predicted duration of scanning one table.
type TimeEstimate struct {
	EngineLabel    string  `json:"engine"`
	QuerySec       float64 `json:"db_query_time_sec"`
	MaterializeSec float64 `json:"materialization_time_sec"`
	PatternScanSec float64 `json:"pattern_scan_time_sec"`
	TotalSec       float64 `json:"total_estimated_sec"`
	RowsPerSec     int     `json:"estimated_rows_per_sec"`
	TextFactor     float64 `json:"text_columns_factor"`
	Columns        int     `json:"columns"`
}

// variable-length character types whose declared length replaces the table size
var lengthSized = map[string]bool{
	"char": true, "varchar": true, "nchar": true, "nvarchar": true,
	"varchar2": true, "nvarchar2": true,
}

var declaredLength = regexp.MustCompile(`\((\d+)\)`)

// EstimateSize predicts the memory footprint of sampleRows rows of a table
// with the given columns.
func EstimateSize(p Profile, columns []types.ColumnMetadata, sampleRows int) SizeEstimate {
	est := SizeEstimate{
		TotalColumns: len(columns),
		SampleRows:   sampleRows,
	}

	var perRow int64
	for _, col := range columns {
		perRow += int64(columnBytes(p, col))

		switch col.Kind {
		case types.KindText:
			est.TextColumns++
		case types.KindNumeric:
			est.NumericColumns++
		case types.KindDate:
			est.DateColumns++
		default:
			est.OtherColumns++
		}
	}

	total := float64(perRow) * float64(sampleRows) * OverheadFactor
	est.BytesPerRow = perRow
	est.TotalBytes = int64(total)
	est.EstimatedMB = round2(total / bytesPerMB)
	return est
}

// EstimateTime predicts query, materialization and pattern-scan time.
// Each term has a positive floor so empty tables never estimate to zero.
func EstimateTime(p Profile, rowCount int64, columnCount, textColumns int, estimatedMB float64, sampleRows int) TimeEstimate {
	textFactor := 1 + TextColumnPenalty*float64(textColumns)
	effective := p.BaseThroughput * RegexSpeedFactor / textFactor

	query := math.Max(p.QueryFloor, float64(rowCount)/p.QueryDivisor)
	materialize := math.Max(p.MaterializeFloor, estimatedMB/p.MaterializeDivisor)
	pattern := math.Max(PatternScanFloor, float64(sampleRows)/effective)

	return TimeEstimate{
		EngineLabel:    p.Label,
		QuerySec:       round2(query),
		MaterializeSec: round2(materialize),
		PatternScanSec: round2(pattern),
		TotalSec:       round2(query + materialize + pattern),
		RowsPerSec:     int(effective),
		TextFactor:     round2(textFactor),
		Columns:        columnCount,
	}
}

func columnBytes(p Profile, col types.ColumnMetadata) int {
	base := catalog.BaseType(col.DeclaredType)
	size, ok := p.TypeSizes[base]
	if !ok {
		size = familyBytes(p, base)
	}

	if lengthSized[base] {
		if n, ok := textLength(col); ok {
			size = int(math.Min(float64(n), MaxTextColumnBytes))
		}
	}
	return size
}

func familyBytes(p Profile, base string) int {
	for _, f := range p.Families {
		if strings.HasSuffix(base, f.Suffix) {
			return f.Bytes
		}
	}
	return DefaultColumnBytes
}

func textLength(col types.ColumnMetadata) (int64, bool) {
	if col.Length != nil && *col.Length > 0 {
		return *col.Length, true
	}
	m := declaredLength.FindStringSubmatch(col.DeclaredType)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
