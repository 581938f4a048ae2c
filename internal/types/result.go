package types

// RiskLevel classifies a table's privacy exposure.
type RiskLevel string

const (
	RiskEmpty  RiskLevel = "EMPTY"
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
	RiskError  RiskLevel = "ERROR"
)

// TableStatus tells clean results apart from tables that could not be assessed.
type TableStatus string

const (
	StatusScanned TableStatus = "scanned"
	StatusEmpty   TableStatus = "empty"
	StatusError   TableStatus = "error"
)

// PatternMatchResult is the outcome of pattern scanning one textual column.
type PatternMatchResult struct {
	Matches       *Ordered[int] `json:"privacy_matches"`
	TotalValues   int           `json:"total_values"`
	RowsWithMatch int           `json:"privacy_count"`
	MatchRatio    float64       `json:"privacy_ratio"`
	SampleValues  []string      `json:"sample_values"`
	Error         string        `json:"error,omitempty"`
}

// HasMatches reports whether at least one category matched.
func (r *PatternMatchResult) HasMatches() bool {
	return r != nil && r.Error == "" && r.Matches.Len() > 0
}

// Categories returns the matched categories in library order.
func (r *PatternMatchResult) Categories() []string {
	if r == nil {
		return nil
	}
	return r.Matches.Keys()
}

// ColumnScanResult is the per-column part of a table scan.
type ColumnScanResult struct {
	DeclaredType   string              `json:"type"`
	Kind           ColumnKind          `json:"kind"`
	SuspiciousName bool                `json:"suspicious_name"`
	PatternScan    *PatternMatchResult `json:"pattern_scan"`
}

// TableScanResult is the terminal result of scanning one table in one run.
type TableScanResult struct {
	Container    string                     `json:"container"`
	Table        string                     `json:"table"`
	SamplingInfo SamplingInfo               `json:"sampling_info"`
	Columns      *Ordered[ColumnScanResult] `json:"columns"`
	PrivacyScore int                        `json:"privacy_score"`
	RiskLevel    RiskLevel                  `json:"risk_level"`
	Status       TableStatus                `json:"status"`
	Error        string                     `json:"error,omitempty"`
}

// NewTableError builds the result for a table whose catalog or sample
// query failed before any column could be scanned.
func NewTableError(container, table string, totalRows int64, err error) TableScanResult {
	msg := err.Error()
	return TableScanResult{
		Container: container,
		Table:     table,
		SamplingInfo: SamplingInfo{
			Method:    SampleError,
			TotalRows: totalRows,
			Error:     msg,
		},
		Columns:   NewOrdered[ColumnScanResult](),
		RiskLevel: RiskError,
		Status:    StatusError,
		Error:     msg,
	}
}
