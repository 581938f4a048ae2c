package risk

// StructureSummary is the preview-time fold over table estimates.
type StructureSummary struct {
	TotalTables           int     `json:"total_tables"`
	ScannableTables       int     `json:"scannable_tables"`
	EmptyTables           int     `json:"empty_tables"`
	ErrorTables           int     `json:"error_tables"`
	LargeTables           int     `json:"large_tables"`
	TotalRows             int64   `json:"total_rows"`
	TotalColumns          int     `json:"total_columns"`
	TotalTextColumns      int     `json:"total_text_columns"`
	EstimatedTotalMB      float64 `json:"estimated_total_mb"`
	EstimatedTotalScanSec float64 `json:"estimated_total_scan_time_sec"`
}

// TableStructure is what a preview knows about one table.
type TableStructure struct {
	RowCount    int64
	Columns     int
	TextColumns int
	EstimatedMB float64
	ScanSec     float64
	Failed      bool
}

// Add folds one table into the structure summary.
func (s *StructureSummary) Add(t TableStructure) {
	s.TotalTables++
	if t.Failed {
		s.ErrorTables++
		return
	}
	if t.RowCount == 0 {
		s.EmptyTables++
	} else {
		s.ScannableTables++
	}
	if IsLarge(t.RowCount) {
		s.LargeTables++
	}
	s.TotalRows += t.RowCount
	s.TotalColumns += t.Columns
	s.TotalTextColumns += t.TextColumns
	s.EstimatedTotalMB += t.EstimatedMB
	s.EstimatedTotalScanSec += t.ScanSec
}

// Merge adds another structure summary into s.
func (s *StructureSummary) Merge(o StructureSummary) {
	s.TotalTables += o.TotalTables
	s.ScannableTables += o.ScannableTables
	s.EmptyTables += o.EmptyTables
	s.ErrorTables += o.ErrorTables
	s.LargeTables += o.LargeTables
	s.TotalRows += o.TotalRows
	s.TotalColumns += o.TotalColumns
	s.TotalTextColumns += o.TotalTextColumns
	s.EstimatedTotalMB += o.EstimatedTotalMB
	s.EstimatedTotalScanSec += o.EstimatedTotalScanSec
}
