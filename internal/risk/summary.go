package risk

import (
	"sync"

	"github.com/dbsmedya/piiscan/internal/types"
)

// Summary is the fold of table scan results for a container or a run.
// Add and Merge are commutative and associative.
type Summary struct {
	TotalTables       int   `json:"total_tables"`
	ScannedTables     int   `json:"scanned_tables"`
	EmptyTables       int   `json:"empty_tables"`
	ErrorTables       int   `json:"error_tables"`
	HighRiskTables    int   `json:"high_risk_tables"`
	MediumRiskTables  int   `json:"medium_risk_tables"`
	LowRiskTables     int   `json:"low_risk_tables"`
	LargeTables       int   `json:"large_tables"`
	TotalPrivacyScore int   `json:"total_privacy_score"`
	TotalDataRows     int64 `json:"total_data_rows"`
	TotalSampledRows  int64 `json:"total_sampled_rows"`
}

// Add folds one table result into the summary.
func (s *Summary) Add(r types.TableScanResult) {
	s.TotalTables++

	switch r.RiskLevel {
	case types.RiskError:
		s.ErrorTables++
	case types.RiskEmpty:
		s.EmptyTables++
	case types.RiskHigh:
		s.ScannedTables++
		s.HighRiskTables++
	case types.RiskMedium:
		s.ScannedTables++
		s.MediumRiskTables++
	default:
		s.ScannedTables++
		s.LowRiskTables++
	}

	if IsLarge(r.SamplingInfo.TotalRows) {
		s.LargeTables++
	}
	s.TotalPrivacyScore += r.PrivacyScore
	s.TotalDataRows += r.SamplingInfo.TotalRows
	s.TotalSampledRows += int64(r.SamplingInfo.SampledRows)
}

// Merge adds another summary into s.
func (s *Summary) Merge(o Summary) {
	s.TotalTables += o.TotalTables
	s.ScannedTables += o.ScannedTables
	s.EmptyTables += o.EmptyTables
	s.ErrorTables += o.ErrorTables
	s.HighRiskTables += o.HighRiskTables
	s.MediumRiskTables += o.MediumRiskTables
	s.LowRiskTables += o.LowRiskTables
	s.LargeTables += o.LargeTables
	s.TotalPrivacyScore += o.TotalPrivacyScore
	s.TotalDataRows += o.TotalDataRows
	s.TotalSampledRows += o.TotalSampledRows
}

// Summarize folds a slice of results.
func Summarize(results []types.TableScanResult) Summary {
	var s Summary
	for _, r := range results {
		s.Add(r)
	}
	return s
}

// Aggregator collects completed table results from concurrent workers.
// Only whole results are added, so readers never see a partial table.
type Aggregator struct {
	mu      sync.Mutex
	results []types.TableScanResult
	summary Summary
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records a completed table result.
func (a *Aggregator) Add(r types.TableScanResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
	a.summary.Add(r)
}

// Summary returns the summary of everything added so far.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// Results returns a copy of the results in completion order.
func (a *Aggregator) Results() []types.TableScanResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.TableScanResult(nil), a.results...)
}

// Len returns the number of results added.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}
