package report

import (
	"sort"
	"time"

	"github.com/dbsmedya/piiscan/internal/engine"
	"github.com/dbsmedya/piiscan/internal/risk"
	"github.com/dbsmedya/piiscan/internal/types"
)

// Thresholds used when reviewing a preview before running a scan.
const (
	SlowTableSec     = 30.0
	MemoryWarnMB     = 512.0
	MemoryCriticalMB = 1024.0
	TimeWarnSec      = 600.0
	TimeCriticalSec  = 1800.0
	MaxReviewTables  = 15
)

// Severity of a recommendation.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// CostTable is a table worth a look before scanning.
type CostTable struct {
	Container string
	Table     string
	Rows      int64
	Columns   int
	MB        float64
	Sec       float64
	Large     bool
	Slow      bool
}

// CostTables returns large or slow tables of a preview, most rows first.
func CostTables(containers []engine.StructureAnalysis) []CostTable {
	var out []CostTable
	for _, c := range containers {
		c.Tables.Each(func(name string, t engine.TableEstimate) {
			ct := CostTable{
				Container: c.Container,
				Table:     name,
				Rows:      t.TotalRows,
				Columns:   t.TotalColumns,
				Large:     risk.IsLarge(t.TotalRows),
			}
			if t.Size != nil {
				ct.MB = t.Size.EstimatedMB
			}
			if t.Time != nil {
				ct.Sec = t.Time.TotalSec
				ct.Slow = t.Time.TotalSec > SlowTableSec
			}
			if ct.Large || ct.Slow {
				out = append(out, ct)
			}
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rows > out[j].Rows })
	return out
}

// Recommendation is one line of advice about a planned scan.
type Recommendation struct {
	Area     string
	Severity Severity
	Message  string
}

// Recommend reviews the estimated memory and time of a preview.
func Recommend(s risk.StructureSummary) []Recommendation {
	var recs []Recommendation

	switch {
	case s.EstimatedTotalMB > MemoryCriticalMB:
		recs = append(recs, Recommendation{"memory", SeverityCritical, "estimated sample memory is high; reduce sample_size or check server capacity"})
	case s.EstimatedTotalMB > MemoryWarnMB:
		recs = append(recs, Recommendation{"memory", SeverityWarning, "estimated sample memory is elevated; monitor the scan"})
	default:
		recs = append(recs, Recommendation{"memory", SeverityOK, "estimated sample memory is stable"})
	}

	switch {
	case s.EstimatedTotalScanSec > TimeCriticalSec:
		recs = append(recs, Recommendation{"time", SeverityCritical, "estimated scan time is very long; scan containers separately or exclude large tables"})
	case s.EstimatedTotalScanSec > TimeWarnSec:
		recs = append(recs, Recommendation{"time", SeverityWarning, "estimated scan time is long; run outside business hours"})
	default:
		recs = append(recs, Recommendation{"time", SeverityOK, "estimated scan time is acceptable"})
	}

	return recs
}

// EstimatedDuration converts estimated seconds to a whole-second duration.
func EstimatedDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second)).Truncate(time.Second)
}

// RiskyTable is a scanned table at or above MEDIUM risk.
type RiskyTable struct {
	Container   string
	Table       string
	Score       int
	Level       types.RiskLevel
	SampledRows int
	TotalRows   int64
	Categories  []string
}

// RiskyTables returns HIGH and MEDIUM tables ordered by score, highest first.
func RiskyTables(containers []engine.ContainerScan) []RiskyTable {
	var out []RiskyTable
	for _, c := range containers {
		c.Tables.Each(func(name string, t types.TableScanResult) {
			if t.RiskLevel != types.RiskHigh && t.RiskLevel != types.RiskMedium {
				return
			}
			out = append(out, RiskyTable{
				Container:   c.Container,
				Table:       name,
				Score:       t.PrivacyScore,
				Level:       t.RiskLevel,
				SampledRows: t.SamplingInfo.SampledRows,
				TotalRows:   t.SamplingInfo.TotalRows,
				Categories:  matchedCategories(t),
			})
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// matchedCategories lists categories in first-seen column order.
func matchedCategories(t types.TableScanResult) []string {
	seen := map[string]bool{}
	var cats []string
	t.Columns.Each(func(_ string, c types.ColumnScanResult) {
		if !c.PatternScan.HasMatches() {
			return
		}
		for _, cat := range c.PatternScan.Categories() {
			if !seen[cat] {
				seen[cat] = true
				cats = append(cats, cat)
			}
		}
	})
	return cats
}
