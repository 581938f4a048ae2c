// Package risk turns column scan results into a table privacy score and
// risk level, and folds table results into run summaries.
package risk

import (
	"math"

	"github.com/dbsmedya/piiscan/internal/types"
)

// Scoring policy. These are fixed heuristics; change them only together
// with the downstream dashboards that interpret the levels.
const (
	CategoryWeight  = 3
	RatioWeight     = 10
	SuspiciousScore = 1
	HighThreshold   = 15
	MediumThreshold = 5
	LargeTableRows  = 1_000_000
)

// ColumnScore is a column's contribution to its table's privacy score:
// categories×3 + floor(ratio×10) when any pattern matched, 1 for a
// suspicious name without matches, 0 otherwise.
func ColumnScore(c types.ColumnScanResult) int {
	if c.PatternScan.HasMatches() {
		categories := c.PatternScan.Matches.Len()
		return categories*CategoryWeight + int(math.Floor(c.PatternScan.MatchRatio*RatioWeight))
	}
	if c.SuspiciousName {
		return SuspiciousScore
	}
	return 0
}

// TableScore sums column contributions.
func TableScore(columns *types.Ordered[types.ColumnScanResult]) int {
	score := 0
	columns.Each(func(_ string, c types.ColumnScanResult) {
		score += ColumnScore(c)
	})
	return score
}

// Level maps a score and sampling outcome to a risk level. Sampling
// failure and empty tables take precedence over the score.
func Level(score int, info types.SamplingInfo) types.RiskLevel {
	switch {
	case info.Failed():
		return types.RiskError
	case info.TotalRows == 0 || info.Method == types.SampleEmpty:
		return types.RiskEmpty
	case score >= HighThreshold:
		return types.RiskHigh
	case score >= MediumThreshold:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// Assess fills in score, level and status of a table result from its
// columns and sampling info.
func Assess(r *types.TableScanResult) {
	switch {
	case r.SamplingInfo.Failed():
		r.PrivacyScore = 0
		r.Status = types.StatusError
		if r.Error == "" {
			r.Error = r.SamplingInfo.Error
		}
	case r.SamplingInfo.TotalRows == 0 || r.SamplingInfo.Method == types.SampleEmpty:
		r.PrivacyScore = 0
		r.Status = types.StatusEmpty
	default:
		r.PrivacyScore = TableScore(r.Columns)
		r.Status = types.StatusScanned
	}
	r.RiskLevel = Level(r.PrivacyScore, r.SamplingInfo)
}

// IsLarge reports whether a table counts as large in summaries.
func IsLarge(rowCount int64) bool {
	return rowCount >= LargeTableRows
}
