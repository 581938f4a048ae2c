// Package scanner applies the pattern library to sampled values and
// builds per-table scan results.
//
// Every value is matched against every pattern, so cost grows with
// values × patterns. That is fine for samples of at most a thousand rows
// and a handful of categories; large custom libraries would want the
// expressions combined first.
package scanner

import (
	"fmt"
	"regexp"

	"github.com/dbsmedya/piiscan/internal/pattern"
	"github.com/dbsmedya/piiscan/internal/types"
)

// MaxSampleValues is how many masked values a column result carries.
const MaxSampleValues = 5

// ScanColumn matches every non-null value against the library. A panic
// while converting or matching is recovered into the result's Error so
// sibling columns still scan.
func ScanColumn(lib *pattern.Library, values []interface{}) (result *types.PatternMatchResult) {
	result = &types.PatternMatchResult{
		Matches:      types.NewOrdered[int](),
		SampleValues: []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			result = &types.PatternMatchResult{
				Matches:      types.NewOrdered[int](),
				SampleValues: []string{},
				Error:        fmt.Sprintf("pattern scan failed: %v", r),
			}
		}
	}()

	texts := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := types.ToText(v); ok {
			texts = append(texts, s)
		}
	}

	counts := make(map[string]int)
	rowsWithMatch := 0
	for _, text := range texts {
		matched := false
		lib.Each(func(category string, re *regexp.Regexp) {
			if n := len(re.FindAllString(text, -1)); n > 0 {
				counts[category] += n
				matched = true
			}
		})
		if matched {
			rowsWithMatch++
		}
	}

	// library order, not map order
	lib.Each(func(category string, _ *regexp.Regexp) {
		if n, ok := counts[category]; ok {
			result.Matches.Set(category, n)
		}
	})

	result.TotalValues = len(texts)
	result.RowsWithMatch = rowsWithMatch
	if result.TotalValues > 0 {
		result.MatchRatio = float64(rowsWithMatch) / float64(result.TotalValues)
	}

	for i := 0; i < len(texts) && i < MaxSampleValues; i++ {
		result.SampleValues = append(result.SampleValues, pattern.Mask(texts[i]))
	}
	return result
}
