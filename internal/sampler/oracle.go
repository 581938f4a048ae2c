package sampler

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/dbsmedya/piiscan/internal/sqlutil"
	"github.com/dbsmedya/piiscan/internal/types"
)

// Oracle SAMPLE clause bounds.
const (
	MinSamplePercent = 0.000001
	MaxSamplePercent = 50.0
	// SampleMargin over-samples so the ROWNUM cutoff is usually reached.
	SampleMargin = 2.0
)

// Oracle samples with SAMPLE(p) and a ROWNUM cutoff, avoiding a full sort
// of large tables.
type Oracle struct {
	base
}

// NewOracle creates an Oracle sampler.
func NewOracle(db *sql.DB, opts Options) *Oracle {
	s := &Oracle{}
	s.base = base{
		db:      db,
		opts:    opts.withDefaults(),
		partial: types.SampleBlock,
	}
	s.base.build = s.query
	return s
}

// SamplePercent returns the SAMPLE percentage for a table of rowCount
// rows so that roughly twice sampleSize rows survive the first stage.
func SamplePercent(rowCount int64, sampleSize int) float64 {
	if rowCount <= 0 {
		return MaxSamplePercent
	}
	p := float64(sampleSize) / float64(rowCount) * 100 * SampleMargin
	return math.Max(MinSamplePercent, math.Min(MaxSamplePercent, p))
}

func (s *Oracle) query(table *types.TableHandle, method types.SamplingMethod) (string, float64, error) {
	qualified, err := sqlutil.QualifiedName(sqlutil.Oracle, table.Container, table.Name)
	if err != nil {
		return "", 0, err
	}
	if method == types.SampleFull {
		return "SELECT * FROM " + qualified, 0, nil
	}

	p := SamplePercent(table.RowCount, s.opts.SampleSize)
	query := fmt.Sprintf(
		"SELECT * FROM (SELECT * FROM %s SAMPLE(%s) ORDER BY DBMS_RANDOM.VALUE) WHERE ROWNUM <= %d",
		qualified, strconv.FormatFloat(p, 'f', -1, 64), s.opts.SampleSize)
	return query, p, nil
}
