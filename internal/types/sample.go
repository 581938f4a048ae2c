package types

// SamplingMethod records which sampling strategy actually produced a sample.
type SamplingMethod string

const (
	SampleFull        SamplingMethod = "FULL"
	SampleRandomLimit SamplingMethod = "RANDOM_LIMIT"
	SampleBlock       SamplingMethod = "BLOCK_SAMPLE"
	SampleEmpty       SamplingMethod = "EMPTY"
	SampleError       SamplingMethod = "ERROR"
)

// SamplingInfo is produced once per table per scan.
type SamplingInfo struct {
	Method        SamplingMethod `json:"method"`
	TotalRows     int64          `json:"total_rows"`
	SampledRows   int            `json:"sampled_rows"`
	SamplingRatio float64        `json:"sampling_ratio"`
	SamplePercent float64        `json:"sample_percent,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Failed reports whether the sample query failed.
func (s SamplingInfo) Failed() bool {
	return s.Method == SampleError
}

// Sample is a materialized set of rows. Values are plain Go values
// (string, int64, float64, time.Time, bool or nil); no driver handles.
type Sample struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows; nil samples have zero rows.
func (s *Sample) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// ColumnIndex returns the position of a column or -1.
func (s *Sample) ColumnIndex(name string) int {
	if s == nil {
		return -1
	}
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Values returns the column's values in row order, nils included.
func (s *Sample) Values(name string) []any {
	idx := s.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]any, 0, len(s.Rows))
	for _, row := range s.Rows {
		if idx < len(row) {
			out = append(out, row[idx])
		} else {
			out = append(out, nil)
		}
	}
	return out
}
