package sampler

import (
	"database/sql"
	"fmt"

	"github.com/dbsmedya/piiscan/internal/sqlutil"
	"github.com/dbsmedya/piiscan/internal/types"
)

// MySQL samples with ORDER BY RAND() LIMIT n.
type MySQL struct {
	base
}

// NewMySQL creates a MySQL sampler.
func NewMySQL(db *sql.DB, opts Options) *MySQL {
	s := &MySQL{}
	s.base = base{
		db:      db,
		opts:    opts.withDefaults(),
		partial: types.SampleRandomLimit,
	}
	s.base.build = s.query
	return s
}

func (s *MySQL) query(table *types.TableHandle, method types.SamplingMethod) (string, float64, error) {
	qualified, err := sqlutil.QualifiedName(sqlutil.MySQL, table.Container, table.Name)
	if err != nil {
		return "", 0, err
	}
	if method == types.SampleFull {
		return "SELECT * FROM " + qualified, 0, nil
	}
	return fmt.Sprintf("SELECT * FROM %s ORDER BY RAND() LIMIT %d", qualified, s.opts.SampleSize), 0, nil
}
