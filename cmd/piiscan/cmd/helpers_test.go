package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/logger"
)

const testConfig = `
source:
  engine: mysql
  host: localhost
  port: 3306
  user: scanner
  password: ${PIISCAN_TEST_PASSWORD}
  tls: disable
scan:
  sample_size: 10
  workers: 1
logging:
  level: error
  format: text
  output: stderr
`

// cliEnv isolates package-level flag state for one test.
type cliEnv struct {
	dir string
	out *bytes.Buffer
}

func newCLIEnv(t *testing.T, yaml string) *cliEnv {
	t.Helper()

	saved := struct {
		cfgFile, logLevel, logFormat, outputDir string
		sampleSize, workers                     int
		containers                              []string
		noColor, skipConnect, force             bool
		lockTimeout                             time.Duration
		open                                    func(context.Context, *config.Config, *logger.Logger) (*sql.DB, func() error, error)
	}{cfgFile, logLevel, logFormat, outputDir, sampleSize, workers, containers, noColor, validateSkipConnect, scanForce, scanLockTimeout, openDatabase}
	t.Cleanup(func() {
		cfgFile, logLevel, logFormat, outputDir = saved.cfgFile, saved.logLevel, saved.logFormat, saved.outputDir
		sampleSize, workers, containers = saved.sampleSize, saved.workers, saved.containers
		noColor, validateSkipConnect, openDatabase = saved.noColor, saved.skipConnect, saved.open
		scanForce, scanLockTimeout = saved.force, saved.lockTimeout
		resetOutputWriter()
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "piiscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfgFile = path
	logLevel, logFormat = "", ""
	sampleSize, workers = 0, 0
	containers = nil
	outputDir = filepath.Join(dir, "out")
	noColor = true
	validateSkipConnect = false
	scanForce, scanLockTimeout = false, 0

	env := &cliEnv{dir: dir, out: &bytes.Buffer{}}
	setOutputWriter(env.out)
	return env
}

// mockDatabase routes openDatabase to a sqlmock pool.
func mockDatabase(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	openDatabase = func(context.Context, *config.Config, *logger.Logger) (*sql.DB, func() error, error) {
		return db, func() error { return nil }, nil
	}
	return mock
}

// expectShopCatalog queues the catalog reads for one container holding
// one three-row customers table.
func expectShopCatalog(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SHOW DATABASES").
		WillReturnRows(sqlmock.NewRows([]string{"Database"}).
			AddRow("information_schema").AddRow("shop").AddRow("mysql"))
	mock.ExpectQuery("SELECT TABLE_NAME\\s+FROM information_schema.TABLES").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("customers"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM `shop`.`customers`").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))
	mock.ExpectQuery("FROM information_schema.COLUMNS").
		WithArgs("shop", "customers").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "column_type", "is_nullable", "char_length", "num_precision", "num_scale",
		}).
			AddRow("id", "int", "NO", nil, 10, 0).
			AddRow("email", "varchar(100)", "YES", 100, nil, nil))
}

func outputFiles(t *testing.T, env *cliEnv) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(env.dir, "out", "*.json"))
	require.NoError(t, err)
	return matches
}
