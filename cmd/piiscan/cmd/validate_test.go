package cmd

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/database"
	"github.com/dbsmedya/piiscan/internal/logger"
)

func TestValidateCommandStructure(t *testing.T) {
	assert.NotNil(t, validateCmd)
	assert.Equal(t, "validate", validateCmd.Use)
	assert.Contains(t, validateCmd.Short, "Validate")
	assert.Contains(t, validateCmd.Long, "Checks performed")
	assert.Contains(t, validateCmd.Long, "piiscan validate")
	assert.NotNil(t, validateCmd.RunE)
	assert.NotNil(t, validateCmd.Flags().Lookup("skip-connect"))
}

func TestRunValidate_SkipConnect(t *testing.T) {
	env := newCLIEnv(t, testConfig)
	t.Setenv("PIISCAN_TEST_PASSWORD", "s3cret")
	validateSkipConnect = true

	require.NoError(t, runValidate(validateCmd, nil))

	out := env.out.String()
	assert.Contains(t, out, "✅ Configuration is valid")
	assert.Contains(t, out, "connectivity not checked")
	assert.Contains(t, out, "scanner:****@tcp(localhost:3306)/")
	assert.NotContains(t, out, "s3cret")
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	env := newCLIEnv(t, strings.Replace(testConfig, "sample_size: 10", "sample_size: 5", 1))
	validateSkipConnect = true

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, env.out.String(), "❌ scan.sample_size")
}

func TestRunValidate_Connected(t *testing.T) {
	env := newCLIEnv(t, testConfig)
	mock := mockDatabase(t)
	containers = []string{"shop", "missing"}

	mock.ExpectQuery("SHOW DATABASES").
		WillReturnRows(sqlmock.NewRows([]string{"Database"}).AddRow("mysql").AddRow("shop"))

	require.NoError(t, runValidate(validateCmd, nil))

	out := env.out.String()
	assert.Contains(t, out, "✅ Connected")
	assert.Contains(t, out, "✅ 1 user containers visible (1 system skipped)")
	assert.Contains(t, out, `Container "missing" not found`)
	assert.NotContains(t, out, `Container "shop" not found`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunValidate_ConnectionFailure(t *testing.T) {
	env := newCLIEnv(t, testConfig)
	openDatabase = func(context.Context, *config.Config, *logger.Logger) (*sql.DB, func() error, error) {
		return nil, nil, &database.ConnectivityError{Kind: database.KindBadCredentials, Engine: "mysql", Err: errors.New("Access denied")}
	}

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, env.out.String(), "❌ Connection failed: bad_credentials")
}
