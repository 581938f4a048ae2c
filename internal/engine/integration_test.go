package engine

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/database"
	"github.com/dbsmedya/piiscan/internal/logger"
	"github.com/dbsmedya/piiscan/internal/types"
)

const mysqlTestImage = "mysql:8.0"

// startMySQL runs a throwaway MySQL server and returns a config pointing
// at it.
func startMySQL(t *testing.T) *config.Config {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        mysqlTestImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "test_password",
			"MYSQL_DATABASE":      "shop",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start test container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Source.Host = host
	cfg.Source.Port = port.Int()
	cfg.Source.User = "root"
	cfg.Source.Password = "test_password"
	cfg.Source.Database = "shop"
	cfg.Source.TLS = "disable"
	cfg.Scan.SampleSize = 10
	cfg.Scan.Workers = 2
	return cfg
}

// connect waits for the server to accept logins; the port opens before
// the entrypoint finishes initializing.
func connect(t *testing.T, cfg *config.Config) *sql.DB {
	t.Helper()

	var lastErr error
	deadline := time.Now().Add(90 * time.Second)
	for time.Now().Before(deadline) {
		m := database.NewManager(cfg, logger.NewNop())
		if lastErr = m.Connect(context.Background()); lastErr == nil {
			t.Cleanup(func() { _ = m.Close() })
			return m.Source
		}
		time.Sleep(2 * time.Second)
	}
	t.Fatalf("MySQL never became ready: %v", lastErr)
	return nil
}

func seedShop(t *testing.T, db *sql.DB) {
	t.Helper()

	stmts := []string{
		"CREATE TABLE shop.customers (id INT PRIMARY KEY, email VARCHAR(100), phone VARCHAR(20), note TEXT, created_at DATETIME)",
		"CREATE TABLE shop.archive (id INT PRIMARY KEY, payload VARCHAR(255))",
		"CREATE TABLE shop.orders (id INT PRIMARY KEY, status VARCHAR(20), amount DECIMAL(10,2))",
	}
	for i := 1; i <= 20; i++ {
		stmts = append(stmts, fmt.Sprintf(
			"INSERT INTO shop.customers VALUES (%d, 'user%02d@example.com', '010-1234-%04d', 'vip', NOW())", i, i, i))
	}
	for i := 1; i <= 5; i++ {
		stmts = append(stmts, fmt.Sprintf("INSERT INTO shop.orders VALUES (%d, 'paid', %d.50)", i, i))
	}

	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
}

func TestIntegration_MySQL(t *testing.T) {
	cfg := startMySQL(t)
	db := connect(t, cfg)
	seedShop(t, db)

	e, err := Build(cfg, db, logger.NewNop())
	require.NoError(t, err)

	user, system, err := e.ListContainers(context.Background())
	require.NoError(t, err)
	assert.Contains(t, user, "shop")
	assert.Contains(t, system, "mysql")
	assert.NotContains(t, user, "performance_schema")

	t.Run("preview", func(t *testing.T) {
		res, err := e.Preview(context.Background(), []string{"shop"})
		require.NoError(t, err)
		require.Len(t, res.Containers, 1)

		shop := res.Containers[0]
		assert.Equal(t, []string{"archive", "customers", "orders"}, shop.Tables.Keys())

		customers, _ := shop.Tables.Get("customers")
		assert.Equal(t, StatusScannable, customers.Status)
		assert.Equal(t, int64(20), customers.TotalRows)
		assert.Equal(t, 5, customers.TotalColumns)
		assert.Equal(t, 3, customers.Size.TextColumns)

		assert.Equal(t, 1, shop.Summary.EmptyTables)
		assert.Equal(t, 2, shop.Summary.ScannableTables)
	})

	t.Run("scan", func(t *testing.T) {
		res, err := e.Scan(context.Background(), []string{"shop"}, nil)
		require.NoError(t, err)
		require.Len(t, res.Containers, 1)
		assert.False(t, res.Cancelled)

		shop := res.Containers[0]
		customers, _ := shop.Tables.Get("customers")
		assert.Equal(t, types.SampleRandomLimit, customers.SamplingInfo.Method)
		assert.Equal(t, 10, customers.SamplingInfo.SampledRows)
		assert.Equal(t, 26, customers.PrivacyScore)
		assert.Equal(t, types.RiskHigh, customers.RiskLevel)

		email, ok := customers.Columns.Get("email")
		require.True(t, ok)
		require.NotNil(t, email.PatternScan)
		for _, v := range email.PatternScan.SampleValues {
			assert.Contains(t, v, "***@example.com")
		}

		created, _ := customers.Columns.Get("created_at")
		assert.Nil(t, created.PatternScan)

		archive, _ := shop.Tables.Get("archive")
		assert.Equal(t, types.RiskEmpty, archive.RiskLevel)

		orders, _ := shop.Tables.Get("orders")
		assert.Equal(t, types.SampleFull, orders.SamplingInfo.Method)
		assert.Equal(t, types.RiskLow, orders.RiskLevel)

		assert.Equal(t, 1, shop.Summary.HighRiskTables)
		assert.Equal(t, int64(25), shop.Summary.TotalDataRows)
	})
}
