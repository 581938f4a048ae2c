package database

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/godror/godror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/logger"
)

func mysqlSource() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Engine:         config.EngineMySQL,
		Host:           "localhost",
		Port:           3306,
		User:           "root",
		Password:       "p@ss!w0rd#123",
		Database:       "shop",
		TLS:            "preferred",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    time.Minute,
	}
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn := BuildMySQLDSN(mysqlSource())

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "p@ss!w0rd#123", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "localhost:3306", parsed.Addr)
	assert.Equal(t, "shop", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, 10*time.Second, parsed.Timeout)
	assert.Equal(t, time.Minute, parsed.ReadTimeout)
	assert.NotContains(t, dsn, "multiStatements")
}

func TestBuildMySQLDSN_TLSVariants(t *testing.T) {
	tests := []struct {
		tls      string
		expected string
	}{
		{"preferred", "tls=preferred"},
		{"", "tls=preferred"},
		{"disable", "tls=false"},
		{"required", "tls=true"},
	}

	for _, tt := range tests {
		t.Run("tls="+tt.tls, func(t *testing.T) {
			cfg := mysqlSource()
			cfg.TLS = tt.tls
			assert.Contains(t, BuildMySQLDSN(cfg), tt.expected)
		})
	}
}

func TestBuildMySQLDSN_IPv6AndNoDatabase(t *testing.T) {
	cfg := mysqlSource()
	cfg.Host = "::1"
	cfg.Database = ""

	parsed, err := mysql.ParseDSN(BuildMySQLDSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "[::1]:3306", parsed.Addr)
	assert.Empty(t, parsed.DBName)
}

func TestBuildOracleDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Engine:      config.EngineOracle,
		Host:        "ora.internal",
		Port:        1521,
		User:        "scanner",
		Password:    "tiger",
		ServiceName: "ORCLPDB1",
	}

	p, err := godror.ParseDSN(BuildOracleDSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "scanner", p.Username)
	assert.Equal(t, "ora.internal:1521/ORCLPDB1", p.ConnectString)
	assert.Equal(t, "tiger", p.Password.Secret())
}

func TestDSN_Engines(t *testing.T) {
	driver, _, err := DSN(mysqlSource())
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, driver)

	driver, _, err = DSN(&config.DatabaseConfig{Engine: config.EngineOracle, Host: "h", Port: 1521, ServiceName: "s"})
	require.NoError(t, err)
	assert.Equal(t, DriverOracle, driver)

	_, _, err = DSN(&config.DatabaseConfig{Engine: "db2"})
	assert.Error(t, err)
}

func TestRedactedDSN(t *testing.T) {
	cfg := mysqlSource()
	redacted := RedactedDSN(cfg)
	assert.NotContains(t, redacted, cfg.Password)
	assert.Contains(t, redacted, "root:****@tcp(localhost:3306)/shop")

	ora := &config.DatabaseConfig{Engine: config.EngineOracle, Host: "ora", Port: 1521, User: "scanner", Password: "tiger", ServiceName: "XE"}
	assert.Equal(t, "scanner@ora:1521/XE", RedactedDSN(ora))
}

func TestDiagnose(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route")}

	tests := []struct {
		name string
		err  error
		kind ConnectivityKind
		code int
	}{
		{"mysql access denied", &mysql.MySQLError{Number: 1045, Message: "Access denied for user 'root'"}, KindBadCredentials, 1045},
		{"mysql unknown database", &mysql.MySQLError{Number: 1049, Message: "Unknown database 'nope'"}, KindUnknownDatabase, 1049},
		{"mysql other server error", &mysql.MySQLError{Number: 1226, Message: "too many connections"}, KindUnknown, 1226},
		{"mysql client 2003 in message", errors.New("ERROR 2003 (HY000): Can't connect to MySQL server"), KindServerUnreachable, 2003},
		{"mysql client 2013 in message", errors.New("ERROR 2013: Lost connection to MySQL server during query"), KindTimeout, 2013},
		{"oracle listener", errors.New("ORA-12541: TNS:no listener"), KindServerUnreachable, 12541},
		{"oracle logon", errors.New("ORA-01017: invalid username/password; logon denied"), KindBadCredentials, 1017},
		{"oracle service", errors.New("ORA-12514: TNS:listener does not currently know of service"), KindUnknownDatabase, 12514},
		{"oracle connect timeout", errors.New("ORA-12170: TNS:Connect timeout occurred"), KindTimeout, 12170},
		{"context deadline", context.DeadlineExceeded, KindTimeout, 0},
		{"wrapped deadline", errors.Join(errors.New("ping"), context.DeadlineExceeded), KindTimeout, 0},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, KindServerUnreachable, 0},
		{"dial error", dialErr, KindServerUnreachable, 0},
		{"dns error", &net.DNSError{Err: "no such host", Name: "nope.invalid"}, KindServerUnreachable, 0},
		{"unrelated", errors.New("something odd"), KindUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diagnose("mysql", "localhost:3306", tt.err)
			require.NotNil(t, d)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.code, d.Code)
			assert.ErrorIs(t, d, tt.err)
		})
	}
}

func TestDiagnose_NilAndIdempotent(t *testing.T) {
	assert.Nil(t, Diagnose("mysql", "", nil))

	first := Diagnose("mysql", "db:3306", &mysql.MySQLError{Number: 1045})
	assert.Same(t, first, Diagnose("mysql", "db:3306", first))

	assert.Contains(t, first.Error(), "db:3306")
	assert.Contains(t, first.Error(), "bad_credentials")
	assert.Contains(t, first.Error(), "check user and password")
}

// mockOpener hands out one sqlmock pool per connection attempt.
type mockOpener struct {
	t     *testing.T
	pings []error
	calls int
}

func (o *mockOpener) open(driver, dsn string) (*sql.DB, error) {
	require.Less(o.t, o.calls, len(o.pings), "unexpected connection attempt")
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(o.t, err)

	exp := mock.ExpectPing()
	if pingErr := o.pings[o.calls]; pingErr != nil {
		exp.WillReturnError(pingErr)
	}
	o.calls++
	return db, nil
}

func testManager(t *testing.T, pings ...error) (*Manager, *mockOpener) {
	cfg := config.DefaultConfig()
	cfg.Source.Host = "localhost"
	cfg.Source.User = "root"
	cfg.Source.Password = "secret"

	m := NewManager(cfg, logger.NewNop())
	m.backoff = time.Millisecond
	o := &mockOpener{t: t, pings: pings}
	m.open = o.open
	return m, o
}

func TestManager_Connect(t *testing.T) {
	m, o := testManager(t, nil)

	require.NoError(t, m.Connect(context.Background()))
	require.NotNil(t, m.Source)
	assert.Equal(t, 1, o.calls)
	assert.NoError(t, m.Close())
}

func TestManager_ConnectRetries(t *testing.T) {
	m, o := testManager(t, errors.New("dial tcp: connection refused"), nil)

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, 2, o.calls)
	assert.NoError(t, m.Close())
}

func TestManager_ConnectGivesUp(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:3306: connection refused")
	m, o := testManager(t, refused, refused, refused)

	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, o.calls)

	var ce *ConnectivityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindServerUnreachable, ce.Kind)
	assert.Equal(t, "localhost:3306", ce.Addr)
	assert.Nil(t, m.Source)
	assert.NotContains(t, err.Error(), "secret")
}

func TestManager_LogsNeverContainPassword(t *testing.T) {
	for _, engine := range []string{config.EngineMySQL, config.EngineOracle} {
		t.Run(engine, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			refused := errors.New("dial tcp 127.0.0.1:3306: connection refused")

			m, _ := testManager(t, refused, refused, refused)
			m.config.Source.Engine = engine
			m.config.Source.ServiceName = "ORCLPDB1"
			m.config.Source.Password = "s3cr3t-pw"
			m.logger = logger.FromZap(zap.New(core))

			err := m.Connect(context.Background())
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "s3cr3t-pw")

			require.NotEmpty(t, logs.All())
			for _, e := range logs.All() {
				assert.NotContains(t, e.Message, "s3cr3t-pw")
				for _, f := range e.Context {
					assert.NotContains(t, f.String, "s3cr3t-pw")
				}
			}
			assert.Equal(t, 1, logs.FilterMessageSnippet("Connecting to").Len())
		})
	}
}

func TestManager_BadCredentialsAreNotRetried(t *testing.T) {
	m, o := testManager(t, &mysql.MySQLError{Number: 1045, Message: "Access denied for user 'root'@'localhost'"})

	err := m.Connect(context.Background())
	var ce *ConnectivityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindBadCredentials, ce.Kind)
	assert.Equal(t, 1, o.calls)
}

func TestManager_ConnectCancelled(t *testing.T) {
	m, _ := testManager(t, errors.New("connection refused"), nil)
	m.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_Unsupported(t *testing.T) {
	m, _ := testManager(t)
	m.config.Source.Engine = "db2"
	m.maxRetries = 1

	assert.Error(t, m.Connect(context.Background()))
}

func TestManager_WithoutConnect(t *testing.T) {
	m := NewManager(config.DefaultConfig(), nil)
	assert.NoError(t, m.Close())
	assert.Error(t, m.Ping(context.Background()))

	assert.Error(t, NewManager(nil, nil).Connect(context.Background()))
}
