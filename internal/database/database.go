// Package database provides connection management for the MySQL and
// Oracle servers piiscan reads from.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/godror/godror"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/logger"
)

// Driver names registered with database/sql.
const (
	DriverMySQL  = "mysql"
	DriverOracle = "godror"
)

const redactedPassword = "****"

// Manager owns the connection pool to the scanned server.
type Manager struct {
	Source *sql.DB
	config *config.Config
	logger *logger.Logger

	maxRetries int
	backoff    time.Duration
	open       func(driver, dsn string) (*sql.DB, error)
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.Config, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Manager{
		config:     cfg,
		logger:     log,
		maxRetries: 3,
		backoff:    time.Second,
		open:       sql.Open,
	}
}

// Connect opens and verifies the source pool. A failure after all retries
// is returned as a *ConnectivityError.
func (m *Manager) Connect(ctx context.Context) error {
	if m.config == nil {
		return fmt.Errorf("config is nil")
	}
	src := &m.config.Source

	db, err := m.connectWithRetry(ctx, src)
	if err != nil {
		return Diagnose(src.Engine, net.JoinHostPort(src.Host, strconv.Itoa(src.Port)), err)
	}
	m.Source = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	var err error
	backoff := m.backoff

	m.logger.Infof("Connecting to %s (%s)", RedactedDSN(cfg), cfg.Engine)

	for i := 0; i < m.maxRetries; i++ {
		var db *sql.DB
		db, err = m.connect(cfg)
		if err == nil {
			pingErr := db.PingContext(ctx)
			if pingErr == nil {
				return db, nil
			}
			_ = db.Close()
			err = pingErr
		}

		// Credentials and unknown databases will not fix themselves.
		if d := Diagnose(cfg.Engine, "", err); d.Kind == KindBadCredentials || d.Kind == KindUnknownDatabase {
			return nil, err
		}

		if i < m.maxRetries-1 {
			m.logger.Warnf("Connection attempt %d/%d failed: %v", i+1, m.maxRetries, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.maxRetries, err)
}

// connect creates the pool without touching the network.
func (m *Manager) connect(cfg *config.DatabaseConfig) (*sql.DB, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := m.open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// DSN returns the driver name and data source name for cfg's engine.
func DSN(cfg *config.DatabaseConfig) (driver, dsn string, err error) {
	switch cfg.Engine {
	case config.EngineMySQL, "":
		return DriverMySQL, BuildMySQLDSN(cfg), nil
	case config.EngineOracle:
		return DriverOracle, BuildOracleDSN(cfg), nil
	default:
		return "", "", fmt.Errorf("unsupported engine %q", cfg.Engine)
	}
}

// BuildMySQLDSN constructs a MySQL DSN from configuration.
func BuildMySQLDSN(cfg *config.DatabaseConfig) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c.DBName = cfg.Database
	c.ParseTime = true
	c.Timeout = cfg.ConnectTimeout
	c.ReadTimeout = cfg.ReadTimeout

	switch cfg.TLS {
	case "disable":
		c.TLSConfig = "false"
	case "required":
		c.TLSConfig = "true"
	default:
		c.TLSConfig = "preferred"
	}

	return c.FormatDSN()
}

// BuildOracleDSN constructs a godror connection string using the EZConnect
// form host:port/service_name.
func BuildOracleDSN(cfg *config.DatabaseConfig) string {
	var p godror.ConnectionParams
	p.Username = cfg.User
	p.Password = godror.NewPassword(cfg.Password)
	p.ConnectString = fmt.Sprintf("%s/%s", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), cfg.ServiceName)
	return p.StringWithPassword()
}

// RedactedDSN renders cfg's DSN with the password masked, for logs.
func RedactedDSN(cfg *config.DatabaseConfig) string {
	masked := *cfg
	if masked.Password != "" {
		masked.Password = redactedPassword
	}
	if masked.Engine == config.EngineOracle {
		return fmt.Sprintf("%s@%s:%d/%s", masked.User, masked.Host, masked.Port, masked.ServiceName)
	}
	_, dsn, err := DSN(&masked)
	if err != nil {
		return fmt.Sprintf("%s@%s:%d", masked.User, masked.Host, masked.Port)
	}
	return dsn
}

// Close closes the pool.
func (m *Manager) Close() error {
	if m.Source == nil {
		return nil
	}
	if err := m.Source.Close(); err != nil {
		return fmt.Errorf("source close: %w", err)
	}
	return nil
}

// Ping verifies the pool is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Source == nil {
		return fmt.Errorf("not connected")
	}
	if err := m.Source.PingContext(ctx); err != nil {
		return fmt.Errorf("source ping failed: %w", err)
	}
	return nil
}
