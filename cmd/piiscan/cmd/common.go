package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/database"
	"github.com/dbsmedya/piiscan/internal/engine"
	"github.com/dbsmedya/piiscan/internal/logger"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

// useColor reports whether console output should be colored.
func useColor() bool {
	return !noColor && outputWriter == os.Stdout && color.SupportColor()
}

// openDatabase connects to the configured server and returns the pool
// with its close function. Tests replace it.
var openDatabase = func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sql.DB, func() error, error) {
	m := database.NewManager(cfg, log)
	if err := m.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return m.Source, m.Close, nil
}

// loadConfig loads the config file, applies CLI overrides and validates.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(GetCLIOverrides())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is everything a command needs once connected.
type session struct {
	cfg *config.Config
	eng *engine.Engine
	log *logger.Logger
	db  *sql.DB

	closeDB func() error
}

// Close closes the pool and flushes the logger.
func (s *session) Close() {
	if err := s.closeDB(); err != nil {
		s.log.Warnf("Failed to close database: %v", err)
	}
	_ = s.log.Sync()
}

// setup loads configuration, starts the logger, connects and builds the
// engine. Callers must Close the returned session.
func setup(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, closeDB, err := openDatabase(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	eng, err := engine.Build(cfg, db, log)
	if err != nil {
		_ = closeDB()
		_ = log.Sync()
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	return &session{cfg: cfg, eng: eng, log: log, db: db, closeDB: closeDB}, nil
}
