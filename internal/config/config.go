// Package config provides configuration structures and loading for piiscan.
package config

import "time"

// Supported source engines.
const (
	EngineMySQL  = "mysql"
	EngineOracle = "oracle"
)

// Sample size bounds accepted by the engine.
const (
	MinSampleSize = 10
	MaxSampleSize = 1000
)

// Config represents the complete application configuration.
type Config struct {
	Source   DatabaseConfig `yaml:"source" mapstructure:"source"`
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Patterns PatternConfig  `yaml:"patterns" mapstructure:"patterns"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents the connection to the database being scanned.
type DatabaseConfig struct {
	Engine             string        `yaml:"engine" mapstructure:"engine"` // mysql or oracle
	Host               string        `yaml:"host" mapstructure:"host"`
	Port               int           `yaml:"port" mapstructure:"port"`
	User               string        `yaml:"user" mapstructure:"user"`
	Password           string        `yaml:"password" mapstructure:"password"`
	Database           string        `yaml:"database" mapstructure:"database"`         // MySQL default database (optional)
	ServiceName        string        `yaml:"service_name" mapstructure:"service_name"` // Oracle service name or SID
	TLS                string        `yaml:"tls" mapstructure:"tls"`                   // disable, preferred, required
	MaxConnections     int           `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	ReadTimeout        time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
}

// ScanConfig controls sampling and scheduling of a scan run.
type ScanConfig struct {
	SampleSize        int           `yaml:"sample_size" mapstructure:"sample_size"`
	Workers           int           `yaml:"workers" mapstructure:"workers"`
	Containers        []string      `yaml:"containers" mapstructure:"containers"`                 // empty means all user containers
	ExcludeContainers []string      `yaml:"exclude_containers" mapstructure:"exclude_containers"` // added to the system denylist
	QueryTimeout      time.Duration `yaml:"query_timeout" mapstructure:"query_timeout"`
}

// PatternConfig extends the built-in pattern library.
type PatternConfig struct {
	Extra    map[string]string `yaml:"extra" mapstructure:"extra"` // category -> regular expression
	Keywords []string          `yaml:"keywords" mapstructure:"keywords"`
}

// OutputConfig controls where scan documents are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Engine:             EngineMySQL,
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			ConnectTimeout:     10 * time.Second,
			ReadTimeout:        60 * time.Second,
		},
		Scan: ScanConfig{
			SampleSize:   100,
			Workers:      1,
			QueryTimeout: 60 * time.Second,
		},
		Output: OutputConfig{
			Dir:    ".",
			Pretty: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// DefaultPort returns the conventional listener port for an engine.
func DefaultPort(engine string) int {
	if engine == EngineOracle {
		return 1521
	}
	return 3306
}

// ClampSampleSize bounds a sample size to the accepted range.
func ClampSampleSize(n int) int {
	if n < MinSampleSize {
		return MinSampleSize
	}
	if n > MaxSampleSize {
		return MaxSampleSize
	}
	return n
}
