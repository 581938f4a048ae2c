package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// Oracle configs that omit the port should not inherit the MySQL default.
	if engine := v.GetString("source.engine"); engine != "" && !v.IsSet("source.port") {
		cfg.Source.Port = DefaultPort(strings.ToLower(engine))
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	cfg.Source.Engine = strings.ToLower(cfg.Source.Engine)
	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	cfg.Source.Host = expandEnvVar(cfg.Source.Host)
	cfg.Source.User = expandEnvVar(cfg.Source.User)
	cfg.Source.Password = expandEnvVar(cfg.Source.Password)
	cfg.Source.Database = expandEnvVar(cfg.Source.Database)
	cfg.Source.ServiceName = expandEnvVar(cfg.Source.ServiceName)

	cfg.Output.Dir = expandEnvVar(cfg.Output.Dir)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// Overrides holds CLI flag values that take precedence over the config file.
// Zero values are ignored.
type Overrides struct {
	LogLevel   string
	LogFormat  string
	SampleSize int
	Workers    int
	Containers []string
	OutputDir  string
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.SampleSize > 0 {
		c.Scan.SampleSize = o.SampleSize
	}
	if o.Workers > 0 {
		c.Scan.Workers = o.Workers
	}
	if len(o.Containers) > 0 {
		c.Scan.Containers = o.Containers
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
}

// EngineLabel returns the human readable engine label used in scan documents.
func (c *Config) EngineLabel() string {
	if c.Source.Engine == EngineOracle {
		return "Oracle"
	}
	return "MySQL"
}
