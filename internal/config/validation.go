package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateSource()...)
	errors = append(errors, c.validateScan()...)
	errors = append(errors, c.validatePatterns()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateSource() ValidationErrors {
	var errors ValidationErrors
	db := &c.Source

	switch db.Engine {
	case EngineMySQL, EngineOracle:
	default:
		errors = append(errors, ValidationError{
			Field:   "source.engine",
			Message: "engine must be 'mysql' or 'oracle'",
		})
	}

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "source.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "source.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "source.user",
			Message: "user is required",
		})
	}

	if db.Engine == EngineOracle && db.ServiceName == "" {
		errors = append(errors, ValidationError{
			Field:   "source.service_name",
			Message: "service_name is required for oracle",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "source.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	if db.ConnectTimeout < 0 || db.ReadTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.timeouts",
			Message: "connect_timeout and read_timeout cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateScan() ValidationErrors {
	var errors ValidationErrors

	if c.Scan.SampleSize < MinSampleSize || c.Scan.SampleSize > MaxSampleSize {
		errors = append(errors, ValidationError{
			Field:   "scan.sample_size",
			Message: fmt.Sprintf("sample_size must be between %d and %d", MinSampleSize, MaxSampleSize),
		})
	}

	if c.Scan.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "scan.workers",
			Message: "workers must be at least 1",
		})
	}

	if c.Scan.Workers > 1 && c.Source.MaxConnections > 0 && c.Scan.Workers > c.Source.MaxConnections {
		errors = append(errors, ValidationError{
			Field:   "scan.workers",
			Message: "workers cannot exceed source.max_connections",
		})
	}

	if c.Scan.QueryTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "scan.query_timeout",
			Message: "query_timeout cannot be negative",
		})
	}

	return errors
}

func (c *Config) validatePatterns() ValidationErrors {
	var errors ValidationErrors

	for name, expr := range c.Patterns.Extra {
		if name == "" {
			errors = append(errors, ValidationError{
				Field:   "patterns.extra",
				Message: "pattern category name cannot be empty",
			})
			continue
		}
		if _, err := regexp.Compile(expr); err != nil {
			errors = append(errors, ValidationError{
				Field:   "patterns.extra." + name,
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	for i, kw := range c.Patterns.Keywords {
		if strings.TrimSpace(kw) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("patterns.keywords[%d]", i),
				Message: "keyword cannot be empty",
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
