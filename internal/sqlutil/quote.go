// Package sqlutil provides SQL utility functions for piiscan.
package sqlutil

import (
	"strings"
)

// Dialect selects the identifier quoting rules.
type Dialect int

const (
	MySQL Dialect = iota
	Oracle
)

// QuoteIdentifier quotes a MySQL identifier (table name, column name) with backticks.
// It escapes any existing backticks by doubling them.
// Example: "my_table" -> "`my_table`"
// Example: "my`table" -> "`my``table`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteOracleIdentifier quotes an Oracle identifier with double quotes.
// Quoted Oracle identifiers are case-sensitive, which is what we want for names
// read back from the data dictionary.
func QuoteOracleIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Quote quotes an identifier for the given dialect.
func Quote(d Dialect, name string) string {
	if d == Oracle {
		return QuoteOracleIdentifier(name)
	}
	return QuoteIdentifier(name)
}

// QualifiedName returns container.table with both parts quoted.
// Identifiers that are empty or contain NUL are rejected.
func QualifiedName(d Dialect, container, table string) (string, error) {
	for _, name := range []string{container, table} {
		if name == "" || strings.ContainsRune(name, 0) {
			return "", &InvalidIdentifierError{Name: name}
		}
	}
	return Quote(d, container) + "." + Quote(d, table), nil
}

// InvalidIdentifierError is returned when an identifier cannot be quoted safely.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + strings.ReplaceAll(e.Name, "\x00", `\0`) + " (must be non-empty and contain no NUL bytes)"
}
