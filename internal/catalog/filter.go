package catalog

import (
	"strings"
	"unicode"
)

// MySQLSystemDatabases are the built-in MySQL schemas.
var MySQLSystemDatabases = []string{
	"information_schema", "performance_schema", "mysql", "sys", "ndbinfo",
}

// OracleSystemSchemas are the Oracle-maintained owners skipped during enumeration.
var OracleSystemSchemas = []string{
	"SYS", "SYSTEM", "OUTLN", "DBSNMP", "APPQOSSYS", "WMSYS", "EXFSYS",
	"CTXSYS", "XDB", "ANONYMOUS", "OLAPSYS", "MDSYS", "ORDSYS", "FLOWS_FILES",
	"APEX_030200", "APEX_PUBLIC_USER", "SPATIAL_CSW_ADMIN_USR",
	"SPATIAL_WFS_ADMIN_USR", "PUBLIC",
}

var systemPrefixes = []string{
	"sys_", "system_", "mysql_", "info_", "perf_", "audit_", "log_", "monitor_", "temp_", "backup_",
}

var systemSuffixes = []string{
	"_sys", "_system", "_temp", "_tmp", "_backup", "_log", "_audit", "_monitor", "_test",
}

// SystemDenylist returns the built-in denylist for an engine.
func SystemDenylist(engine string) []string {
	if strings.EqualFold(engine, "oracle") {
		return append([]string(nil), OracleSystemSchemas...)
	}
	return append([]string(nil), MySQLSystemDatabases...)
}

// IsSystemContainer reports whether name is a built-in or system-like
// container. The denylist is matched case-insensitively; names that carry
// a system prefix or suffix, or consist only of digits, are also system.
func IsSystemContainer(name string, denylist []string) bool {
	lower := strings.ToLower(name)
	for _, d := range denylist {
		if strings.ToLower(d) == lower {
			return true
		}
	}
	for _, p := range systemPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	for _, s := range systemSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return isDigits(name)
}

// FilterSystemContainers splits names into user and system containers,
// preserving input order in both.
func FilterSystemContainers(names, denylist []string) (user, system []string) {
	for _, n := range names {
		if IsSystemContainer(n, denylist) {
			system = append(system, n)
		} else {
			user = append(user, n)
		}
	}
	return user, system
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
