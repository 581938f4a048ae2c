// Package estimate predicts the memory footprint and duration of a table
// scan from catalog metadata alone. Everything here is pure: no I/O, no
// clocks, no shared state.
package estimate

import "strings"

// Model constants shared by every backend.
const (
	// OverheadFactor inflates raw per-row bytes for in-memory bookkeeping.
	OverheadFactor = 1.3
	// MaxTextColumnBytes caps the size used for a declared text length.
	MaxTextColumnBytes = 255
	// DefaultColumnBytes is used for types missing from a profile's size table.
	DefaultColumnBytes = 8
	// RegexSpeedFactor is the fraction of base throughput left after regex matching.
	RegexSpeedFactor = 0.3
	// TextColumnPenalty slows pattern scanning per text column.
	TextColumnPenalty = 0.1
	// PatternScanFloor keeps the pattern term positive for tiny samples.
	PatternScanFloor = 0.01
)

const bytesPerMB = 1024 * 1024

// MySQL throughput model.
const (
	MySQLBaseThroughput     = 50000
	MySQLQueryDivisor       = 1_000_000
	MySQLQueryFloor         = 0.1
	MySQLMaterializeDivisor = 100
	MySQLMaterializeFloor   = 0.05
)

// Oracle throughput model.
const (
	OracleBaseThroughput     = 45000
	OracleQueryDivisor       = 800_000
	OracleQueryFloor         = 0.2
	OracleMaterializeDivisor = 80
	OracleMaterializeFloor   = 0.05
)

// Profile holds the backend-specific constants of the cost model.
type Profile struct {
	Name               string
	Label              string  // engine label reported with estimates
	BaseThroughput     float64 // sampled rows per second before regex cost
	QueryDivisor       float64 // rows per second of catalog/query work
	QueryFloor         float64
	MaterializeDivisor float64 // MB per second of materialization
	MaterializeFloor   float64
	TypeSizes          map[string]int // base type -> bytes
	Families           []Family       // suffix fallback for types missing from TypeSizes
}

// Family sizes every base type ending in Suffix, such as mediumtext or
// longblob.
type Family struct {
	Suffix string
	Bytes  int
}

// MySQL is the cost profile for MySQL sources.
var MySQL = Profile{
	Name:               "mysql",
	Label:              "MySQL",
	BaseThroughput:     MySQLBaseThroughput,
	QueryDivisor:       MySQLQueryDivisor,
	QueryFloor:         MySQLQueryFloor,
	MaterializeDivisor: MySQLMaterializeDivisor,
	MaterializeFloor:   MySQLMaterializeFloor,
	TypeSizes: map[string]int{
		"int": 8, "bigint": 8, "smallint": 4, "tinyint": 1,
		"float": 8, "double": 8, "decimal": 16,
		"varchar": 50, "text": 200, "longtext": 1000,
		"tinytext": 200, "mediumtext": 200,
		"char": 20, "date": 8, "datetime": 8, "timestamp": 8,
		"json": 100, "blob": 500, "binary": 50,
		"tinyblob": 500, "mediumblob": 500, "longblob": 500,
	},
	Families: []Family{
		{Suffix: "text", Bytes: 200},
		{Suffix: "blob", Bytes: 500},
		{Suffix: "int", Bytes: 8},
		{Suffix: "binary", Bytes: 50},
	},
}

// Oracle is the cost profile for Oracle sources.
var Oracle = Profile{
	Name:               "oracle",
	Label:              "Oracle",
	BaseThroughput:     OracleBaseThroughput,
	QueryDivisor:       OracleQueryDivisor,
	QueryFloor:         OracleQueryFloor,
	MaterializeDivisor: OracleMaterializeDivisor,
	MaterializeFloor:   OracleMaterializeFloor,
	TypeSizes: map[string]int{
		"number": 8, "integer": 8, "float": 8,
		"varchar2": 50, "char": 20, "clob": 500, "long": 200,
		"date": 8, "timestamp": 12,
		"raw": 50, "blob": 500, "long raw": 200,
	},
	Families: []Family{
		{Suffix: "clob", Bytes: 500},
		{Suffix: "raw", Bytes: 50},
	},
}

// ProfileFor returns the profile for an engine name, defaulting to MySQL.
func ProfileFor(engine string) Profile {
	if strings.EqualFold(engine, "oracle") {
		return Oracle
	}
	return MySQL
}
