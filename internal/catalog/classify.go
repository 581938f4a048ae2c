package catalog

import (
	"strings"

	"github.com/dbsmedya/piiscan/internal/types"
)

var kindByBaseType = map[string]types.ColumnKind{
	// text
	"char": types.KindText, "varchar": types.KindText, "tinytext": types.KindText,
	"text": types.KindText, "mediumtext": types.KindText, "longtext": types.KindText,
	"enum": types.KindText, "set": types.KindText, "json": types.KindText,
	"nchar": types.KindText, "nvarchar": types.KindText, "varchar2": types.KindText,
	"nvarchar2": types.KindText, "clob": types.KindText, "nclob": types.KindText,
	"long": types.KindText, "xmltype": types.KindText, "rowid": types.KindText,

	// numeric
	"int": types.KindNumeric, "integer": types.KindNumeric, "bigint": types.KindNumeric,
	"smallint": types.KindNumeric, "tinyint": types.KindNumeric, "mediumint": types.KindNumeric,
	"float": types.KindNumeric, "double": types.KindNumeric, "real": types.KindNumeric,
	"decimal": types.KindNumeric, "numeric": types.KindNumeric, "bit": types.KindNumeric,
	"number": types.KindNumeric, "binary_float": types.KindNumeric, "binary_double": types.KindNumeric,

	// date
	"date": types.KindDate, "datetime": types.KindDate, "timestamp": types.KindDate,
	"time": types.KindDate, "year": types.KindDate, "interval": types.KindDate,

	// binary
	"binary": types.KindBinary, "varbinary": types.KindBinary, "blob": types.KindBinary,
	"tinyblob": types.KindBinary, "mediumblob": types.KindBinary, "longblob": types.KindBinary,
	"raw": types.KindBinary, "long raw": types.KindBinary, "bfile": types.KindBinary,
}

// BaseType strips length, precision and modifiers from a declared type:
// "varchar(100)" -> "varchar", "int(11) unsigned" -> "int",
// "TIMESTAMP(6) WITH TIME ZONE" -> "timestamp", "LONG RAW" -> "long raw".
func BaseType(declared string) string {
	t := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	if t == "long raw" || t == "double precision" {
		return t
	}
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = t[:i]
	}
	return t
}

// Classify maps a declared catalog type to its storage kind. The same
// table serves both engines since their type names do not collide in
// meaning.
func Classify(declared string) types.ColumnKind {
	base := BaseType(declared)
	if base == "double precision" {
		return types.KindNumeric
	}
	if k, ok := kindByBaseType[base]; ok {
		return k
	}
	return types.KindOther
}
