// Package types contains shared types used across multiple packages to avoid import cycles.
package types

// ColumnKind is the storage class of a column, decided once from the
// declared catalog type and consumed by estimation and scanning.
type ColumnKind string

const (
	KindText    ColumnKind = "text"
	KindNumeric ColumnKind = "numeric"
	KindDate    ColumnKind = "date"
	KindBinary  ColumnKind = "binary"
	KindOther   ColumnKind = "other"
)

// ColumnMetadata describes one physical column as read from the catalog.
type ColumnMetadata struct {
	Name         string     `json:"name"`
	DeclaredType string     `json:"type"`
	Nullable     bool       `json:"nullable"`
	Length       *int64     `json:"length,omitempty"`
	Precision    *int64     `json:"precision,omitempty"`
	Scale        *int64     `json:"scale,omitempty"`
	Kind         ColumnKind `json:"kind"`
}

// TableHandle identifies a table and carries its point-in-time row count
// and column layout.
type TableHandle struct {
	Container string           `json:"container"`
	Name      string           `json:"table"`
	RowCount  int64            `json:"total_rows"`
	Columns   []ColumnMetadata `json:"columns"`
}

// Column returns the metadata for the named column.
func (t *TableHandle) Column(name string) (ColumnMetadata, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnMetadata{}, false
}

// QualifiedName returns "container.table" for logs and messages.
func (t *TableHandle) QualifiedName() string {
	return t.Container + "." + t.Name
}

// Int64Ptr is a small helper for optional catalog attributes.
func Int64Ptr(v int64) *int64 {
	return &v
}
