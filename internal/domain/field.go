package domain

import "strings"

// DataType classifies a catalog field for aggregation and filter coercion.
type DataType string

// Catalog field data types.
const (
	TypeDecimal   DataType = "decimal"
	TypeInteger   DataType = "integer"
	TypeString    DataType = "string"
	TypeDate      DataType = "date"
	TypeBoolean   DataType = "boolean"
	TypeReference DataType = "reference"
)

// Numeric reports whether the type can be summed.
func (t DataType) Numeric() bool {
	return t == TypeDecimal || t == TypeInteger
}

// ParseDataType validates a stored data type string.
func ParseDataType(s string) (DataType, bool) {
	switch DataType(s) {
	case TypeDecimal, TypeInteger, TypeString, TypeDate, TypeBoolean, TypeReference:
		return DataType(s), true
	}
	return "", false
}

// FieldAddress is the closed storage address of a catalog field: either a
// column on the dataset's base table, or a column reached through exactly one
// named relation. It is constructed once at catalog-sync time; query
// execution never re-interprets raw key strings.
type FieldAddress struct {
	Relation string // empty for a direct column
	Column   string
}

// Direct reports whether the address points at the base table.
func (a FieldAddress) Direct() bool { return a.Relation == "" }

// ParseFieldAddress parses a source path of the form "column" or
// "relation__column". Deeper traversal is rejected; the catalog flattens
// anything beyond one hop at sync time.
func ParseFieldAddress(sourcePath string) (FieldAddress, error) {
	parts := strings.Split(sourcePath, "__")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return FieldAddress{}, ErrValidation("empty field source path")
		}
		return FieldAddress{Column: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return FieldAddress{}, ErrValidation("malformed field source path %q", sourcePath)
		}
		return FieldAddress{Relation: parts[0], Column: parts[1]}, nil
	default:
		return FieldAddress{}, ErrValidation("field source path %q traverses more than one relation", sourcePath)
	}
}

// FieldDescriptor is one enabled, queryable field from the catalog allowlist.
type FieldDescriptor struct {
	Key      string // "dataset.field" or "dataset.field__subfield", unique
	Label    string
	Dataset  string
	Address  FieldAddress
	DataType DataType
	Synonyms []string
	Enabled  bool
}
