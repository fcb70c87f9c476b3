// Package dialect provides the ClickHouse SQL dialect definition.
// This package has no database driver dependencies, so tools that only
// render SQL can import it without pulling in the ClickHouse client.
package dialect

import (
	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/dialect"
)

func init() {
	dialect.Register(ClickHouse)
}

// clickhouseReservedWords contains keywords that break statements when
// used as bare identifiers.
var clickhouseReservedWords = []string{
	"all", "alter", "and", "any", "array", "as", "asc", "between", "by",
	"case", "cast", "create", "cross", "database", "default", "delete",
	"desc", "distinct", "drop", "else", "end", "engine", "exists", "false",
	"final", "format", "from", "full", "global", "group", "having", "if",
	"in", "index", "inner", "insert", "interval", "into", "is", "join",
	"key", "left", "like", "limit", "not", "null", "offset", "on", "or",
	"order", "outer", "partition", "prewhere", "primary", "right", "sample",
	"select", "settings", "table", "then", "to", "true", "union", "update",
	"using", "values", "when", "where", "with",
}

// clickhouseDataTypes lists the native type names the type registry emits.
var clickhouseDataTypes = []string{
	"String", "FixedString", "Int8", "Int16", "Int32", "Int64",
	"UInt8", "UInt16", "UInt32", "UInt64", "Float32", "Float64",
	"Decimal", "Date", "DateTime", "UUID", "Enum8", "Enum16", "Array",
}

// Capabilities returns the ClickHouse capability flags layered over the
// abstract defaults.
func Capabilities() dialect.Supports {
	s := dialect.AbstractSupports()
	s.ValuesEmpty = true
	s.LimitOnUpdate = false
	s.Ignore = " IGNORE"
	s.Lock = true
	s.ForShare = "LOCK IN SHARE MODE"
	s.Index = dialect.IndexSupport{
		Collate: false,
		Length:  true,
		Parser:  true,
		Type:    true,
		Using:   1,
	}
	s.Constraints.DropConstraint = false
	s.Constraints.Check = false
	s.IgnoreDuplicates = " IGNORE"
	s.UpdateOnDuplicate = false
	s.IndexViaAlter = true
	s.Numeric = true
	s.Geometry = true
	s.JSON = true
	s.Regexp = true
	return s
}

// ClickHouse is the ClickHouse dialect configuration.
var ClickHouse = dialect.NewDialect("clickhouse").
	Identifiers("`", "`", "``", core.NormCaseSensitive). // identifiers are case-sensitive
	DefaultSchema("default").
	PlaceholderStyle(core.PlaceholderQuestion).
	LiteralStyle(dialect.LiteralBackslash).
	WithSupports(Capabilities()).
	WithKeywords(clickhouseReservedWords...).
	WithDataTypes(clickhouseDataTypes...).
	WithReservedWords(clickhouseReservedWords...).
	Build()
