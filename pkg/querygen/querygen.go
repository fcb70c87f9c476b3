// Package querygen renders CREATE TABLE, INSERT and WHERE statements from
// logical column definitions, using a dialect for quoting and a type
// registry for native names, defaults and literals.
package querygen

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/dialect"
)

// Types resolves logical type keys for a database.
type Types interface {
	NativeName(key string, opts datatypes.Options, ro *datatypes.RenderOptions) (string, error)
	DefaultValue(key string) (any, error)
	Literal(key string, opts datatypes.Options, v any, ro *datatypes.RenderOptions) (string, error)
}

// Errors returned for statements that would render without content.
var (
	ErrNoColumns = errors.New("no columns")
	ErrNoRows    = errors.New("no rows")
)

// Column describes one table column.
type Column struct {
	Name     string
	Type     string
	Options  datatypes.Options
	Nullable bool
	// Default is rendered as the column's DEFAULT when set.
	Default any
	Comment string
}

// Table describes a table to create.
type Table struct {
	Name        string
	Columns     []Column
	Engine      string
	OrderBy     []string
	PartitionBy string
	IfNotExists bool
}

// Generator renders statements for one dialect.
type Generator struct {
	dialect  *dialect.Dialect
	types    Types
	timezone string
}

// New creates a generator. timezone is used when rendering date literals.
func New(d *dialect.Dialect, types Types, timezone string) *Generator {
	return &Generator{dialect: d, types: types, timezone: timezone}
}

func (g *Generator) renderOptions(operation string) *datatypes.RenderOptions {
	return g.dialect.RenderOptions(operation, g.timezone)
}

// ColumnType returns the DDL type of c, wrapped in Nullable when needed.
func (g *Generator) ColumnType(c Column) (string, error) {
	name, err := g.types.NativeName(c.Type, c.Options, g.renderOptions("create"))
	if err != nil {
		return "", fmt.Errorf("column %s: %w", c.Name, err)
	}
	if c.Nullable {
		name = "Nullable(" + name + ")"
	}
	return name, nil
}

// CreateTable renders a CREATE TABLE statement. The engine defaults to
// MergeTree ordered by tuple().
func (g *Generator) CreateTable(t Table) (string, error) {
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("table %s: %w", t.Name, ErrNoColumns)
	}

	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ, err := g.ColumnType(c)
		if err != nil {
			return "", err
		}
		def := g.dialect.QuoteIdentifier(c.Name) + " " + typ
		if c.Default != nil {
			lit, err := g.types.Literal(c.Type, c.Options, c.Default, g.renderOptions("create"))
			if err != nil {
				return "", fmt.Errorf("column %s default: %w", c.Name, err)
			}
			def += " DEFAULT " + lit
		}
		if c.Comment != "" {
			def += " COMMENT " + g.dialect.Escape(c.Comment)
		}
		defs[i] = def
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if t.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(g.dialect.QuoteTable(t.Name))
	b.WriteString(" (")
	b.WriteString(strings.Join(defs, ", "))
	b.WriteString(") ENGINE = ")

	engine := t.Engine
	if engine == "" {
		engine = "MergeTree()"
	}
	b.WriteString(engine)

	if t.PartitionBy != "" {
		b.WriteString(" PARTITION BY ")
		b.WriteString(t.PartitionBy)
	}

	b.WriteString(" ORDER BY ")
	switch len(t.OrderBy) {
	case 0:
		b.WriteString("tuple()")
	case 1:
		b.WriteString(g.dialect.QuoteIdentifier(t.OrderBy[0]))
	default:
		quoted := make([]string, len(t.OrderBy))
		for i, o := range t.OrderBy {
			quoted[i] = g.dialect.QuoteIdentifier(o)
		}
		b.WriteString("(" + strings.Join(quoted, ", ") + ")")
	}
	return b.String(), nil
}

// InsertOptions tunes INSERT rendering.
type InsertOptions struct {
	// Ignore emits the dialect's IGNORE keyword when it declares one.
	Ignore bool
}

// Insert renders a multi-row INSERT. Values missing from a row take the
// column type's default, or NULL for nullable columns.
func (g *Generator) Insert(table string, columns []Column, rows []map[string]any, opts InsertOptions) (string, error) {
	var b strings.Builder
	b.WriteString("INSERT")
	if opts.Ignore {
		b.WriteString(g.dialect.Supports.Ignore)
	}
	b.WriteString(" INTO ")
	b.WriteString(g.dialect.QuoteTable(table))

	if len(columns) == 0 {
		if !g.dialect.Supports.ValuesEmpty {
			return "", fmt.Errorf("table %s: %w", table, ErrNoColumns)
		}
		b.WriteString(" VALUES ()")
		return b.String(), nil
	}

	if len(rows) == 0 {
		return "", fmt.Errorf("table %s: %w", table, ErrNoRows)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = g.dialect.QuoteIdentifier(c.Name)
	}
	b.WriteString(" (" + strings.Join(names, ", ") + ") VALUES ")

	ro := g.renderOptions("insert")
	tuples := make([]string, len(rows))
	for r, row := range rows {
		values := make([]string, len(columns))
		for i, c := range columns {
			v, ok := row[c.Name]
			if !ok {
				if c.Nullable {
					values[i] = "NULL"
					continue
				}
				def, err := g.types.DefaultValue(c.Type)
				if err != nil {
					return "", fmt.Errorf("column %s: %w", c.Name, err)
				}
				v = def
			}
			lit, err := g.types.Literal(c.Type, c.Options, v, ro)
			if err != nil {
				return "", fmt.Errorf("row %d column %s: %w", r, c.Name, err)
			}
			values[i] = lit
		}
		tuples[r] = "(" + strings.Join(values, ", ") + ")"
	}
	b.WriteString(strings.Join(tuples, ", "))
	return b.String(), nil
}

var comparisons = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "NOT LIKE": true,
}

// Where renders a single predicate on column c. A nil value with = or !=
// becomes IS NULL / IS NOT NULL; IN and NOT IN take a sequence.
func (g *Generator) Where(c Column, op string, v any) (string, error) {
	op = strings.ToUpper(strings.TrimSpace(op))
	col := g.dialect.QuoteIdentifier(c.Name)
	ro := g.renderOptions(datatypes.OperationWhere)

	switch {
	case v == nil && op == "=":
		return col + " IS NULL", nil
	case v == nil && (op == "!=" || op == "<>"):
		return col + " IS NOT NULL", nil
	case op == "IN" || op == "NOT IN":
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return "", fmt.Errorf("%s needs a sequence, got %T", op, v)
		}
		items := make([]string, rv.Len())
		for i := range items {
			lit, err := g.types.Literal(c.Type, c.Options, rv.Index(i).Interface(), ro)
			if err != nil {
				return "", err
			}
			items[i] = lit
		}
		return col + " " + op + " (" + strings.Join(items, ", ") + ")", nil
	case comparisons[op]:
		lit, err := g.types.Literal(c.Type, c.Options, v, ro)
		if err != nil {
			return "", err
		}
		return col + " " + op + " " + lit, nil
	default:
		return "", fmt.Errorf("unsupported operator %q", op)
	}
}

// WhereAll joins the predicates for every entry of values with AND, in
// column name order.
func (g *Generator) WhereAll(columns []Column, values map[string]any) (string, error) {
	byName := make(map[string]Column, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	preds := make([]string, len(names))
	for i, name := range names {
		c, ok := byName[name]
		if !ok {
			c = Column{Name: name, Type: datatypes.KeyString}
		}
		p, err := g.Where(c, "=", values[name])
		if err != nil {
			return "", err
		}
		preds[i] = p
	}
	return strings.Join(preds, " AND "), nil
}
