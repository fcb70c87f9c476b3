package querygen

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
)

// Model is the YAML form of a table definition.
type Model struct {
	Table       string        `yaml:"table"`
	Engine      string        `yaml:"engine"`
	OrderBy     []string      `yaml:"order_by"`
	PartitionBy string        `yaml:"partition_by"`
	IfNotExists bool          `yaml:"if_not_exists"`
	Columns     []ColumnModel `yaml:"columns"`
}

// ColumnModel is the YAML form of a column or array element type.
type ColumnModel struct {
	Name      string       `yaml:"name"`
	Type      string       `yaml:"type"`
	Length    int          `yaml:"length"`
	Variant   string       `yaml:"variant"`
	Binary    bool         `yaml:"binary"`
	Precision int          `yaml:"precision"`
	Scale     int          `yaml:"scale"`
	Unsigned  bool         `yaml:"unsigned"`
	Zerofill  bool         `yaml:"zerofill"`
	Values    []string     `yaml:"values"`
	Element   *ColumnModel `yaml:"element"`
	Nullable  bool         `yaml:"nullable"`
	Default   any          `yaml:"default"`
	Comment   string       `yaml:"comment"`
}

// LoadModel reads a model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes a YAML model.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if m.Table == "" {
		return nil, fmt.Errorf("model has no table name")
	}
	return &m, nil
}

// ToTable converts the model into a Table.
func (m *Model) ToTable() (Table, error) {
	t := Table{
		Name:        m.Table,
		Engine:      m.Engine,
		OrderBy:     m.OrderBy,
		PartitionBy: m.PartitionBy,
		IfNotExists: m.IfNotExists,
		Columns:     make([]Column, len(m.Columns)),
	}
	for i, cm := range m.Columns {
		if cm.Name == "" {
			return Table{}, fmt.Errorf("column %d has no name", i+1)
		}
		opts, err := cm.options()
		if err != nil {
			return Table{}, fmt.Errorf("column %s: %w", cm.Name, err)
		}
		t.Columns[i] = Column{
			Name:     cm.Name,
			Type:     strings.ToUpper(cm.Type),
			Options:  opts,
			Nullable: cm.Nullable,
			Default:  cm.Default,
			Comment:  cm.Comment,
		}
	}
	return t, nil
}

func (cm *ColumnModel) options() (datatypes.Options, error) {
	opts := datatypes.Options{
		Length:    cm.Length,
		Variant:   cm.Variant,
		Binary:    cm.Binary,
		Precision: cm.Precision,
		Scale:     cm.Scale,
		Unsigned:  cm.Unsigned,
		Zerofill:  cm.Zerofill,
		Values:    cm.Values,
	}
	if cm.Element != nil {
		elemOpts, err := cm.Element.options()
		if err != nil {
			return opts, err
		}
		elem, err := datatypes.New(strings.ToUpper(cm.Element.Type), elemOpts)
		if err != nil {
			return opts, fmt.Errorf("array element: %w", err)
		}
		opts.Element = elem
	}
	return opts, nil
}
