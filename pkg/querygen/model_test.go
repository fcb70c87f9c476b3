package querygen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
)

const eventsModel = `
table: events
order_by: [id]
if_not_exists: true
columns:
  - name: id
    type: integer
    unsigned: true
  - name: status
    type: ENUM16
    values: [new, done]
  - name: tags
    type: ARRAY
    element:
      type: STRING
  - name: price
    type: DECIMAL
    precision: 10
    scale: 2
    default: 0
`

func TestParseModel(t *testing.T) {
	m, err := ParseModel([]byte(eventsModel))
	require.NoError(t, err)

	table, err := m.ToTable()
	require.NoError(t, err)

	assert.Equal(t, "events", table.Name)
	assert.True(t, table.IfNotExists)
	assert.Equal(t, []string{"id"}, table.OrderBy)
	require.Len(t, table.Columns, 4)
	assert.Equal(t, datatypes.KeyInteger, table.Columns[0].Type)
	assert.True(t, table.Columns[0].Options.Unsigned)
	assert.Equal(t, []string{"new", "done"}, table.Columns[1].Options.Values)
	require.NotNil(t, table.Columns[2].Options.Element)
	assert.Equal(t, datatypes.KeyString, table.Columns[2].Options.Element.Key())
	assert.Equal(t, 0, table.Columns[3].Default)

	sql, err := newGenerator("").CreateTable(table)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `events` ("+
		"`id` UInt32, `status` Enum16('new' = 1, 'done' = 2), `tags` Array(String), `price` DECIMAL(10,2) DEFAULT 0"+
		") ENGINE = MergeTree() ORDER BY `id`", sql)
}

func TestParseModel_Errors(t *testing.T) {
	_, err := ParseModel([]byte("columns: []"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table name")

	_, err = ParseModel([]byte("table: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse model")

	m, err := ParseModel([]byte("table: t\ncolumns:\n  - type: STRING\n"))
	require.NoError(t, err)
	_, err = m.ToTable()
	assert.Contains(t, err.Error(), "column 1 has no name")

	m, err = ParseModel([]byte("table: t\ncolumns:\n  - name: a\n    type: ARRAY\n    element:\n      type: POINT\n"))
	require.NoError(t, err)
	_, err = m.ToTable()
	assert.ErrorIs(t, err, datatypes.ErrUnknownType)
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(eventsModel), 0o600))

	m, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, "events", m.Table)

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
