package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/dialect"
)

func TestClickHouseRegistered(t *testing.T) {
	d, ok := dialect.Get("clickhouse")
	require.True(t, ok)
	assert.Same(t, ClickHouse, d)
}

func TestClickHouseIdentifiers(t *testing.T) {
	assert.Equal(t, "`events`", ClickHouse.QuoteIdentifier("events"))
	assert.Equal(t, "EventDate", ClickHouse.NormalizeName("EventDate"))
	assert.Equal(t, "`order`", ClickHouse.QuoteIdentifierIfNeeded("order"))
	assert.Equal(t, "?", ClickHouse.FormatPlaceholder(2))
	assert.Equal(t, "default", ClickHouse.DefaultSchema)
	assert.Equal(t, `'O\'Brien'`, ClickHouse.Escape("O'Brien"))
}

func TestClickHouseCapabilities(t *testing.T) {
	s := ClickHouse.Supports

	assert.True(t, s.ValuesEmpty)
	assert.False(t, s.LimitOnUpdate)
	assert.Equal(t, " IGNORE", s.Ignore)
	assert.True(t, s.Lock)
	assert.Equal(t, "LOCK IN SHARE MODE", s.ForShare)
	assert.Equal(t, dialect.IndexSupport{Length: true, Parser: true, Type: true, Using: 1}, s.Index)
	assert.False(t, s.Constraints.DropConstraint)
	assert.False(t, s.Constraints.Check)
	assert.Equal(t, " IGNORE", s.IgnoreDuplicates)
	assert.False(t, s.UpdateOnDuplicate)
	assert.True(t, s.IndexViaAlter)
	assert.True(t, s.Numeric)
	assert.True(t, s.Geometry)
	assert.True(t, s.JSON)
	assert.True(t, s.Regexp)

	// abstract defaults survive the merge
	assert.True(t, s.Default)
	assert.True(t, s.Constraints.Unique)
	assert.True(t, s.Constraints.PrimaryKey)
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	s := Capabilities()
	s.Lock = false
	assert.True(t, ClickHouse.Supports.Lock)
}
