package datatypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ToSQL(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		opts     Options
		expected string
	}{
		{"string default length", KeyString, Options{}, "VARCHAR(255)"},
		{"string binary", KeyString, Options{Length: 64, Binary: true}, "VARCHAR(64) BINARY"},
		{"char", KeyChar, Options{Length: 2}, "CHAR(2)"},
		{"text", KeyText, Options{}, "TEXT"},
		{"long text", KeyText, Options{Variant: "long"}, "LONGTEXT"},
		{"tiny blob", KeyBlob, Options{Variant: "tiny"}, "TINYBLOB"},
		{"integer", KeyInteger, Options{}, "INTEGER"},
		{"unsigned zerofill int", KeyInteger, Options{Length: 11, Unsigned: true, Zerofill: true}, "INTEGER(11) UNSIGNED ZEROFILL"},
		{"boolean", KeyBoolean, Options{}, "TINYINT(1)"},
		{"decimal", KeyDecimal, Options{}, "DECIMAL"},
		{"decimal precision", KeyDecimal, Options{Precision: 10}, "DECIMAL(10)"},
		{"decimal precision scale", KeyDecimal, Options{Precision: 10, Scale: 2}, "DECIMAL(10,2)"},
		{"date", KeyDate, Options{}, "DATETIME"},
		{"date fsp", KeyDate, Options{Length: 3}, "DATETIME(3)"},
		{"dateonly", KeyDateOnly, Options{}, "DATE"},
		{"enum", KeyEnum, Options{Values: []string{"a", "b"}}, "ENUM('a', 'b')"},
		{"array", KeyArray, Options{Element: MustNew(KeyInteger, Options{})}, "INTEGER[]"},
		{"array without element", KeyArray, Options{}, "ARRAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := New(tt.key, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.key, typ.Key())
			assert.Equal(t, tt.expected, typ.ToSQL(nil))
		})
	}
}

func TestNew_UnknownKey(t *testing.T) {
	_, err := New("GEOGRAPHY", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "GEOGRAPHY")

	assert.Panics(t, func() { MustNew("GEOGRAPHY", Options{}) })
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, KeyArray)
	assert.Contains(t, keys, KeyEnum16)
	assert.IsIncreasing(t, keys)
}

func TestLiteral(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	tests := []struct {
		name     string
		key      string
		value    any
		ro       *RenderOptions
		expected string
	}{
		{"string is escaped", KeyString, "it's", nil, "'it''s'"},
		{"integer", KeyInteger, 42, nil, "42"},
		{"null", KeyString, nil, nil, "NULL"},
		{"date in utc", KeyDate, ts, &RenderOptions{Timezone: "UTC"}, "'2024-03-09 14:05:06.000 +00:00'"},
		{"date in offset", KeyDate, ts, &RenderOptions{Timezone: "+02:00"}, "'2024-03-09 16:05:06.000 +02:00'"},
		{"dateonly", KeyDateOnly, ts, nil, "'2024-03-09'"},
		{"json", KeyJSON, map[string]int{"a": 1}, nil, `'{"a":1}'`},
		{
			"custom escaper",
			KeyString,
			"x",
			&RenderOptions{Escape: func(v any) string { return "<" + v.(string) + ">" }},
			"<x>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Literal(MustNew(tt.key, Options{}), tt.value, tt.ro)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

type rawType struct{ Type }

func (rawType) Stringify(v any, _ *RenderOptions) (any, error) { return Raw("raw:" + v.(string)), nil }

type verbatimType struct{ Type }

func (verbatimType) Escapes() bool { return false }

func TestLiteral_RawAndVerbatim(t *testing.T) {
	base := MustNew(KeyString, Options{})

	got, err := Literal(rawType{base}, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "raw:a", got)

	got, err = Literal(verbatimType{base}, "a b", nil)
	require.NoError(t, err)
	assert.Equal(t, "a b", got)
}

func TestLiteral_StringifyError(t *testing.T) {
	_, err := Literal(MustNew(KeyJSON, Options{}), make(chan int), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to serialize value")

	_, err = Literal(MustNew(KeyDate, Options{}), "not a date", nil)
	require.Error(t, err)
}

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, "NULL"},
		{"true", true, "true"},
		{"int64", int64(-7), "-7"},
		{"uint8", uint8(7), "7"},
		{"float", 1.5, "1.5"},
		{"float32", float32(0.25), "0.25"},
		{"quote", "a'b", "'a''b'"},
		{"bytes", []byte{0xde, 0xad}, "X'dead'"},
		{"raw", Raw("now()"), "now()"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "'2024-01-02 03:04:05.000'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeValue(tt.value))
		})
	}
}
