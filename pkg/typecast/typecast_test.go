package typecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	wire   []string
	result any
	err    error
	calls  int
}

func (p *stubParser) WireTypes() []string { return p.wire }

func (p *stubParser) Parse(_ Field, _ Options) (any, error) {
	p.calls++
	return p.result, p.err
}

func TestRegistry_RefreshAndDispatch(t *testing.T) {
	date := &stubParser{wire: []string{"DateTime"}, result: "parsed"}
	r := NewRegistry()
	r.Refresh(date)

	nextCalled := false
	next := func() (any, error) {
		nextCalled = true
		return "default", nil
	}

	got, err := r.Dispatch(TextField("DateTime", "2024-01-02 03:04:05"), Options{}, next)
	require.NoError(t, err)
	assert.Equal(t, "parsed", got)
	assert.Equal(t, 1, date.calls)
	assert.False(t, nextCalled, "override should replace the default decoder")

	r.Clear()

	got, err = r.Dispatch(TextField("DateTime", "2024-01-02 03:04:05"), Options{}, next)
	require.NoError(t, err)
	assert.Equal(t, "default", got)
	assert.True(t, nextCalled)
	assert.Equal(t, 1, date.calls)
	assert.Empty(t, r.WireTypes())
}

func TestRegistry_LastRegisteredWins(t *testing.T) {
	first := &stubParser{wire: []string{"String"}, result: "first"}
	second := &stubParser{wire: []string{"String", "FixedString"}, result: "second"}

	r := NewRegistry()
	r.Refresh(first, second)

	got, err := r.Dispatch(TextField("String", "x"), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
	assert.Equal(t, []string{"FixedString", "String"}, r.WireTypes())

	// A later refresh overrides again.
	r.Refresh(first)
	got, err = r.Dispatch(TextField("String", "x"), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestRegistry_DispatchPropagatesErrors(t *testing.T) {
	parseErr := errors.New("bad date")
	r := NewRegistry()
	r.Refresh(&stubParser{wire: []string{"Date"}, err: parseErr})

	_, err := r.Dispatch(TextField("Date", "nope"), Options{}, nil)
	assert.ErrorIs(t, err, parseErr)

	nextErr := errors.New("driver failure")
	_, err = r.Dispatch(TextField("Int32", "1"), Options{}, func() (any, error) { return nil, nextErr })
	assert.ErrorIs(t, err, nextErr)
}

func TestRegistry_LookupWrappedTypes(t *testing.T) {
	r := NewRegistry()
	r.Set("DateTime", func(_ Field, _ Options) (any, error) { return "dt", nil })

	for _, wire := range []string{"DateTime", "Nullable(DateTime)", "DateTime('Europe/Berlin')", "LowCardinality(Nullable(DateTime))"} {
		t.Run(wire, func(t *testing.T) {
			_, ok := r.Lookup(wire)
			assert.True(t, ok)
		})
	}

	_, ok := r.Lookup("DateTime64(3)")
	assert.False(t, ok)
}

func TestBaseType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"String", "String"},
		{"Nullable(String)", "String"},
		{"DateTime('UTC')", "DateTime"},
		{"Nullable(DateTime('UTC'))", "DateTime"},
		{"LowCardinality(Nullable(String))", "String"},
		{"Decimal(10, 2)", "Decimal"},
		{"Array(Int32)", "Array"},
		{" Int8 ", "Int8"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, BaseType(tt.input))
		})
	}
}

func TestValue_String(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	text := "hello"
	var nilText *string

	tests := []struct {
		name   string
		raw    any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"string", "abc", "abc", true},
		{"string pointer", &text, "hello", true},
		{"nil string pointer", nilText, "", false},
		{"bytes", []byte("xyz"), "xyz", true},
		{"time", ts, "2024-01-02 03:04:05", true},
		{"time pointer", &ts, "2024-01-02 03:04:05", true},
		{"int", 42, "42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Value{Column: "c", WireType: "String", Raw: tt.raw}.String()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestValue_RawValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	var f Field = Value{WireType: "DateTime", Raw: ts}
	rf, ok := f.(RawField)
	require.True(t, ok)
	assert.Equal(t, ts, rf.RawValue())
}
