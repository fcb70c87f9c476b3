package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapter"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse"
)

func TestClickHouseSelfRegistration(t *testing.T) {
	// ClickHouse should be auto-registered via init()
	assert.True(t, adapter.IsRegistered("clickhouse"), "clickhouse adapter should be auto-registered")
}

func TestListAdapters(t *testing.T) {
	adapters := adapter.ListAdapters()
	assert.Contains(t, adapters, "clickhouse", "clickhouse should be in adapter list")
}

func TestIsRegistered(t *testing.T) {
	tests := []struct {
		name        string
		adapterName string
		expected    bool
	}{
		{"clickhouse registered", "clickhouse", true},
		{"unknown not registered", "unknown_db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.IsRegistered(tt.adapterName)
			assert.Equal(t, tt.expected, got, "IsRegistered(%q)", tt.adapterName)
		})
	}
}

func TestGet(t *testing.T) {
	factory, ok := adapter.Get("clickhouse")
	require.True(t, ok, "Get(clickhouse) should return true")
	require.NotNil(t, factory, "Get(clickhouse) should return non-nil factory")

	_, ok = adapter.Get("nonexistent")
	assert.False(t, ok, "Get(nonexistent) should return false")
}

func TestNewAdapter_Success(t *testing.T) {
	cfg := core.AdapterConfig{
		Type: "clickhouse",
		Host: "localhost",
	}

	adp, err := adapter.NewAdapter(cfg, nil)
	require.NoError(t, err, "NewAdapter(clickhouse) failed")
	require.NotNil(t, adp, "NewAdapter(clickhouse) returned nil adapter")
	assert.Equal(t, "clickhouse", adp.Dialect().Name)

	cfg.Type = "ClickHouse"
	adp, err = adapter.NewAdapter(cfg, nil)
	require.NoError(t, err, "adapter type is case-insensitive")
	assert.Equal(t, "clickhouse", adp.Dialect().Name)
}

func TestNewAdapter_UnknownType(t *testing.T) {
	cfg := core.AdapterConfig{
		Type: "unknown_adapter",
	}

	_, err := adapter.NewAdapter(cfg, nil)
	require.Error(t, err, "NewAdapter(unknown_adapter) should fail")

	var unknownErr *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)

	assert.Equal(t, "unknown_adapter", unknownErr.Type, "error type")
	assert.Contains(t, unknownErr.Available, "clickhouse", "Available adapters should include clickhouse")
}
