// Package clickhouse provides a ClickHouse database adapter.
//
// This file registers the ClickHouse adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse"
package clickhouse

import (
	"log/slog"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapter"

	// Import dialect to ensure it's registered
	_ "github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/dialect"
)

func init() {
	adapter.Register("clickhouse", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
