package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/datatypes"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
	base "github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/typecast"
)

// OpenFunc opens a database handle for the given client options.
type OpenFunc func(opts *ch.Options) *sql.DB

// ConnectionManager turns adapter configs into ClickHouse connections and
// owns the field type cast map applied while decoding results.
type ConnectionManager struct {
	logger *slog.Logger
	types  *datatypes.Registry
	casts  *typecast.Registry
	open   OpenFunc

	mu       sync.RWMutex
	timezone string
	params   Params
}

// ManagerOption configures a ConnectionManager.
type ManagerOption func(*ConnectionManager)

// WithOpener replaces clickhouse.OpenDB, mainly for tests.
func WithOpener(open OpenFunc) ManagerOption {
	return func(m *ConnectionManager) { m.open = open }
}

// NewConnectionManager creates a manager whose cast map is refreshed from
// the parsers of types. If logger is nil, a discard logger is used.
func NewConnectionManager(logger *slog.Logger, types *datatypes.Registry, opts ...ManagerOption) *ConnectionManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &ConnectionManager{
		logger:   logger,
		types:    types,
		casts:    typecast.NewRegistry(),
		open:     ch.OpenDB,
		timezone: base.DefaultTimezone,
		params:   defaultParams(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.RefreshTypeParser(types.Parsers()...)
	return m
}

// Connect opens a connection for cfg. Failures are returned as
// *core.ConnectionError.
func (m *ConnectionManager) Connect(ctx context.Context, cfg core.AdapterConfig) (*sql.DB, error) {
	s, err := connectionOptions(cfg)
	if err != nil {
		return nil, core.NewConnectionError(core.InvalidConnection, err)
	}
	if s.options.Debug {
		s.options.Debugf = func(format string, v ...any) {
			m.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "clickhouse-go"))
		}
	}

	m.logger.Debug("connecting to clickhouse",
		slog.String("addr", s.options.Addr[0]),
		slog.String("database", s.options.Auth.Database),
		slog.String("protocol", s.options.Protocol.String()))

	db := m.open(s.options)
	if s.params.Ping {
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, ClassifyError(fmt.Errorf("failed to ping clickhouse: %w", err))
		}
	}

	m.mu.Lock()
	m.timezone = s.timezone
	m.params = s.params
	m.mu.Unlock()

	m.logger.Debug("connection acquired")
	return db, nil
}

// Disconnect is a no-op. The database handle is released by closing it.
func (m *ConnectionManager) Disconnect(*sql.DB) error {
	return nil
}

// RefreshTypeParser records the wire types of every parser in the cast map.
// It can be called again to add custom types; later parsers win.
func (m *ConnectionManager) RefreshTypeParser(parsers ...typecast.Parser) {
	m.casts.Refresh(parsers...)
	m.logger.Debug("type parsers refreshed", slog.Any("wire_types", m.casts.WireTypes()))
}

// ClearTypeParser empties the cast map.
func (m *ConnectionManager) ClearTypeParser() {
	m.casts.Clear()
}

// TypeCast decodes f with the registered parser for its wire type, or
// falls back to next.
func (m *ConnectionManager) TypeCast(f typecast.Field, next func() (any, error)) (any, error) {
	return m.casts.Dispatch(f, typecast.Options{Timezone: m.Timezone()}, next)
}

// Timezone returns the session timezone of the last successful connect.
func (m *ConnectionManager) Timezone() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timezone
}

// Types returns the type registry the cast map was built from.
func (m *ConnectionManager) Types() *datatypes.Registry {
	return m.types
}

// Params returns the adapter params of the last successful connect.
func (m *ConnectionManager) Params() Params {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params
}

// WireTypes lists the wire types that currently have a parser.
func (m *ConnectionManager) WireTypes() []string {
	return m.casts.WireTypes()
}

// normalizeNumber applies the big number flags to a value the driver
// decoded on its own.
func (m *ConnectionManager) normalizeNumber(v any) any {
	m.mu.RLock()
	p := m.params
	m.mu.RUnlock()

	if !isBigNumber(v) {
		return v
	}
	switch {
	case p.BigNumberStrings:
		return fmt.Sprint(v)
	case !p.SupportBigNumbers:
		return toFloat(v)
	default:
		return v
	}
}

func isBigNumber(v any) bool {
	switch v.(type) {
	case int64, uint64, decimal.Decimal, *big.Int:
		return true
	}
	return false
}

func toFloat(v any) any {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case decimal.Decimal:
		f, _ := n.Float64()
		return f
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}
	return v
}
