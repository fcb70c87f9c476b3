// Package clickhouse provides a ClickHouse database adapter.
package clickhouse

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapter"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/datatypes"
	chdialect "github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/dialect"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
	base "github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/dialect"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/querygen"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/typecast"
)

// Adapter implements the adapter.Adapter interface for ClickHouse.
type Adapter struct {
	adapter.BaseSQLAdapter
	conn  *ConnectionManager
	types *datatypes.Registry
}

// New creates a new ClickHouse adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger, opts ...ManagerOption) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	types := datatypes.NewRegistry()
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
		conn:           NewConnectionManager(logger, types, opts...),
		types:          types,
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "clickhouse"
}

// Dialect returns the ClickHouse dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return chdialect.ClickHouse
}

// DialectConfig returns the static dialect configuration.
func (a *Adapter) DialectConfig() *core.DialectConfig {
	return chdialect.ClickHouse.Config()
}

// Types returns the ClickHouse type registry.
func (a *Adapter) Types() *datatypes.Registry {
	return a.types
}

// ConnectionManager returns the manager owning the field type cast map.
func (a *Adapter) ConnectionManager() *ConnectionManager {
	return a.conn
}

// Generator returns a statement generator bound to the session timezone.
func (a *Adapter) Generator() *querygen.Generator {
	return querygen.New(a.Dialect(), a.types, a.conn.Timezone())
}

// Connect establishes a connection to ClickHouse.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	db, err := a.conn.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	a.DB = db
	a.Cfg = cfg
	return nil
}

// Close releases the connection.
func (a *Adapter) Close() error {
	if err := a.conn.Disconnect(a.DB); err != nil {
		return err
	}
	return a.BaseSQLAdapter.Close()
}

// Ping verifies the connection is alive.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	if err := a.DB.PingContext(ctx); err != nil {
		return ClassifyError(err)
	}
	return nil
}

// Select executes a query and decodes every row through the type casts.
func (a *Adapter) Select(ctx context.Context, sqlStr string) (*core.ResultSet, error) {
	return a.SelectWith(ctx, sqlStr, a.decode)
}

// DecodeRows reads every remaining row of rows through the type casts.
// The caller closes rows.
func (a *Adapter) DecodeRows(rows *sql.Rows) (*core.ResultSet, error) {
	return adapter.ScanAll(rows, a.decode)
}

func (a *Adapter) decode(col *sql.ColumnType, raw any) (any, error) {
	f := typecast.Value{Column: col.Name(), WireType: col.DatabaseTypeName(), Raw: raw}
	return a.conn.TypeCast(f, func() (any, error) {
		return a.conn.normalizeNumber(raw), nil
	})
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.Dialect())
}

// LoadCSV loads data from a CSV file into a table using batched INSERTs.
// The table is created with String columns if it does not exist. Batch
// size and the number of INSERTs in flight come from the adapter params.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	file, err := os.Open(absPath) //nolint:gosec // absPath is derived from user-provided filePath, which is expected
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]querygen.Column, len(headers))
	for i, h := range headers {
		columns[i] = querygen.Column{Name: sanitizeIdentifier(h), Type: base.KeyString}
	}

	gen := a.Generator()
	createSQL, err := gen.CreateTable(querygen.Table{Name: tableName, Columns: columns, IfNotExists: true})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := a.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	params := a.conn.Params()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(params.InsertConcurrency)

	insert := func(batch []map[string]any) {
		g.Go(func() error {
			insertSQL, err := gen.Insert(tableName, columns, batch, querygen.InsertOptions{})
			if err != nil {
				return err
			}
			if err := a.Exec(gctx, insertSQL); err != nil {
				return err
			}
			a.Logger.Debug("inserted csv batch", slog.String("table", tableName), slog.Int("rows", len(batch)))
			return nil
		})
	}

	batch := make([]map[string]any, 0, params.InsertBatchSize)
	for gctx.Err() == nil {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr := fmt.Errorf("failed to read CSV row: %w", err)
			if insertErr := g.Wait(); insertErr != nil {
				return errors.Join(readErr, fmt.Errorf("failed to insert data: %w", insertErr))
			}
			return readErr
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			if i < len(record) {
				row[c.Name] = record[i]
			}
		}
		batch = append(batch, row)
		if len(batch) == params.InsertBatchSize {
			insert(batch)
			batch = make([]map[string]any, 0, params.InsertBatchSize)
		}
	}
	if len(batch) > 0 && gctx.Err() == nil {
		insert(batch)
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}
	return ctx.Err()
}

// sanitizeIdentifier makes a CSV header usable as a column name.
func sanitizeIdentifier(name string) string {
	safe := strings.TrimSpace(name)
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	return safe
}

// Ensure Adapter implements the adapter interfaces
var (
	_ adapter.Adapter = (*Adapter)(nil)
	_ core.Adapter    = (*Adapter)(nil)
)
