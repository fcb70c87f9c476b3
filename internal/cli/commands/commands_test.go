package commands

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/clickhouse-dialect/internal/config"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapter"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/datatypes"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
)

func testConfig() *config.Config {
	return &config.Config{Target: core.TargetConfig{
		Type:     "clickhouse",
		Host:     "localhost",
		Port:     8123,
		Database: "default",
		User:     "default",
		Timezone: "+03:00",
	}}
}

// mockServer routes adapter connections to a sqlmock database.
func mockServer(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	prev := newAdapter
	newAdapter = func(_ core.AdapterConfig, logger *slog.Logger) (adapter.Adapter, error) {
		return clickhouse.New(logger, clickhouse.WithOpener(func(*ch.Options) *sql.DB { return db })), nil
	}
	t.Cleanup(func() {
		newAdapter = prev
		_ = db.Close()
	})
	return mock
}

func runCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(config.WithConfig(context.Background(), cfg))
	return buf.String(), err
}

func TestListTypes(t *testing.T) {
	infos, err := ListTypes(datatypes.NewRegistry(), "+00:00")
	require.NoError(t, err)

	byKey := make(map[string]TypeInfo, len(infos))
	for _, info := range infos {
		byKey[info.Key] = info
		assert.NotNil(t, info.Default, "key %s has no default", info.Key)
	}

	assert.Equal(t, "DateTime", byKey["DATE"].DDL)
	assert.Contains(t, byKey["DATE"].WireTypes, "DateTime")
	assert.Equal(t, "Date", byKey["DATEONLY"].DDL)
	assert.Equal(t, "Int8", byKey["BOOLEAN"].DDL)
	assert.Equal(t, "Array(String)", byKey["ARRAY"].DDL)
	assert.Empty(t, byKey["STRING"].WireTypes)
}

func TestNewTypesCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut []string
		errMsg  string
	}{
		{
			name:    "table",
			wantOut: []string{"KEY", "WIRE TYPES", "DATEONLY", "FixedString(255)", "Enum16"},
		},
		{
			name:    "json",
			args:    []string{"--format", "json"},
			wantOut: []string{`"key": "UUID"`, `"ddl": "DateTime"`, `"wire_types"`},
		},
		{
			name:   "unknown format",
			args:   []string{"--format", "xml"},
			errMsg: "unknown format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, NewTypesCommand(), testConfig(), tt.args...)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestNewDDLCommand(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "events.yaml")
	require.NoError(t, os.WriteFile(model, []byte(`
table: analytics.events
order_by: [id]
columns:
  - name: id
    type: integer
    unsigned: true
  - name: kind
    type: enum
    values: [click, view]
  - name: tags
    type: array
    element: {type: string}
  - name: note
    type: string
    nullable: true
`), 0o600))

	out, err := runCommand(t, NewDDLCommand(), testConfig(), "--file", model, "--if-not-exists")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "CREATE TABLE IF NOT EXISTS `analytics`.`events` ("), out)
	assert.Contains(t, out, "`id` UInt32")
	assert.Contains(t, out, "`kind` Enum8('click' = 1, 'view' = 2)")
	assert.Contains(t, out, "`tags` Array(String)")
	assert.Contains(t, out, "`note` Nullable(String)")
	assert.Contains(t, out, "ENGINE = MergeTree() ORDER BY `id`;")
}

func TestNewDDLCommand_Errors(t *testing.T) {
	_, err := runCommand(t, NewDDLCommand(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("columns: []\n"), 0o600))
	_, err = runCommand(t, NewDDLCommand(), testConfig(), "--file", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table name")
}

func TestNewQueryCommand(t *testing.T) {
	mock := mockServer(t)
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("UInt32", uint32(0)),
		sqlmock.NewColumn("at").OfType("DateTime", ""),
		sqlmock.NewColumn("day").OfType("Date", ""),
	).AddRow(uint32(7), "2024-01-02 03:04:05", "2024-01-02")
	mock.ExpectQuery("SELECT id, at, day FROM events").WillReturnRows(rows)
	mock.ExpectClose()

	out, err := runCommand(t, NewQueryCommand(), testConfig(), "SELECT id, at, day FROM events", "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, out, `"id": 7`)
	assert.Contains(t, out, `"at": "2024-01-02T03:04:05+03:00"`)
	assert.Contains(t, out, `"day": "2024-01-02"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewQueryCommand_Stdin(t *testing.T) {
	mock := mockServer(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	mock.ExpectClose()

	cmd := NewQueryCommand()
	cmd.SetIn(strings.NewReader("SELECT 1"))
	out, err := runCommand(t, cmd, testConfig(), "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "one\n1\n", out)
}

func TestNewQueryCommand_Errors(t *testing.T) {
	mock := mockServer(t)
	mock.ExpectQuery("SELECT broken").WillReturnError(assert.AnError)

	_, err := runCommand(t, NewQueryCommand(), testConfig(), "SELECT broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")

	cmd := NewQueryCommand()
	cmd.SetIn(strings.NewReader("   "))
	_, err = runCommand(t, cmd, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SQL given")
}

func TestNewQueryCommand_InvalidTarget(t *testing.T) {
	mockServer(t)
	cfg := testConfig()
	cfg.Target.Timezone = "Nowhere/Land"

	_, err := runCommand(t, NewQueryCommand(), cfg, "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConnection)
}

func TestNewPingCommand(t *testing.T) {
	mock := mockServer(t)
	mock.ExpectQuery("SELECT version\\(\\)").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("version()").OfType("String", "")).AddRow("24.3.1"))
	mock.ExpectClose()

	out, err := runCommand(t, NewPingCommand(), testConfig())
	require.NoError(t, err)
	assert.Contains(t, out, "ok localhost:8123/default (ClickHouse 24.3.1)")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderResults(t *testing.T) {
	rs := &core.ResultSet{
		Columns: []core.Column{{Name: "name"}, {Name: "note"}},
		Rows:    [][]any{{"a,b", nil}, {[]byte("raw"), `say "hi"`}},
	}

	tests := []struct {
		format string
		want   string
	}{
		{format: "csv", want: "name,note\n\"a,b\",NULL\nraw,\"say \"\"hi\"\"\"\n"},
		{format: "md", want: "| name | note |\n| --- | --- |\n| a,b | NULL |\n| raw | say \"hi\" |\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, renderResults(buf, rs, tt.format))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, &core.ResultSet{}, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())

	assert.Error(t, renderResults(buf, rs, "xml"))
}
