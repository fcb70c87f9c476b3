package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/datatypes"
	chdialect "github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/dialect"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/querygen"
)

// DDLOptions holds options for the ddl command.
type DDLOptions struct {
	File        string
	IfNotExists bool
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand() *cobra.Command {
	opts := &DDLOptions{}

	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Render CREATE TABLE from a model file",
		Long: `Render a ClickHouse CREATE TABLE statement from a YAML model.

The model names the table, its engine and ordering key, and a list of
columns with logical types (STRING, INTEGER, DATE, ENUM, ARRAY, ...).
No server connection is needed.`,
		Example: `  chdialect ddl --file models/events.yaml

  # models/events.yaml
  table: events
  engine: MergeTree()
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
      element: {type: string}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDDL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "Path to the YAML model")
	cmd.Flags().BoolVar(&opts.IfNotExists, "if-not-exists", false, "Add IF NOT EXISTS")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagFilename("file", "yaml", "yml")

	return cmd
}

func runDDL(cmd *cobra.Command, opts *DDLOptions) error {
	cmdCtx := NewCommandContext(cmd)

	model, err := querygen.LoadModel(opts.File)
	if err != nil {
		return err
	}
	tbl, err := model.ToTable()
	if err != nil {
		return fmt.Errorf("invalid model %s: %w", opts.File, err)
	}
	if opts.IfNotExists {
		tbl.IfNotExists = true
	}

	gen := querygen.New(chdialect.ClickHouse, datatypes.NewRegistry(), cmdCtx.Cfg.Target.Timezone)
	stmt, err := gen.CreateTable(tbl)
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("rendered table", "table", tbl.Name, "columns", len(tbl.Columns))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt)
	return nil
}
