package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a query against ClickHouse",
		Long: `Run a SQL query against the configured ClickHouse server.

Result columns are decoded through the dialect's field type casts, so
DateTime values come back in the configured timezone and Date values as
plain text. SQL is read from the arguments, from --input, or from stdin.`,
		Example: `  # Execute SQL directly
  chdialect query "SELECT now(), today()"

  # Read SQL from a file
  chdialect query --input report.sql

  # Output as JSON
  chdialect query "SELECT * FROM system.tables LIMIT 5" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	sqlQuery, err := readSQL(cmd, args, opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(sqlQuery) == "" {
		return fmt.Errorf("no SQL given")
	}

	cmdCtx := NewCommandContext(cmd)
	a, err := cmdCtx.Connect(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	rs, err := a.Select(cmd.Context(), sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return renderResults(cmd.OutOrStdout(), rs, opts.Format)
}

func readSQL(cmd *cobra.Command, args []string, opts *QueryOptions) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	default:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	}
}
