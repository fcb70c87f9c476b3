package commands

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/datatypes"
	chdialect "github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse/dialect"
	base "github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
)

// TypeInfo is one row of the types listing.
type TypeInfo struct {
	Key       string   `json:"key"`
	DDL       string   `json:"ddl"`
	Default   any      `json:"default"`
	WireTypes []string `json:"wire_types,omitempty"`
}

// ListTypes describes every key in types with zero options.
func ListTypes(types *datatypes.Registry, timezone string) ([]TypeInfo, error) {
	ro := chdialect.ClickHouse.RenderOptions("", timezone)
	keys := types.Keys()
	infos := make([]TypeInfo, 0, len(keys))
	for _, key := range keys {
		t, err := types.Get(key, base.Options{})
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", key, err)
		}
		infos = append(infos, TypeInfo{
			Key:       key,
			DDL:       t.ToSQL(ro),
			Default:   t.DefaultValue(),
			WireTypes: t.WireTypes(),
		})
	}
	return infos, nil
}

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the ClickHouse type mappings",
		Long: `List every logical type key with its ClickHouse DDL name, the default
value used for columns that declare none, and the wire type names whose
values are decoded by a custom parser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			infos, err := ListTypes(datatypes.NewRegistry(), cmdCtx.Cfg.Target.Timezone)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			case "table", "":
				t := table.NewWriter()
				t.SetOutputMirror(w)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"KEY", "DDL", "DEFAULT", "WIRE TYPES"})
				for _, info := range infos {
					t.AppendRow(table.Row{info.Key, info.DDL, formatDefault(info.Default), strings.Join(info.WireTypes, ", ")})
				}
				t.Render()
				return nil
			default:
				return fmt.Errorf("unknown format %q (expected table or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")
	return cmd
}

func formatDefault(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case []any:
		return fmt.Sprintf("%v", val)
	default:
		return formatValue(val)
	}
}
