package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the connection to ClickHouse",
		Long: `Connect to the configured ClickHouse server and report its version.

Connection failures are reported with their classification (refused,
access denied, host not found, host not reachable, invalid connection).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			start := time.Now()

			a, err := cmdCtx.Connect(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			rs, err := a.Select(cmd.Context(), "SELECT version()")
			if err != nil {
				return fmt.Errorf("failed to read server version: %w", err)
			}
			version := "unknown"
			if len(rs.Rows) > 0 && len(rs.Rows[0]) > 0 {
				version = formatValue(rs.Rows[0][0])
			}

			target := cmdCtx.Cfg.Target
			cmdCtx.Logger.Debug("ping succeeded", "host", target.Host, "port", target.Port)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok %s:%d/%s (ClickHouse %s) in %s\n",
				target.Host, target.Port, target.Database, version, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
