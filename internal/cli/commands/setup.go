package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/clickhouse-dialect/internal/config"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapter"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
)

// adapterFactory builds the adapter for a target.
type adapterFactory func(cfg core.AdapterConfig, logger *slog.Logger) (adapter.Adapter, error)

// newAdapter is replaced in tests.
var newAdapter adapterFactory = adapter.NewAdapter

// CommandContext holds the per-invocation state shared by commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext reads the config and logger stored by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	return &CommandContext{
		Cfg:    config.GetConfig(ctx),
		Logger: config.GetLogger(ctx),
	}
}

// Connect builds the configured adapter and opens its connection.
// The caller closes the returned adapter.
func (c *CommandContext) Connect(cmd *cobra.Command) (adapter.Adapter, error) {
	target := c.Cfg.Target.AdapterConfig()
	a, err := newAdapter(target, c.Logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(cmd.Context(), target); err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", target.Host, target.Port, err)
	}
	return a, nil
}
