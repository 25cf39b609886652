package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vthink/alertd/pkg/client"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update the routing configuration",
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current routing configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := apiClient.RouterConfig().Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get config: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(cfg)
			}

			fmt.Printf("Retention days:  %d\n", cfg.RetentionDays)
			fmt.Printf("Max per channel: %d\n", cfg.MaxAlertsPerChannel)

			t := NewTable("CHANNEL", "ENABLED", "MIN PRIORITY")
			for name, ch := range cfg.Channels {
				minPriority := ""
				if ch.Filters != nil {
					minPriority = ch.Filters.MinPriority
				}
				t.AddRow(name, strconv.FormatBool(ch.Enabled), minPriority)
			}
			t.Render()
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var retentionDays, maxPerChannel int
	var minPriority string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update routing configuration fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			req := &client.UpdateConfigRequest{}
			if cmd.Flags().Changed("retention-days") {
				req.RetentionDays = &retentionDays
			}
			if cmd.Flags().Changed("max-per-channel") {
				req.MaxAlertsPerChannel = &maxPerChannel
			}
			if cmd.Flags().Changed("min-priority") {
				req.GlobalFilters = &client.FilterConfig{MinPriority: minPriority}
			}

			cfg, err := apiClient.RouterConfig().Update(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to update config: %w", err)
			}

			fmt.Printf("Configuration updated (retention %d days, %d per channel)\n",
				cfg.RetentionDays, cfg.MaxAlertsPerChannel)
			return nil
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "alert retention in days")
	cmd.Flags().IntVar(&maxPerChannel, "max-per-channel", 0, "soft cap when listing per channel")
	cmd.Flags().StringVar(&minPriority, "min-priority", "", "global minimum priority")

	return cmd
}
