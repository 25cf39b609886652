package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status and alert summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := apiClient.Ping(ctx); err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}

			stats, err := apiClient.Alerts().Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(map[string]any{
					"status": "ok",
					"stats":  stats,
				})
			}

			fmt.Println("alertd")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Println("  Server:         ok")
			fmt.Printf("  Alerts:         %d\n", stats.Total)
			fmt.Printf("  Acknowledged:   %d\n", stats.Acknowledged)
			fmt.Printf("  Unacknowledged: %d\n", stats.Unacknowledged)
			fmt.Printf("  Critical:       %d\n", stats.ByPriority["critical"])
			return nil
		},
	}
}
