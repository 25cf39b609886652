package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vthink/alertd/pkg/client"
)

func newAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Send, list and acknowledge alerts",
	}

	cmd.AddCommand(newAlertSendCmd())
	cmd.AddCommand(newAlertListCmd())
	cmd.AddCommand(newAlertStatsCmd())
	cmd.AddCommand(newAlertAckCmd())

	return cmd
}

func newAlertSendCmd() *cobra.Command {
	var alertType, priority, title, message string
	var channelList []string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a new alert",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := apiClient.Alerts().Create(ctx, &client.CreateAlertRequest{
				Type:     alertType,
				Priority: priority,
				Title:    title,
				Message:  message,
				Channels: channelList,
			})
			if err != nil {
				return fmt.Errorf("failed to send alert: %w", err)
			}

			fmt.Printf("Alert %s routed to %s\n", a.ID, strings.Join(a.Channels, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&alertType, "type", "system_health", "alert type")
	cmd.Flags().StringVar(&priority, "priority", "medium", "priority: info, low, medium, high, critical")
	cmd.Flags().StringVar(&title, "title", "", "alert title")
	cmd.Flags().StringVar(&message, "message", "", "alert message")
	cmd.Flags().StringSliceVar(&channelList, "channels", []string{"log"}, "target channels")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func newAlertListCmd() *cobra.Command {
	var priority, channel, alertType string
	var unacked bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List retained alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			opts := &client.AlertListOptions{
				Type:     alertType,
				Priority: priority,
				Channel:  channel,
			}
			if unacked {
				acked := false
				opts.Acknowledged = &acked
			}

			alerts, err := apiClient.Alerts().List(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(alerts)
			}

			t := NewTable("ID", "TYPE", "PRIORITY", "ACK", "TITLE")
			for _, a := range alerts {
				t.AddRow(
					a.ID,
					a.Type,
					a.Priority,
					strconv.FormatBool(a.Acknowledged),
					truncate(a.Title, 50),
				)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&channel, "channel", "", "filter by channel")
	cmd.Flags().StringVar(&alertType, "type", "", "filter by type")
	cmd.Flags().BoolVar(&unacked, "unacknowledged", false, "only unacknowledged alerts")

	return cmd
}

func newAlertStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate alert counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			stats, err := apiClient.Alerts().Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(stats)
			}

			fmt.Printf("Total:          %d\n", stats.Total)
			fmt.Printf("Acknowledged:   %d\n", stats.Acknowledged)
			fmt.Printf("Unacknowledged: %d\n", stats.Unacknowledged)

			t := NewTable("PRIORITY", "COUNT")
			for _, p := range []string{"critical", "high", "medium", "low", "info"} {
				t.AddRow(p, strconv.Itoa(stats.ByPriority[p]))
			}
			t.Render()
			return nil
		},
	}
}

func newAlertAckCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := apiClient.Alerts().Acknowledge(ctx, args[0], by); err != nil {
				return fmt.Errorf("failed to acknowledge alert: %w", err)
			}

			fmt.Printf("Alert %s acknowledged by %s\n", args[0], by)
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "who is acknowledging")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}
