package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vthink/alertd/pkg/client"
)

func newNotificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notification",
		Short: "Send and list toast-style notifications",
	}

	cmd.AddCommand(newNotificationSendCmd())
	cmd.AddCommand(newNotificationListCmd())

	return cmd
}

func newNotificationSendCmd() *cobra.Command {
	var notifType, priority, title, message string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			n, err := apiClient.Notifications().Create(ctx, &client.CreateNotificationRequest{
				Type:     notifType,
				Priority: priority,
				Title:    title,
				Message:  message,
			})
			if err != nil {
				return fmt.Errorf("failed to send notification: %w", err)
			}

			fmt.Printf("Notification %s sent\n", n.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&notifType, "type", "system_health", "notification type")
	cmd.Flags().StringVar(&priority, "priority", "info", "priority: info, low, medium, high, critical")
	cmd.Flags().StringVar(&title, "title", "", "notification title")
	cmd.Flags().StringVar(&message, "message", "", "notification message")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func newNotificationListCmd() *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List retained notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			notices, err := apiClient.Notifications().List(ctx, &client.NotificationListOptions{
				Priority: priority,
			})
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(notices)
			}

			t := NewTable("ID", "PRIORITY", "ACK", "TITLE")
			for _, n := range notices {
				t.AddRow(
					n.ID,
					n.Priority,
					strconv.FormatBool(n.Acknowledged),
					truncate(n.Title, 50),
				)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")

	return cmd
}
