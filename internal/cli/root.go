package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vthink/alertd/pkg/client"
)

var (
	outputFormat string
	serverURL    string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "alertd",
	Short: "alertd - priority-based alert routing service",
	Long: `alertd routes typed, priority-tagged alerts to pluggable delivery
channels (chat webhooks, email, SMS, dashboards, structured logs), each with
its own filters and failure domain.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The server runs in-process and needs no API client
		if cmd.Name() == "serve" {
			return nil
		}
		return initClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	// Register all subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newAlertCmd())
	rootCmd.AddCommand(newNotificationCmd())
	rootCmd.AddCommand(newConfigCmd())
}

func initConfig() {
	viper.SetEnvPrefix("ALERTD")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("output", "table")
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
	})
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}
