package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/photonhq/photon/internal/config"
)

var (
	cfgAPIKey    string
	cfgTimeout   time.Duration
	cfgRateLimit int
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Save API settings to the config file",
	Long: `Save API settings to the config file in use, keeping every other section
and its comments intact.

Examples:
  photon configure --api-url https://photon.example.com --api-key secret
  photon configure --request-timeout 1m --rate-limit 60`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&cfgAPIKey, "api-key", "", "API key sent as x-api-key")
	configureCmd.Flags().DurationVar(&cfgTimeout, "request-timeout", 0, "request timeout, e.g. 30s")
	configureCmd.Flags().IntVar(&cfgRateLimit, "rate-limit", 0, "requests per minute; 0 disables pacing")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	api := cfg.API
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		api.APIKey = cfgAPIKey
	}
	if flags.Changed("request-timeout") {
		api.RequestTimeout = cfgTimeout
	}
	if flags.Changed("rate-limit") {
		api.RateLimitPerMinute = cfgRateLimit
	}

	path := cfgPath
	if path == "" {
		path = config.LocalConfigPath
	}
	if err := config.SaveAPI(path, api); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved API settings to %s\n", path)
	return nil
}
