package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photonhq/photon/internal/presentation"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the remote services are reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	herr := be.gateway.Health(cmd.Context())
	dto := presentation.HealthDTO{BaseURL: cfg.API.BaseURL, OK: herr == nil}
	if herr != nil {
		dto.Error = herr.Error()
	}

	out := cmd.OutOrStdout()
	if healthJSON {
		if err := presentation.NewFormatter(out).JSON(dto); err != nil {
			return err
		}
	} else if herr == nil {
		fmt.Fprintf(out, "ok: %s\n", dto.BaseURL)
	}
	if herr != nil {
		return fmt.Errorf("services unreachable at %s: %w", dto.BaseURL, herr)
	}
	return nil
}
