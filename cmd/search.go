package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/photonhq/photon/internal/config"
	"github.com/photonhq/photon/internal/presentation"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the dataset catalogue",
	Long: `Search the dataset catalogue and print the ranked results.

Results are printed as a table, or as JSON with --json.

Examples:
  photon search global surface temperature
  photon search "sea ice" --limit 10
  photon search rainfall --json | jq '.[0].url'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query is empty")
	}
	limit := cfg.Search.Limit
	if cmd.Flags().Changed("limit") {
		limit = searchLimit
	}
	if limit < 1 || limit > config.MaxSearchLimit {
		return fmt.Errorf("--limit must be between 1 and %d, got %d", config.MaxSearchLimit, limit)
	}

	cleanup, err := initLogging("photon-search")
	if err != nil {
		return err
	}
	defer cleanup()

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	results, err := be.gateway.Search(cmd.Context(), query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	dtos := presentation.FromSearchResults(results)
	if searchJSON {
		return formatter.JSON(dtos)
	}
	return formatter.SearchTable(dtos)
}
