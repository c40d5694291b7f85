package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/photonhq/photon/internal/app"
	"github.com/photonhq/photon/internal/config"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const defaultLogFile = "debug.log"

var (
	version   = "dev"
	cfgFile   string
	apiURL    string
	debugFlag bool
	logFile   string

	cfg     config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "photon",
	Short: "Find datasets and turn them into runnable analysis notebooks",
	Long: `Photon searches a dataset catalogue, generates an analysis notebook for the
dataset you pick, runs it remotely and shows the output, all from the terminal.

Without a subcommand photon starts the interactive UI.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .photon/config.yaml, then ~/.config/photon/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "",
		"base URL of the search/generate/execute services (overrides config and PHOTON_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by PHOTON_DEBUG; PHOTON_LOG_LEVEL raises the threshold)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"debug log destination")
}

// loadConfig resolves, reads and validates the configuration. When no file
// exists anywhere a commented default is written to .photon/config.yaml.
func loadConfig(_ *cobra.Command, _ []string) error {
	v := config.NewViper()

	path, found := config.Resolve(cfgFile)
	switch {
	case found:
	case cfgFile != "":
		return fmt.Errorf("config file %s not found", cfgFile)
	default:
		path = ""
		if err := config.WriteDefaultConfig(config.LocalConfigPath); err == nil {
			path = config.LocalConfigPath
		}
		// If write fails, just continue with defaults (no config file)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config %s: %w", path, err)
			}
			path = ""
		}
	}
	if apiURL != "" {
		v.Set("api.base_url", apiURL)
	}

	c, err := config.Decode(v)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = c
	cfgPath = path
	return nil
}

func debugEnabled() bool {
	return debugFlag || os.Getenv(config.EnvPrefix+"_DEBUG") != ""
}

// initLogging opens the debug log when debugging is enabled. The returned
// cleanup is never nil.
func initLogging(prefix string) (func(), error) {
	if !debugEnabled() {
		log.SetEnabled(false)
		return func() {}, nil
	}
	cleanup, err := log.Init(logFile, prefix)
	if err != nil {
		return func() {}, fmt.Errorf("initializing logging: %w", err)
	}
	if lvl := os.Getenv(config.EnvPrefix + "_LOG_LEVEL"); lvl != "" {
		log.SetMinLevel(log.ParseLevel(lvl))
	}
	log.Info(log.CatConfig, "photon starting", "version", version, "config", cfgPath)
	return cleanup, nil
}

// backend is the gateway stack shared by the UI and the headless commands.
type backend struct {
	gateway  gateway.Gateway
	provider *tracing.Provider
}

// openBackend builds the HTTP client, wraps it in the search cache and starts
// the tracing provider.
func openBackend(c config.Config) (*backend, error) {
	provider, err := tracing.NewProvider(c.TracingProvider())
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	gc := c.Gateway()
	gc.Tracer = provider.Tracer()
	gc.UserAgent = "photon/" + version
	client, err := gateway.New(gc)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("creating gateway client: %w", err)
	}

	var gw gateway.Gateway = client
	if c.Search.CacheTTL > 0 {
		gw = gateway.NewCachedGateway(client, c.Search.CacheTTL)
	}
	return &backend{gateway: gw, provider: provider}, nil
}

// Close flushes pending spans.
func (b *backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.provider.Shutdown(ctx)
}

func runApp(cmd *cobra.Command, _ []string) error {
	cleanup, err := initLogging("photon")
	if err != nil {
		return err
	}
	defer cleanup()

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	zone.NewGlobal()
	model := app.New(app.Options{
		Ctx:        cmd.Context(),
		Gateway:    be.gateway,
		Config:     cfg,
		ConfigPath: cfgPath,
		Debug:      debugEnabled(),
		Tracer:     be.provider.Tracer(),
	})
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so that in-flight requests stop.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
