package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrobio/biobot/internal/config"
	"github.com/agrobio/biobot/internal/embeddings"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:          "biobot",
	Short:        "BioBot — semantic biopesticide recommendations",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `BioBot recommends biopesticides for a pest, crop or problem described in
Spanish or English. Build an index from the dataset with 'biobot index', then
query it with 'biobot search' or serve it with 'biobot serve'.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.biobot/biobot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads biobot.yaml from --config or the default location.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'biobot init' to write a default config.", err)
	}
	return cfg, nil
}

// providerCache returns a cache that opens providers for index model IDs, taking
// credentials and endpoints from the resolved embeddings config.
func providerCache(cfg *config.Config) (*embeddings.Cache, error) {
	embCfg, err := embeddings.LoadConfig(cfg.Embeddings)
	if err != nil {
		return nil, err
	}
	return embeddings.NewCache(func(modelID string) (embeddings.Provider, error) {
		return embeddings.Open(modelID, embCfg)
	}), nil
}
