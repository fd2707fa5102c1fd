package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agrobio/biobot/internal/embeddings"
	searchindex "github.com/agrobio/biobot/internal/search/index"
)

var (
	flagIndexData       string
	flagIndexOut        string
	flagIndexProvider   string
	flagIndexModel      string
	flagIndexBaseURL    string
	flagIndexBatchSize  int
	flagIndexWorkers    int
	flagIndexMetaFormat string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the dataset and install a new search index",
	Long: `Read the biopesticide dataset, embed one search text per record and write
config.json, vectors.f32 and the metadata table into the index directory.

The build runs in a temporary directory and replaces the previous index only
when every record was embedded.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&flagIndexData, "data", "", "Dataset CSV/TSV (default from config)")
	indexCmd.Flags().StringVar(&flagIndexOut, "out", "", "Index directory (default from config)")
	indexCmd.Flags().StringVar(&flagIndexProvider, "provider", "", "Embeddings provider: ollama or openai")
	indexCmd.Flags().StringVar(&flagIndexModel, "model", "", "Embeddings model name")
	indexCmd.Flags().StringVar(&flagIndexBaseURL, "base-url", "", "Embeddings API base URL")
	indexCmd.Flags().IntVar(&flagIndexBatchSize, "batch-size", 0, "Texts per embeddings request")
	indexCmd.Flags().IntVar(&flagIndexWorkers, "workers", 0, "Concurrent embeddings requests")
	indexCmd.Flags().StringVar(&flagIndexMetaFormat, "meta-format", "", "Metadata table format: jsonl or sqlite")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embCfg, err := embeddings.LoadConfig(cfg.Embeddings)
	if err != nil {
		return err
	}
	overrideString(&embCfg.Provider, flagIndexProvider)
	overrideString(&embCfg.Model, flagIndexModel)
	overrideString(&embCfg.BaseURL, flagIndexBaseURL)
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return err
	}

	opts := searchindex.BuildOptions{
		DataPath:   cfg.DataPath,
		OutDir:     cfg.IndexDir,
		ColsEN:     cfg.Columns.EN,
		ColsES:     cfg.Columns.ES,
		BatchSize:  cfg.Build.BatchSize,
		Workers:    cfg.Build.Workers,
		MetaFormat: cfg.Build.MetaFormat,
	}
	overrideString(&opts.DataPath, flagIndexData)
	overrideString(&opts.OutDir, flagIndexOut)
	overrideString(&opts.MetaFormat, flagIndexMetaFormat)
	if flagIndexBatchSize > 0 {
		opts.BatchSize = flagIndexBatchSize
	}
	if flagIndexWorkers > 0 {
		opts.Workers = flagIndexWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printInfo("", fmt.Sprintf("building index from %s using %s", opts.DataPath, prov.ModelID()))
	idx, err := searchindex.BuildAndInstall(ctx, prov, opts, cfg.Build.LockTimeout)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	printOK("", fmt.Sprintf("index written: %s (%s)", opts.OutDir, idx.Summary()))
	return nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
