package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrobio/biobot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and .env template under ~/.biobot",
	Long: `Create ~/.biobot/, write biobot.yaml with default settings (unless it already
exists) and a ~/.biobot/.env template for embeddings credentials.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.biobot directory ────────────────────────────────────────
	biobotDir, err := config.BiobotDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(biobotDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", biobotDir, err)
	}
	printOK("", fmt.Sprintf("BioBot directory ready: %s", biobotDir))

	// ── 2. Write biobot.yaml if missing ───────────────────────────────────────
	cfgPath := flagConfig
	if cfgPath == "" {
		if cfgPath, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(config.DefaultConfig(), cfgPath); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. .env template ──────────────────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf("Credentials template ready: %s", envPath))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	printInfo("", fmt.Sprintf("dataset: %s", cfg.DataPath))
	printInfo("", fmt.Sprintf("index:   %s", cfg.IndexDir))
	fmt.Fprintln(stdout, "\nNext: run 'biobot index' to embed the dataset, then 'biobot search <query>'.")
	return nil
}
