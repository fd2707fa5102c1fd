package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrobio/biobot/internal/config"
	"github.com/agrobio/biobot/internal/embeddings"
	searchindex "github.com/agrobio/biobot/internal/search/index"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that BioBot's config, dataset, embeddings settings and index are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues in the BioBot environment.

Currently fixes:
  - Leftovers of interrupted index builds: temp build dirs and the swap backup

Run 'biobot doctor' first to see what will be fixed.`,
	RunE: runDoctorFix,
}

func runDoctorFix(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("biobot doctor fix")

	fmt.Fprintln(stdout, "\n[ Interrupted builds ]")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	unlock, err := searchindex.AcquireBuildLock(ctx, cfg.IndexDir, 2*time.Second)
	if err != nil {
		return fmt.Errorf("cannot clean up while a build is running: %w", err)
	}
	defer unlock()

	removed, err := searchindex.RemoveStale(cfg.IndexDir)
	if err != nil {
		printErr("", err.Error())
		return fmt.Errorf("cleanup failed")
	}
	if len(removed) == 0 {
		printOK("", "no leftover build directories found — nothing to fix")
		return nil
	}
	for _, p := range removed {
		printOK("", fmt.Sprintf("deleted %s", p))
	}
	return nil
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("biobot doctor")
	fmt.Fprintln(stdout)

	// ── Check 1: config file ──────────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ biobot.yaml ]")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", fmt.Sprintf("%s not found — using defaults (run 'biobot init')", cfgPath))
	}
	cfg, loadErr := loadConfig()
	if loadErr != nil {
		failD("cannot load config: %v", loadErr)
	} else {
		printOK("", fmt.Sprintf("config OK — index dir %s", cfg.IndexDir))
	}
	fmt.Fprintln(stdout)

	// ── Check 2: dataset ──────────────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Dataset ]")
	if loadErr == nil {
		if st, err := os.Stat(cfg.DataPath); err != nil {
			printWarn("", fmt.Sprintf("dataset not found at %s — needed only for 'biobot index'", cfg.DataPath))
		} else {
			printOK("", fmt.Sprintf("%s (%d bytes)", cfg.DataPath, st.Size()))
		}
	} else {
		printWarn("", "skipped (config not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Check 3: embeddings settings ──────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Embeddings ]")
	var embCfg *embeddings.Config
	if loadErr == nil {
		var err error
		embCfg, err = embeddings.LoadConfig(cfg.Embeddings)
		switch {
		case err != nil:
			failD("cannot resolve embeddings config: %v", err)
		case embCfg.Provider == "" || embCfg.Model == "":
			failD("embeddings provider/model not set (BIOBOT_EMBEDDINGS_PROVIDER, BIOBOT_EMBEDDINGS_MODEL)")
		default:
			printOK("", fmt.Sprintf("%s:%s", embCfg.Provider, embCfg.Model))
			if embCfg.Provider == embeddings.ProviderOpenAI && embCfg.APIKey == "" && embCfg.BaseURL == "" {
				printWarn("", "no API key set (BIOBOT_EMBEDDINGS_API_KEY or OPENAI_API_KEY)")
			}
		}
	} else {
		printWarn("", "skipped (config not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Check 4: index artifacts ──────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Index ]")
	if loadErr == nil {
		idx, err := searchindex.Load(cfg.IndexDir)
		if err != nil {
			failD("index not usable: %v — run 'biobot index'", err)
		} else {
			printOK("", idx.Summary())
			if embCfg != nil && embCfg.Provider != "" {
				if want := embCfg.Provider + ":" + embCfg.Model; want != idx.Config.Model {
					printWarn("", fmt.Sprintf("index built with %s, config selects %s — queries use the index model; rebuild to switch", idx.Config.Model, want))
				}
			}
		}
	} else {
		printWarn("", "skipped (config not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Check 5: interrupted builds ───────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Interrupted builds ]")
	if loadErr == nil {
		stale, err := searchindex.StaleArtifacts(cfg.IndexDir)
		switch {
		case err != nil:
			failD("cannot scan for leftovers: %v", err)
		case len(stale) == 0:
			printOK("", "no leftover build directories found")
		default:
			for _, p := range stale {
				printWarn("", p)
			}
			fmt.Fprintf(stdout, "\n  "+glyphWarn+"  %d leftover build dir(s) found. Run 'biobot doctor fix' to remove them.\n", len(stale))
			allOK = false
		}
	} else {
		printWarn("", "skipped (config not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Fprintln(stdout, "===================")
	if allOK {
		fmt.Fprintln(stdout, glyphOK+"  All checks passed. BioBot is ready to use.")
	} else {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	return nil
}
