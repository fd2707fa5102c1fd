package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrobio/biobot/internal/embeddings"
	"github.com/agrobio/biobot/internal/recommender"
	"github.com/agrobio/biobot/internal/search"
	"github.com/agrobio/biobot/internal/server"
)

var (
	flagSearchK        int
	flagSearchJSON     bool
	flagSearchIndexDir string
	flagSearchTimeout  time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Recommend biopesticides for a problem description",
	Long: `Embed the query with the index model and print the best matching records.

Example:
  biobot search "mildiu velloso en vid, temporada húmeda"
  biobot search --k 5 --json aphids on tomato`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchK, "k", recommender.DefaultK, "Number of recommendations")
	searchCmd.Flags().BoolVar(&flagSearchJSON, "json", false, "Print results as JSON")
	searchCmd.Flags().StringVar(&flagSearchIndexDir, "index-dir", "", "Index directory (default from config)")
	searchCmd.Flags().DurationVar(&flagSearchTimeout, "timeout", 60*time.Second, "Query timeout")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query is empty")
	}
	if flagSearchK <= 0 {
		return fmt.Errorf("--k must be a positive integer")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	indexDir := cfg.IndexDir
	overrideString(&indexDir, flagSearchIndexDir)

	providers, err := providerCache(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagSearchTimeout)
	defer cancel()
	return searchIndex(ctx, cmd.OutOrStdout(), indexDir, providers.Get, query, flagSearchK, flagSearchJSON)
}

// searchIndex opens the index in dir and writes the top k hits for query to w.
func searchIndex(ctx context.Context, w io.Writer, dir string, open embeddings.Opener, query string, k int, asJSON bool) error {
	rec, err := recommender.Open(dir, open)
	if err != nil {
		return fmt.Errorf("%w\nRun 'biobot index' to build the index.", err)
	}
	hits, err := rec.Search(ctx, query, k)
	if err != nil {
		return err
	}
	if asJSON {
		return printSearchJSON(w, query, hits)
	}
	printSearchResults(w, query, hits)
	return nil
}

// printSearchJSON writes hits in the POST /recommend response shape.
func printSearchJSON(w io.Writer, query string, hits []search.Hit) error {
	out := server.RecommendResponse{Query: query, Results: make([]server.Result, 0, len(hits))}
	for _, h := range hits {
		out.Results = append(out.Results, server.NewResult(h))
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printSearchResults(w io.Writer, query string, hits []search.Hit) {
	fmt.Fprintf(w, "\nbiobot search %q\n\n", query)
	fmt.Fprintf(w, "Results (%d found):\n", len(hits))
	for _, h := range hits {
		fmt.Fprintln(w)
		fmt.Fprintln(w, search.FormatSpanish(h))
		fmt.Fprintln(w, "---")
	}
}
