package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agrobio/biobot/internal/search"
	searchindex "github.com/agrobio/biobot/internal/search/index"
)

var (
	flagInspectIndexDir string
	flagInspectText     bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <name|row>",
	Short: "Show the stored fields of indexed records",
	Long: `Display every stored field of an indexed record.

The argument can be either:
  - A row number (e.g. 12)
  - A record name; exact (case-insensitive) matches win, otherwise every
    record whose name contains the argument is shown

Example:
  biobot inspect 0
  biobot inspect beauveria --text`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&flagInspectIndexDir, "index-dir", "", "Index directory (default from config)")
	inspectCmd.Flags().BoolVar(&flagInspectText, "text", false, "Also print the search text that was embedded")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.IndexDir
	overrideString(&dir, flagInspectIndexDir)

	idx, err := searchindex.Load(dir)
	if err != nil {
		return fmt.Errorf("%w\nRun 'biobot index' to build the index.", err)
	}

	matches, err := resolveRecords(idx.Records, strings.Join(args, " "))
	if err != nil {
		return err
	}
	for i, rec := range matches {
		if i > 0 {
			fmt.Fprintln(stdout, strings.Repeat("─", 50))
		}
		printRecord(idx, rec)
	}
	return nil
}

// resolveRecords finds the records matching arg: a row number, then exact names, then
// substring matches on names (case-insensitive).
func resolveRecords(records []search.Record, arg string) ([]search.Record, error) {
	arg = strings.TrimSpace(arg)
	if row, err := strconv.Atoi(arg); err == nil {
		if row < 0 || row >= len(records) {
			return nil, fmt.Errorf("row %d out of range (index has %d records)", row, len(records))
		}
		return []search.Record{records[row]}, nil
	}

	lower := strings.ToLower(arg)
	var exact, partial []search.Record
	for _, r := range records {
		name := strings.ToLower(r.Get(search.ColName))
		switch {
		case name == lower:
			exact = append(exact, r)
		case strings.Contains(name, lower):
			partial = append(partial, r)
		}
	}
	if len(exact) > 0 {
		return exact, nil
	}
	if len(partial) > 0 {
		return partial, nil
	}
	return nil, fmt.Errorf("no record named %q.\nTip: run 'biobot search %s' to find related records.", arg, arg)
}

// printRecord displays one record's fields in dataset column order.
func printRecord(idx *searchindex.Index, rec search.Record) {
	fmt.Fprintf(stdout, "🌿 %s (row %d)\n", rec.Get(search.ColName), rec.Row)

	cols := idx.Config.Columns
	if len(cols) == 0 {
		cols = search.OutputColumns
	}
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for _, c := range cols {
		if c == search.ColName {
			continue
		}
		v := rec.Get(c)
		if v == "" {
			v = "—"
		}
		fmt.Fprintf(w, "  %s:\t%s\n", c, v)
	}
	_ = w.Flush()

	if flagInspectText {
		fmt.Fprintln(stdout, "\nSearch text:")
		for _, line := range strings.Split(searchindex.SearchText(rec, idx.Config.ColsEN, idx.Config.ColsES), "\n") {
			fmt.Fprintf(stdout, "  %s\n", line)
		}
	}
}
