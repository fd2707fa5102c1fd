package index

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agrobio/biobot/internal/search"
)

// Dataset is a cleaned source table: normalized headers and normalized cells.
type Dataset struct {
	Columns []string
	Records []search.Record
}

// ReadDataset reads a CSV (or .tsv) file into a Dataset. Headers are normalized with
// NormalizeColumn, every cell with search.Normalize; missing-value markers such as
// "NA" or "nan" become empty. Short rows are padded with empty
// values; cells beyond the header are dropped.
func ReadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open dataset %s: %w", path, err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	ds, err := parseDataset(f, comma)
	if err != nil {
		return nil, fmt.Errorf("cannot parse dataset %s: %w", path, err)
	}
	return ds, nil
}

func parseDataset(r io.Reader, comma rune) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, err
	}
	columns := uniqueColumns(header)

	ds := &Dataset{Columns: columns}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			v := ""
			if i < len(row) && !missingValues[row[i]] {
				v = search.Normalize(row[i])
			}
			fields[col] = v
		}
		ds.Records = append(ds.Records, search.Record{Row: len(ds.Records), Fields: fields})
	}
	if len(ds.Records) == 0 {
		return nil, ErrEmptyDataset
	}
	return ds, nil
}

// missingValues are the cell spellings read as a missing value (pandas' default
// na_values). Matching is exact, as in read_csv.
var missingValues = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "-NaN": true, "-nan": true,
	"1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// uniqueColumns normalizes header names, names blank headers "Unnamed: <i>" and
// suffixes repeats with ".1", ".2", ...
func uniqueColumns(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := NormalizeColumn(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
