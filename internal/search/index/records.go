package index

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agrobio/biobot/internal/search"

	_ "modernc.org/sqlite"
)

const rowColumn = "__row__"

func writeRecords(path, format string, columns []string, records []search.Record) error {
	switch format {
	case MetaJSONL:
		return writeRecordsJSONL(path, records)
	case MetaSQLite:
		return writeRecordsSQLite(path, columns, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetaFormat, format)
	}
}

func loadRecords(path, format string, columns []string) ([]search.Record, error) {
	switch format {
	case MetaJSONL:
		return loadRecordsJSONL(path)
	case MetaSQLite:
		return loadRecordsSQLite(path, columns)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetaFormat, format)
	}
}

func writeRecordsJSONL(path string, records []search.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create records file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, r := range records {
		fields := r.Fields
		if fields == nil {
			fields = map[string]string{}
		}
		line, err := json.Marshal(fields)
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func loadRecordsJSONL(path string) ([]search.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open records file %s: %w", path, err)
	}
	defer f.Close()

	var out []search.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var fields map[string]string
		if err := json.Unmarshal(line, &fields); err != nil {
			return nil, fmt.Errorf("invalid records JSONL %s (row %d): %w", path, len(out), err)
		}
		out = append(out, search.Record{Row: len(out), Fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read records file %s: %w", path, err)
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// writeRecordsSQLite stores records in a "records" table with one TEXT column per
// dataset column and the row position in __row__.
func writeRecordsSQLite(path string, columns []string, records []search.Record) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot replace records database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("cannot open records database: %w", err)
	}
	defer db.Close()

	defs := []string{quoteIdent(rowColumn) + " INTEGER PRIMARY KEY"}
	names := []string{quoteIdent(rowColumn)}
	marks := []string{"?"}
	for _, c := range columns {
		defs = append(defs, quoteIdent(c)+" TEXT NOT NULL")
		names = append(names, quoteIdent(c))
		marks = append(marks, "?")
	}
	if _, err := db.Exec("CREATE TABLE records (" + strings.Join(defs, ", ") + ")"); err != nil {
		return fmt.Errorf("cannot create records table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO records (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("cannot prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns)+1)
	for i, r := range records {
		args[0] = i
		for j, c := range columns {
			args[j+1] = r.Get(c)
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("cannot insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func loadRecordsSQLite(path string, columns []string) ([]search.Record, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open records database %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open records database %s: %w", path, err)
	}
	defer db.Close()

	names := []string{quoteIdent(rowColumn)}
	for _, c := range columns {
		names = append(names, quoteIdent(c))
	}
	rows, err := db.Query("SELECT " + strings.Join(names, ", ") + " FROM records ORDER BY " + quoteIdent(rowColumn))
	if err != nil {
		return nil, fmt.Errorf("cannot query records database %s: %w", path, err)
	}
	defer rows.Close()

	var out []search.Record
	for rows.Next() {
		var row int
		vals := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns)+1)
		dest[0] = &row
		for i := range vals {
			dest[i+1] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("cannot scan records row: %w", err)
		}
		if row != len(out) {
			return nil, fmt.Errorf("%w: records table row %d found at position %d", ErrRowMismatch, row, len(out))
		}
		fields := make(map[string]string, len(columns))
		for i, c := range columns {
			fields[c] = vals[i].String
		}
		out = append(out, search.Record{Row: row, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read records database %s: %w", path, err)
	}
	return out, nil
}
