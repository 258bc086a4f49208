package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Table is one flat CSV file treated as an ordered sequence of string rows.
// Every mutation goes through load-entire-file, mutate in memory, rewrite-
// entire-file; the mutex enforces the single-writer discipline so the
// whole-table-replace contract holds for all callers in this process.
// There is deliberately no cross-process locking: the deployment target is
// a single kiosk.
type Table struct {
	mu     sync.Mutex
	path   string
	header []string
}

// NewTable binds a table to its backing file. The header names the current
// schema; rows read with fewer columns are padded up to it so a schema that
// grew a trailing column keeps accepting old files.
func NewTable(path string, header []string) *Table {
	return &Table{path: path, header: append([]string(nil), header...)}
}

// Path returns the backing file location.
func (t *Table) Path() string { return t.path }

// Header returns a copy of the schema header row.
func (t *Table) Header() []string { return append([]string(nil), t.header...) }

// Load reads every data row, excluding the header. A missing file is an
// empty table. Short rows are padded to the schema width; rows wider than
// the schema are returned as-is.
func (t *Table) Load() ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

func (t *Table) load() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may predate the current schema
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}

	var rows [][]string
	for i, rec := range records {
		if i == 0 && t.isHeader(rec) {
			continue
		}
		rows = append(rows, t.pad(rec))
	}
	return rows, nil
}

// Save replaces the entire table with the given rows, header first. The
// content is written to a temp file in the same directory and renamed into
// place so a reader never observes a half-written table.
func (t *Table) Save(rows [][]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(rows)
}

func (t *Table) save(rows [][]string) error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", t.path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(t.pad(row)); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", t.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("replace %s: %w", t.path, err)
	}
	return nil
}

// Append adds one row at the end of the table, rewriting the whole file.
func (t *Table) Append(row []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows, err := t.load()
	if err != nil {
		return err
	}
	return t.save(append(rows, t.pad(row)))
}

// Update runs fn over the loaded rows and writes the result back under a
// single lock acquisition, so read-modify-write sequences cannot interleave
// with other mutations on the same table.
func (t *Table) Update(fn func(rows [][]string) ([][]string, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows, err := t.load()
	if err != nil {
		return err
	}
	out, err := fn(rows)
	if err != nil {
		return err
	}
	return t.save(out)
}

// Reset truncates the table to header-only.
func (t *Table) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(nil)
}

// isHeader detects a header row by the sentinel value in its first column.
func (t *Table) isHeader(rec []string) bool {
	return len(rec) > 0 && len(t.header) > 0 && rec[0] == t.header[0]
}

func (t *Table) pad(rec []string) []string {
	if len(rec) >= len(t.header) {
		return rec
	}
	out := make([]string, len(t.header))
	copy(out, rec)
	return out
}
