package repository

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/iliyamo/church-check-in/internal/model"
	"github.com/iliyamo/church-check-in/internal/store"
)

// LogHeader is the attendance log table schema, in column order.
var LogHeader = []string{"Name", "Role", "Date", "CheckIn", "CheckOut", "Method", "Parent"}

const (
	logColName = iota
	logColRole
	logColDate
	logColCheckIn
	logColCheckOut
	logColMethod
	logColParent
)

// LogRepo provides reads and mutations on the attendance log table.
type LogRepo struct {
	tbl *store.Table
}

// NewLogRepo binds the repo to a logs table.
func NewLogRepo(tbl *store.Table) *LogRepo {
	return &LogRepo{tbl: tbl}
}

// List returns every log entry in table order.
func (r *LogRepo) List() ([]model.LogEntry, error) {
	rows, err := r.tbl.Load()
	if err != nil {
		return nil, err
	}
	entries := make([]model.LogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, logFromRow(row))
	}
	return entries, nil
}

// Append writes one or more entries in a single table rewrite, so a parent
// and their selected children land together.
func (r *LogRepo) Append(entries ...model.LogEntry) error {
	return r.tbl.Update(func(rows [][]string) ([][]string, error) {
		for _, e := range entries {
			rows = append(rows, logToRow(e))
		}
		return rows, nil
	})
}

// IsCheckedIn reports whether an open entry (empty checkout) exists for the
// given name on the given date. Name comparison is case-insensitive on the
// trimmed value, matching how names are normalized at write time.
func (r *LogRepo) IsCheckedIn(name, date string) (bool, error) {
	entries, err := r.List()
	if err != nil {
		return false, err
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, e := range entries {
		if strings.ToLower(e.Name) == want && e.Date == date && e.Open() {
			return true, nil
		}
	}
	return false, nil
}

// CheckOut sets the checkout time on every open entry for the given date
// whose name is in names. It returns how many entries were closed; zero
// means no active check-in matched and nothing was written.
func (r *LogRepo) CheckOut(names []string, date, timeStr string) (int, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}
	matched := 0
	err := r.tbl.Update(func(rows [][]string) ([][]string, error) {
		for i, row := range rows {
			if !want[strings.ToLower(strings.TrimSpace(row[logColName]))] {
				continue
			}
			if strings.TrimSpace(row[logColDate]) != date || strings.TrimSpace(row[logColCheckOut]) != "" {
				continue
			}
			rows[i][logColCheckOut] = timeStr
			matched++
		}
		if matched == 0 {
			return nil, ErrNotFound
		}
		return rows, nil
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

// Delete removes the entry at the given positional index.
func (r *LogRepo) Delete(index int) error {
	return r.tbl.Update(func(rows [][]string) ([][]string, error) {
		if index < 0 || index >= len(rows) {
			return nil, ErrBadIndex
		}
		return append(rows[:index], rows[index+1:]...), nil
	})
}

// Reset clears the table back to header-only.
func (r *LogRepo) Reset() error {
	return r.tbl.Reset()
}

// Export renders the current table, header included, as CSV bytes for the
// download endpoint.
func (r *LogRepo) Export() ([]byte, error) {
	rows, err := r.tbl.Load()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(LogHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func logToRow(e model.LogEntry) []string {
	return []string{e.Name, string(e.Role), e.Date, e.CheckIn, e.CheckOut, e.Method, e.Parent}
}

func logFromRow(row []string) model.LogEntry {
	return model.LogEntry{
		Name:     strings.TrimSpace(row[logColName]),
		Role:     model.Role(strings.TrimSpace(row[logColRole])),
		Date:     strings.TrimSpace(row[logColDate]),
		CheckIn:  strings.TrimSpace(row[logColCheckIn]),
		CheckOut: strings.TrimSpace(row[logColCheckOut]),
		Method:   strings.TrimSpace(row[logColMethod]),
		Parent:   strings.TrimSpace(row[logColParent]),
	}
}
