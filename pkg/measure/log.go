// Package measure keeps an in-memory, append-only log of labeled measurement
// values and exports it as CSV or aligned text.
package measure

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Record is one logged measurement.
type Record struct {
	Label  string
	Value  float64
	Unit   string
	Source string
	At     time.Time
}

// Log is an append-only measurement log. Later records with a repeated label
// shadow earlier ones in the AsMap view; the full history is preserved.
type Log struct {
	mu      sync.Mutex
	records []Record
}

// NewLog returns an empty measurement log.
func NewLog() *Log {
	return &Log{}
}

// Add appends a record, stamping it with the current time.
func (l *Log) Add(label string, value float64, unit, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Record{
		Label:  label,
		Value:  value,
		Unit:   unit,
		Source: source,
		At:     time.Now(),
	})
}

// All returns a copy of the records in insertion order.
func (l *Log) All() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Last returns the most recent record.
func (l *Log) Last() (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

// Clear drops all records.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// AsMap returns label -> value for use as the evaluator's measurement table.
// A repeated label yields its most recent value.
func (l *Log) AsMap() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := make(map[string]float64, len(l.records))
	for _, r := range l.records {
		m[r.Label] = r.Value
	}
	return m
}

// WriteCSV writes all records as CSV with a header row.
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "value", "unit", "source", "time"}); err != nil {
		return fmt.Errorf("measure: write csv: %w", err)
	}
	for _, r := range l.All() {
		row := []string{
			r.Label,
			strconv.FormatFloat(r.Value, 'g', -1, 64),
			r.Unit,
			r.Source,
			r.At.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("measure: write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes all records as aligned columns.
func (l *Log) WriteText(w io.Writer) error {
	for _, r := range l.All() {
		val := strconv.FormatFloat(r.Value, 'g', -1, 64)
		if r.Unit != "" {
			val += " " + r.Unit
		}
		if _, err := fmt.Fprintf(w, "%-20s %-18s %s\n", r.Label, val, r.Source); err != nil {
			return fmt.Errorf("measure: write text: %w", err)
		}
	}
	return nil
}

// SaveFile writes the log to path. Format is chosen by extension (.csv is
// CSV, everything else aligned text) unless format is given explicitly as
// "csv" or "txt".
func (l *Log) SaveFile(path, format string) error {
	if format == "" {
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			format = "csv"
		} else {
			format = "txt"
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("measure: %w", err)
	}
	defer f.Close()

	switch format {
	case "csv":
		err = l.WriteCSV(f)
	case "txt":
		err = l.WriteText(f)
	default:
		return fmt.Errorf("measure: unknown format %q", format)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
