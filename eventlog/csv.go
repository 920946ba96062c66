package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pta-xyz/go-pta/clock"
)

// fixedColumns precede the per-clock columns in the CSV layout.
var fixedColumns = []string{"run_id", "step", "delay", "edge", "outcome", "location", "time"}

// WriteCSV writes the log as CSV. The header names the fixed columns
// followed by one column per clock in sorted order. Runs appear in sorted
// run-ID order, events in step order.
func WriteCSV(w io.Writer, log *Log) error {
	log.SortRuns()
	clocks := log.clockNames()

	writer := csv.NewWriter(w)
	header := append(append([]string{}, fixedColumns...), clocks...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, runID := range log.RunIDs() {
		for _, event := range log.Runs[runID] {
			record := []string{
				event.RunID,
				strconv.Itoa(event.Step),
				formatFloat(event.Delay),
				event.Edge,
				strconv.Itoa(event.Outcome),
				event.Location,
				formatFloat(event.Time),
			}
			for _, name := range clocks {
				record = append(record, formatFloat(event.Clocks[name]))
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("writing run %s step %d: %w", event.RunID, event.Step, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the log to a CSV file.
func WriteCSVFile(filename string, log *Log) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return WriteCSV(f, log)
}

// ParseCSV parses a log from a CSV file.
func ParseCSV(filename string) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseCSVReader(f)
}

// ParseCSVReader parses a log from a CSV reader. The header must start with
// the fixed columns; every column after them is treated as a clock.
func ParseCSVReader(r io.Reader) (*Log, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < len(fixedColumns) {
		return nil, fmt.Errorf("header has %d columns, want at least %d", len(header), len(fixedColumns))
	}
	for i, want := range fixedColumns {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("header column %d is %q, want %q", i, header[i], want)
		}
	}
	clocks := header[len(fixedColumns):]

	log := NewLog()
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", lineNum, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: %d columns, want %d", lineNum, len(record), len(header))
		}

		event := Event{
			RunID:    strings.TrimSpace(record[0]),
			Edge:     strings.TrimSpace(record[3]),
			Location: strings.TrimSpace(record[5]),
			Clocks:   make(clock.Valuation, len(clocks)),
		}
		if event.RunID == "" {
			return nil, fmt.Errorf("line %d: empty run ID", lineNum)
		}
		if event.Location == "" {
			return nil, fmt.Errorf("line %d: empty location", lineNum)
		}

		if event.Step, err = strconv.Atoi(record[1]); err != nil {
			return nil, fmt.Errorf("line %d: invalid step %q: %w", lineNum, record[1], err)
		}
		if event.Delay, err = strconv.ParseFloat(record[2], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid delay %q: %w", lineNum, record[2], err)
		}
		if event.Outcome, err = strconv.Atoi(record[4]); err != nil {
			return nil, fmt.Errorf("line %d: invalid outcome %q: %w", lineNum, record[4], err)
		}
		if event.Time, err = strconv.ParseFloat(record[6], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid time %q: %w", lineNum, record[6], err)
		}
		for i, name := range clocks {
			value, err := strconv.ParseFloat(record[len(fixedColumns)+i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value for clock %q: %w", lineNum, name, err)
			}
			event.Clocks[name] = value
		}

		log.AddEvent(event)
	}

	log.SortRuns()
	return log, nil
}

// formatFloat renders a float so it round-trips through ParseFloat exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
