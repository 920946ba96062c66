package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSONL writes the log as JSON Lines, one event object per line. Runs
// appear in sorted run-ID order, events in step order.
func WriteJSONL(w io.Writer, log *Log) error {
	log.SortRuns()

	writer := bufio.NewWriter(w)
	encoder := json.NewEncoder(writer)
	for _, runID := range log.RunIDs() {
		for _, event := range log.Runs[runID] {
			if err := encoder.Encode(event); err != nil {
				return fmt.Errorf("encoding run %s step %d: %w", event.RunID, event.Step, err)
			}
		}
	}
	return writer.Flush()
}

// WriteJSONLFile writes the log to a JSONL file.
func WriteJSONLFile(filename string, log *Log) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return WriteJSONL(f, log)
}

// ParseJSONL parses a log from a JSONL file.
func ParseJSONL(filename string) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseJSONLReader(f)
}

// ParseJSONLReader parses a log from a JSONL reader. Empty lines are
// skipped.
func ParseJSONLReader(r io.Reader) (*Log, error) {
	log := NewLog()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if event.RunID == "" {
			return nil, fmt.Errorf("line %d: empty run ID", lineNum)
		}
		if event.Location == "" {
			return nil, fmt.Errorf("line %d: empty location", lineNum)
		}

		log.AddEvent(event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	log.SortRuns()
	return log, nil
}

// ParseJSONLBytes parses a log from JSONL bytes.
func ParseJSONLBytes(data []byte) (*Log, error) {
	return ParseJSONLReader(bytes.NewReader(data))
}
