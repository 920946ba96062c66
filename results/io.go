package results

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON writes a batch as indented JSON.
func WriteJSON(w io.Writer, batch *Batch) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(batch)
}

// WriteJSONFile writes a batch to a JSON file.
func WriteJSONFile(filename string, batch *Batch) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return WriteJSON(f, batch)
}

// ParseJSON reads a batch from JSON.
func ParseJSON(r io.Reader) (*Batch, error) {
	var batch Batch
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	if batch.Version == "" {
		return nil, fmt.Errorf("missing schema version")
	}
	return &batch, nil
}

// ParseJSONFile reads a batch from a JSON file.
func ParseJSONFile(filename string) (*Batch, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseJSON(f)
}
