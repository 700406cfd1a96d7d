package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err = w.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err = w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// marshalJSONL encodes each value as one JSONL record.
func marshalJSONL[T any](values []T) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal record: %w", err)
		}
		records = append(records, data)
	}
	return records, nil
}
