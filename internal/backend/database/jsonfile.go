package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const defaultDataDirectory = "."

// JSONFileDatabase keeps every collection as a pretty-printed JSON array in
// its own file named data_<collection>.json.
type JSONFileDatabase struct {
	directory string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewJSONFileDatabase(directory string) (DatabaseService, error) {
	if directory == "" {
		directory = defaultDataDirectory
	}
	return &JSONFileDatabase{
		directory: directory,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

func (s *JSONFileDatabase) CreateDatabase() error {
	if err := os.MkdirAll(s.directory, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.directory, err)
	}
	return nil
}

func (s *JSONFileDatabase) DoesDatabaseExist() bool {
	info, err := os.Stat(s.directory)
	return err == nil && info.IsDir()
}

func (s *JSONFileDatabase) Close() error {
	return nil
}

func (s *JSONFileDatabase) GetEntries(_ context.Context, collection string) ([]json.RawMessage, error) {
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.readRecords(collection)
}

func (s *JSONFileDatabase) AppendEntry(_ context.Context, collection string, entry Entry) error {
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readRecords(collection)
	if err != nil {
		return err
	}
	record, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry for %s: %w", collection, err)
	}
	return s.writeRecords(collection, append(records, record))
}

// FilePath returns the file backing the given collection.
func (s *JSONFileDatabase) FilePath(collection string) string {
	return filepath.Join(s.directory, fmt.Sprintf("data_%s.json", collection))
}

func (s *JSONFileDatabase) collectionLock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[collection] = lock
	}
	return lock
}

// readRecords treats a missing or empty file, or content that is not a JSON
// array, as an empty collection. Parse failures are logged and never returned
// to the caller. Array elements are kept verbatim, whatever their shape.
func (s *JSONFileDatabase) readRecords(collection string) ([]json.RawMessage, error) {
	path := s.FilePath(collection)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file %s: %w", path, err)
	}
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Error("failed to parse collection file, treating collection as empty",
			"collection", collection, "path", path, "error", err)
		return []json.RawMessage{}, nil
	}
	if records == nil {
		// literal "null"
		return []json.RawMessage{}, nil
	}
	for i, record := range records {
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, record); err != nil {
			return nil, fmt.Errorf("failed to compact record %d of %s: %w", i, path, err)
		}
		records[i] = compacted.Bytes()
	}
	return records, nil
}

func (s *JSONFileDatabase) writeRecords(collection string, records []json.RawMessage) error {
	path := s.FilePath(collection)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write collection file %s: %w", path, err)
	}
	return nil
}
