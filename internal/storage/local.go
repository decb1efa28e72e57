package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
)

// LocalStorage keeps records in a single pretty-printed JSON file.
type LocalStorage struct {
	path string
}

func NewLocalStorage(path string) *LocalStorage {
	return &LocalStorage{path: path}
}

func (l *LocalStorage) Path() string {
	return l.path
}

// Exists reports whether the records file is present.
func (l *LocalStorage) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

func (l *LocalStorage) Load(_ context.Context) (*models.Records, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewRecords(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	records := models.NewRecords()
	if err := json.Unmarshal(data, records); err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", l.path, err)
	}
	return records, nil
}

func (l *LocalStorage) Save(_ context.Context, records *models.Records) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create records directory: %w", err)
		}
	}

	// Write to temporary file first for atomicity
	tempFile := l.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}
	if err := os.Rename(tempFile, l.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename records file: %w", err)
	}
	return nil
}
