package schema

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists baseline schemas on disk, one JSON file per (method, url)
// content hash. The first schema written for a key becomes the baseline;
// later writes are no-ops, so a baseline only changes when its file is
// deleted externally.
type Store struct {
	dir string
}

// NewStore creates the schema directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create schema directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Key returns the content-hash address for a (method, url) pair.
func Key(method, url string) string {
	sum := md5.Sum([]byte(method + " " + url))
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(method, url string) string {
	return filepath.Join(s.dir, Key(method, url)+".json")
}

// Load returns the persisted baseline for (method, url), or ok=false when
// none exists yet.
func (s *Store) Load(method, url string) (map[string]interface{}, bool, error) {
	data, err := os.ReadFile(s.path(method, url))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read schema file: %w", err)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, false, &SchemaError{Detail: fmt.Sprintf("persisted schema is not valid JSON: %v", err)}
	}
	return schema, true, nil
}

// Save persists schema as the baseline for (method, url) if none exists.
// The create-if-absent open makes persist-once safe even if runs overlap.
// It reports whether this call created the baseline.
func (s *Store) Save(method, url string, schema map[string]interface{}) (bool, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal schema: %w", err)
	}
	f, err := os.OpenFile(s.path(method, url), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create schema file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return false, fmt.Errorf("failed to write schema file: %w", err)
	}
	return true, nil
}
