package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Store is the persistence boundary for [Data]. Load reports absence via
// the boolean rather than an error; Save replaces the stored value whole.
type Store interface {
	Load() (*Data, bool, error)
	Save(*Data) error
}

// FileStore persists the configuration as a TOML file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (*Data, bool, error) {
	raw, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read config file: %w", err)
	}

	var data Data
	if err := toml.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("failed to parse config: %w", err)
	}
	return &data, true, nil
}

func (s *FileStore) Save(data *Data) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(s.Path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MemStore is an in-memory [Store] for tests.
type MemStore struct {
	Data  *Data
	Saves int
	Err   error
}

func (s *MemStore) Load() (*Data, bool, error) {
	if s.Err != nil {
		return nil, false, s.Err
	}
	if s.Data == nil {
		return nil, false, nil
	}
	d := *s.Data
	return &d, true, nil
}

func (s *MemStore) Save(data *Data) error {
	if s.Err != nil {
		return s.Err
	}
	d := *data
	s.Data = &d
	s.Saves++
	return nil
}
