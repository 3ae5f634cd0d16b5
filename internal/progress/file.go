package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FilePersister keeps the map as a JSON object in a single file.
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Load returns an empty map when the file does not exist yet.
func (p *FilePersister) Load(_ context.Context) (Map, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return m, nil
}

// Save writes to a temporary file and renames it over the old one.
func (p *FilePersister) Save(_ context.Context, m Map) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return os.Rename(tmp, p.path)
}

// MemoryPersister keeps the encoded map in memory.
type MemoryPersister struct {
	Data    []byte
	SaveErr error
	Saves   int
}

func (p *MemoryPersister) Load(_ context.Context) (Map, error) {
	if p.Data == nil {
		return Map{}, nil
	}
	var m Map
	if err := json.Unmarshal(p.Data, &m); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return m, nil
}

func (p *MemoryPersister) Save(_ context.Context, m Map) error {
	p.Saves++
	if p.SaveErr != nil {
		return p.SaveErr
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	p.Data = data
	return nil
}
