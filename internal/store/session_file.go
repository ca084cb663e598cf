package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	filePrefix = "session_"
	fileSuffix = ".json"
)

// FileStore keeps one indented JSON file per session in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

var _ SessionStore = (*FileStore)(nil)

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the session files.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, filePrefix+id+fileSuffix)
}

func (f *FileStore) Save(_ context.Context, rec *SessionRecord) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	stampRecord(rec)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", rec.ID, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Write then rename so readers never see a torn file.
	tmp, err := os.CreateTemp(f.dir, filePrefix+rec.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session %s: %w", rec.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(rec.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, id string) (*SessionRecord, error) {
	if err := ValidateID(id); err != nil {
		return nil, nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read(f.path(id))
}

func (f *FileStore) read(path string) (*SessionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &rec, nil
}

func (f *FileStore) List(_ context.Context) ([]SessionSummary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", f.dir, err)
	}

	var out []SessionSummary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		rec, err := f.read(filepath.Join(f.dir, name))
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec.SessionSummary)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
