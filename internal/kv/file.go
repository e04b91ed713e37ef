package kv

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fileSuffix = ".json"

// FileBackend stores each key as <dir>/<key>.json.
type FileBackend struct {
	mu  sync.Mutex
	dir string
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Set writes through a temp file and rename so readers never see a torn value.
func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileBackend) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	matches, err := filepath.Glob(filepath.Join(f.dir, "*"+fileSuffix))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileSuffix)
}
