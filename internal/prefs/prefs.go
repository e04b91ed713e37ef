// Package prefs handles shelf user preferences persistence.
// Preferences are stored in ~/.config/shelf/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for the storefront.
type Prefs struct {
	Theme    string `toml:"theme"`
	PageSize int    `toml:"page_size"`
	Sort     string `toml:"sort"`
}

const (
	defaultPrefsPath = "~/.config/shelf/prefs.toml"
	defaultTheme     = "Dracula"
	defaultPageSize  = 12
	defaultSort      = "default"
	maxPageSize      = 100
)

// Defaults returns the preferences used when nothing is saved.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, PageSize: defaultPageSize, Sort: defaultSort}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path. Any problem reading or
// parsing the file yields defaults; the error return is always nil.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Defaults(), nil // Graceful degradation
	}

	var prefs Prefs
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Defaults(), nil // Graceful degradation
	}
	return prefs.normalized(), nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func (p Prefs) normalized() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	p.PageSize = min(p.PageSize, maxPageSize)
	p.Sort = strings.TrimSpace(p.Sort)
	if p.Sort == "" {
		p.Sort = defaultSort
	}
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
