// Package prefs is a small file-backed preferences store. Its only
// consumer today is the theme toggle.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	themeKey = "theme"

	// ThemeEnvVar lets the environment signal a preferred theme when
	// nothing has been persisted yet.
	ThemeEnvVar = "ANALYZER_THEME"
)

// Store persists string preferences as a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store at path, ensuring the parent directory exists.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Theme resolves the active theme: the persisted value first, then the
// environment signal, then light.
func (s *Store) Theme() string {
	if v := s.get(themeKey); v == ThemeLight || v == ThemeDark {
		return v
	}
	if v := os.Getenv(ThemeEnvVar); v == ThemeLight || v == ThemeDark {
		return v
	}
	return ThemeLight
}

// SetTheme persists the theme. Only "light" and "dark" are accepted.
func (s *Store) SetTheme(v string) error {
	if v != ThemeLight && v != ThemeDark {
		return fmt.Errorf("unknown theme %q", v)
	}
	return s.set(themeKey, v)
}

func (s *Store) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[key]
}

func (s *Store) set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.load()
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	return nil
}

// load reads the file, treating a missing or unreadable file as empty.
func (s *Store) load() map[string]string {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	_ = json.Unmarshal(data, &values)
	return values
}
