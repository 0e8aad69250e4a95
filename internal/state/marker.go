// Package state keeps small local facts between runs, such as the last day
// the missed-task check ran.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type markerState struct {
	LastChecked string `json:"last_checked"`
}

// FileMarker stores the last-checked calendar date in a JSON file. Writes go
// through a temp file and rename. An empty path keeps the marker in memory.
type FileMarker struct {
	path string

	mu     sync.Mutex
	memory string
}

func NewFileMarker(path string) *FileMarker {
	return &FileMarker{path: strings.TrimSpace(path)}
}

func (m *FileMarker) LastChecked() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		return m.memory, nil
	}
	raw, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", nil
	}
	var st markerState
	if err := json.Unmarshal(raw, &st); err != nil {
		return "", err
	}
	return strings.TrimSpace(st.LastChecked), nil
}

func (m *FileMarker) MarkChecked(day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		m.memory = day
		return nil
	}
	dir := filepath.Dir(m.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(markerState{LastChecked: day}, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
