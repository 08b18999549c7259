// Package session persists labeled page snapshots, so a known page can be
// re-entered without another labeling round.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"surfmate/label"
)

// ErrNotFound is returned when no snapshot matches the requested name.
var ErrNotFound = errors.New("session not found")

const fileExt = ".session"

// Snapshot is one saved page session.
type Snapshot struct {
	Name    string     `msgpack:"name"`
	URL     string     `msgpack:"url"`
	SavedAt time.Time  `msgpack:"saved_at"`
	Page    label.Page `msgpack:"page"`
}

// Store reads and writes snapshots under one directory.
type Store struct {
	dir string
}

// DefaultDir returns the stock session directory.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "surfmate", "sessions"), nil
}

// NewStore opens a store rooted at dir. The directory is created on first
// save, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the snapshot, stamping SavedAt and replacing any previous
// snapshot with the same name.
func (s *Store) Save(snap *Snapshot) error {
	if snap.Name == "" {
		return fmt.Errorf("session: name required")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	snap.SavedAt = time.Now()
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session: encoding %q: %w", snap.Name, err)
	}
	if err := os.WriteFile(s.path(snap.Name), data, 0644); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Load reads a snapshot by name. An empty name loads the most recently
// saved one.
func (s *Store) Load(name string) (*Snapshot, error) {
	if name == "" {
		return s.latest()
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("session: decoding %q: %w", name, err)
	}
	return &snap, nil
}

// List returns every snapshot, newest first. Unreadable files are skipped.
func (s *Store) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	var snaps []Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := msgpack.Unmarshal(data, &snap); err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].SavedAt.After(snaps[j].SavedAt)
	})
	return snaps, nil
}

// Delete removes a snapshot by name.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (s *Store) latest() (*Snapshot, error) {
	snaps, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	return &snaps[0], nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, slug(name)+fileExt)
}

// slug makes a name filesystem-safe. Distinct names can collide ("My Work"
// and "my-work"); the later save wins, same as an explicit overwrite.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
