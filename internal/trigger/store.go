package trigger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Store provides thread-safe persistence of triggers to a JSON file.
type Store struct {
	path     string
	triggers map[string]Trigger // keyed by Trigger.ID
	mu       sync.RWMutex
}

// NewStore creates a Store backed by the given file path.
// If the file does not exist it will be created on the first Save.
func NewStore(path string) *Store {
	return &Store{
		path:     path,
		triggers: make(map[string]Trigger),
	}
}

// Load reads persisted triggers from disk. It is safe to call on a missing file.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // first run, nothing to load
		}
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var triggers []Trigger
	if err := sonic.Unmarshal(data, &triggers); err != nil {
		return fmt.Errorf("unmarshal store: %w", err)
	}

	s.triggers = make(map[string]Trigger, len(triggers))
	for _, tr := range triggers {
		s.triggers[tr.ID] = tr
	}
	return nil
}

// Save writes all triggers to disk atomically (tmp + rename).
func (s *Store) Save() error {
	s.mu.RLock()
	triggers := make([]Trigger, 0, len(s.triggers))
	for _, tr := range s.triggers {
		triggers = append(triggers, tr)
	}
	s.mu.RUnlock()

	sort.Slice(triggers, func(i, j int) bool { return triggers[i].ID < triggers[j].ID })

	data, err := sonic.Marshal(triggers)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}

// Add inserts a new trigger. Returns an error if the ID already exists.
func (s *Store) Add(tr Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.triggers[tr.ID]; exists {
		return fmt.Errorf("trigger already exists: %s", tr.ID)
	}
	s.triggers[tr.ID] = tr
	return nil
}

// Update replaces an existing trigger by ID.
func (s *Store) Update(tr Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers[tr.ID] = tr
}

// Remove deletes a trigger by ID.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.triggers, id)
}

// Get returns a trigger by ID.
func (s *Store) Get(id string) (Trigger, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tr, ok := s.triggers[id]
	return tr, ok
}

// List returns all triggers ordered by creation time, then ID.
func (s *Store) List() []Trigger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Trigger, 0, len(s.triggers))
	for _, tr := range s.triggers {
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListDue returns enabled triggers whose NextRunAt is at or before now.
func (s *Store) ListDue(now time.Time) []Trigger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var due []Trigger
	for _, tr := range s.triggers {
		if !tr.Enabled {
			continue
		}
		if tr.NextRunAt != nil && !tr.NextRunAt.After(now) {
			due = append(due, tr)
		}
	}
	return due
}
