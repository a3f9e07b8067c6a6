// Package options tracks boolean feature flags by name.
package options

import (
	"sort"
	"sync"
)

// Set is a concurrency-safe set of enabled option names. The zero value is
// ready to use.
type Set struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// Check reports whether name is enabled.
func (s *Set) Check(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

// Enable turns name on. Enabling twice has no further effect.
func (s *Set) Enable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	s.names[name] = struct{}{}
}

// Disable turns name off. Disabling an option that was never enabled is a no-op.
func (s *Set) Disable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, name)
}

// List returns the enabled names in sorted order.
func (s *Set) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of enabled options.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}
