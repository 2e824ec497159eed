// Package idgen provides ID generation: per-prefix sequential IDs for markup
// ("id-0", "field-3") and time-sortable UUIDv7 strings for reports.
package idgen

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// DefaultPrefix is used by Next and Sequence.Next for an empty prefix.
const DefaultPrefix = "id"

// Generator produces unique string identifiers.
type Generator func() string

// Sequence hands out "<prefix>-<n>" identifiers, counting from 0 separately
// for every prefix. Counters never reset. The zero value is ready to use.
type Sequence struct {
	mu   sync.Mutex
	next map[string]int
}

// Next returns the next identifier for prefix.
func (s *Sequence) Next(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s.mu.Lock()
	if s.next == nil {
		s.next = make(map[string]int)
	}
	n := s.next[prefix]
	s.next[prefix] = n + 1
	s.mu.Unlock()
	return prefix + "-" + strconv.Itoa(n)
}

// Generator returns a Generator drawing from prefix's counter.
func (s *Sequence) Generator(prefix string) Generator {
	return func() string { return s.Next(prefix) }
}

var global Sequence

// Next returns the next identifier for prefix from the process-wide sequence.
func Next(prefix string) string {
	return global.Next(prefix)
}

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Parse validates a UUID string and returns it in canonical form.
func Parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID: %w", err)
	}
	return u.String(), nil
}
