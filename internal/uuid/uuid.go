// Package uuid generates identifiers behind an interface so tests can
// substitute deterministic ones.
package uuid

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator is an interface for generating unique string IDs
type Generator interface {
	New() string
}

// GoogleUUIDGenerator implements Generator using Google's UUID package
type GoogleUUIDGenerator struct{}

// New generates a new random (v4) UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// SequentialGenerator hands out "<prefix>-1", "<prefix>-2", ...
type SequentialGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequentialGenerator creates a generator for predictable IDs
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// New returns the next ID in the sequence
func (g *SequentialGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}
