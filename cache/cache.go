// Package cache provides a pluggable memoization layer for the engine's two
// expensive, purely-functional computations: parsing a pattern into an AST
// and compiling an AST into an automaton. Backend is the seam a caller can
// swap for a persisted store; InMemory is the only implementation shipped
// here (spec.md's Non-goals exclude filesystem/other pluggable backends --
// named by the interface only).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/regexray/regexray/ast"
)

// Backend is the storage seam for cached analysis artifacts (a marshaled
// AST, a serialized automaton). Keys are opaque strings produced by
// GenerateKey; values are caller-defined byte blobs (typically JSON or gob).
type Backend interface {
	// GenerateKey derives a stable cache key from a pattern, its flags, and
	// any extra discriminators (e.g. a compiler config fingerprint) that
	// affect the computation's output.
	GenerateKey(pattern string, flags ast.FlagSet, extra ...string) string
	Load(key string) (value []byte, ok bool)
	Write(key string, value []byte) error
	Clear()
	GetTimestamp(key string) (time.Time, bool)
}

// entry pairs a cached value with its insertion time and FIFO order.
type entry struct {
	value   []byte
	written time.Time
	seq     uint64
}

// InMemory is a bounded, thread-safe Backend: a map guarded by an RWMutex,
// evicting in FIFO order once Capacity is reached (directly grounded on
// dfa/lazy.Cache's map+RWMutex shape, simplified from state-ID bookkeeping
// to a plain byte-blob store). A singleflight.Group collapses concurrent
// Load-miss-then-Write races from distinct goroutines analyzing the same
// pattern onto one computation (automaton/dfa.Cache relies on this through
// LoadOrCompute rather than collapsing calls itself).
type InMemory struct {
	mu       sync.RWMutex
	entries  map[string]entry
	order    []string // insertion order, for FIFO eviction
	capacity int
	nextSeq  uint64

	group singleflight.Group

	hits   uint64
	misses uint64
}

// NewInMemory creates an InMemory backend holding at most capacity entries.
// capacity <= 0 means unbounded.
func NewInMemory(capacity int) *InMemory {
	return &InMemory{
		entries:  make(map[string]entry),
		capacity: capacity,
	}
}

// GenerateKey hashes the pattern, its canonical flag letters, and any extra
// discriminators into a fixed-width hex key, so cache keys never leak
// arbitrarily long pattern text into log lines or metrics labels.
func (c *InMemory) GenerateKey(pattern string, flags ast.FlagSet, extra ...string) string {
	h := sha256.New()
	h.Write([]byte(pattern))
	h.Write([]byte{0})
	h.Write([]byte(flags.String()))
	for _, e := range extra {
		h.Write([]byte{0})
		h.Write([]byte(e))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Load returns the cached value for key, if present.
func (c *InMemory) Load(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.hits++
		return e.value, true
	}
	c.misses++
	return nil, false
}

// Write stores value under key, evicting the oldest entry first if the
// cache is at capacity and key is new.
func (c *InMemory) Write(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.capacity > 0 && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.nextSeq++
	c.entries[key] = entry{value: value, written: time.Now(), seq: c.nextSeq}
	return nil
}

// evictOldestLocked removes the single oldest live entry. Called with mu
// held for writing.
func (c *InMemory) evictOldestLocked() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
			return
		}
	}
}

// Clear removes every cached entry and resets statistics.
func (c *InMemory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.order = nil
	c.hits = 0
	c.misses = 0
}

// GetTimestamp returns the time key was last written, if present.
func (c *InMemory) GetTimestamp(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.written, true
}

// Size returns the number of entries currently cached.
func (c *InMemory) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit/miss counters accumulated since the last Clear.
func (c *InMemory) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// LoadOrCompute returns the cached value for key if present; otherwise it
// calls compute exactly once even under concurrent callers racing on the
// same key (via singleflight), writes the result, and returns it.
func (c *InMemory) LoadOrCompute(key string, compute func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.Load(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.Load(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		if werr := c.Write(key, v); werr != nil {
			return nil, werr
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

var _ Backend = (*InMemory)(nil)

// KeyFor is a convenience wrapper combining GenerateKey with a short,
// human-inspectable prefix (useful in log lines and test assertions),
// e.g. "dfa:3fa9c1..." vs "ast:3fa9c1...".
func KeyFor(backend Backend, namespace, pattern string, flags ast.FlagSet, extra ...string) string {
	key := backend.GenerateKey(pattern, flags, extra...)
	if namespace == "" {
		return key
	}
	var b strings.Builder
	b.WriteString(namespace)
	b.WriteByte(':')
	b.WriteString(key)
	return b.String()
}
