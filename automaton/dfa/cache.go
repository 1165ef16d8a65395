package dfa

import (
	"encoding/json"
	"fmt"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/cache"
	"github.com/regexray/regexray/charset"
)

// Cache memoizes compiled DFAs behind a cache.Backend, keyed on the
// pattern text, its flags, and the determinization/minimization/match-mode
// choices that affect the resulting automaton -- two calls that differ in
// DetAlgorithm or MinAlgorithm must not share a cache slot even though
// they compute equivalent automata, since spec.md's cache contract is
// keyed on the full compile configuration, not just the pattern text.
type Cache struct {
	backend cache.Backend
}

// NewCache wraps an existing cache.Backend (typically *cache.InMemory).
func NewCache(backend cache.Backend) *Cache {
	return &Cache{backend: backend}
}

// Key returns the cache key for a given compile configuration.
func (c *Cache) Key(pattern string, flags ast.FlagSet, matchMode string, det DetAlgorithm, min MinAlgorithm) string {
	return c.backend.GenerateKey(pattern, flags, matchMode, detAlgorithmName(det), minAlgorithmName(min))
}

// LoadOrCompute returns the cached DFA for key if present, otherwise runs
// compute, serializes the result into the cache, and returns it. Safe for
// concurrent callers compiling the same key (delegated to the backend's
// own singleflight collapsing, when it has one -- cache.InMemory does).
func (c *Cache) LoadOrCompute(key string, compute func() (*DFA, error)) (*DFA, error) {
	if raw, ok := c.backend.Load(key); ok {
		return decodeDFA(raw)
	}
	if lc, ok := c.backend.(interface {
		LoadOrCompute(string, func() ([]byte, error)) ([]byte, error)
	}); ok {
		raw, err := lc.LoadOrCompute(key, func() ([]byte, error) {
			d, err := compute()
			if err != nil {
				return nil, err
			}
			return encodeDFA(d)
		})
		if err != nil {
			return nil, err
		}
		return decodeDFA(raw)
	}
	d, err := compute()
	if err != nil {
		return nil, err
	}
	raw, err := encodeDFA(d)
	if err != nil {
		return nil, err
	}
	if err := c.backend.Write(key, raw); err != nil {
		return nil, err
	}
	return d, nil
}

func detAlgorithmName(a DetAlgorithm) string {
	if a == SubsetIndexed {
		return "subset_indexed"
	}
	return "subset"
}

func minAlgorithmName(a MinAlgorithm) string {
	if a == Hopcroft {
		return "hopcroft"
	}
	return "moore"
}

// dfaDTO is the JSON-serializable mirror of DFA: charset.CharSet doesn't
// export its internal ranges, so each alphabet symbol is flattened to its
// Range slice via CharSet.Ranges() and rebuilt with charset.New on load.
type dfaDTO struct {
	Alphabet [][]charset.Range `json:"alphabet"`
	States   []State           `json:"states"`
	Start    int               `json:"start"`
}

func encodeDFA(d *DFA) ([]byte, error) {
	dto := dfaDTO{Start: d.Start, States: d.States}
	for _, set := range d.Alphabet {
		dto.Alphabet = append(dto.Alphabet, set.Ranges())
	}
	return json.Marshal(dto)
}

func decodeDFA(raw []byte) (*DFA, error) {
	var dto dfaDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, fmt.Errorf("dfa: decode cached automaton: %w", err)
	}
	alphabet := make([]charset.CharSet, len(dto.Alphabet))
	for i, ranges := range dto.Alphabet {
		alphabet[i] = charset.New(ranges...)
	}
	return &DFA{Alphabet: alphabet, States: dto.States, Start: dto.Start}, nil
}
