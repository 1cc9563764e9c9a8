// Package registry provides a global registry of named rule presets.
// Presets register themselves in init() functions, allowing the CLI to
// list and instantiate rules without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/casim/internal/ca"
)

// RuleInfo contains metadata about a registered preset.
type RuleInfo struct {
	ID          string
	Title       string
	Description string
	NumStates   int
	Stability   ca.Stability
}

// Preset describes how to build a rule.
type Preset struct {
	Title       string
	Description string
	NumStates   int
	Stability   ca.Stability
	// New creates a fresh rule instance. Rules keep evaluation state, so
	// every simulation needs its own.
	New func() (ca.Rule, error)
}

var (
	presets = make(map[string]Preset)
	mu      sync.RWMutex
)

// Register adds a preset to the registry.
// Panics if a preset with the same ID is already registered.
func Register(id string, p Preset) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := presets[id]; exists {
		panic(fmt.Sprintf("registry: rule %q already registered", id))
	}
	presets[id] = p
}

// List returns information about all registered presets, sorted by ID.
func List() []RuleInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]RuleInfo, 0, len(presets))
	for id, p := range presets {
		result = append(result, RuleInfo{
			ID:          id,
			Title:       p.Title,
			Description: p.Description,
			NumStates:   p.NumStates,
			Stability:   p.Stability,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a rule by its preset ID.
// Returns an error if the ID is not registered.
func Create(id string) (ca.Rule, error) {
	mu.RLock()
	p, ok := presets[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown rule %q", id)
	}
	return p.New()
}

// Exists checks if a preset with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := presets[id]
	return ok
}
