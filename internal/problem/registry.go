package problem

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrProblemExists   = errors.New("problem already registered")
	ErrProblemNotFound = errors.New("problem not found")
)

// Factory builds a runnable problem from params. It validates everything it
// can up front so Run only fails on cancellation.
type Factory func(params Params) (Runnable, error)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

func init() {
	registerBuiltins()
}

func registerBuiltins() {
	for name, factory := range map[string]Factory{
		"onemax":    newOneMax,
		"trap":      newTrap,
		"sphere":    newSphere,
		"rastrigin": newRastrigin,
	} {
		if err := Register(name, factory); err != nil {
			panic(err)
		}
	}
}

// Register adds a problem under its normalized name.
func Register(name string, factory Factory) error {
	name = Normalize(name)
	if name == "" {
		return errors.New("problem name is required")
	}
	if factory == nil {
		return errors.New("problem factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrProblemExists, name)
	}
	registry.m[name] = factory
	return nil
}

// Resolve builds the named problem. Aliases accepted by Normalize work too.
func Resolve(name string, params Params) (Runnable, error) {
	name = Normalize(name)
	registry.mu.RLock()
	factory, ok := registry.m[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProblemNotFound, name)
	}
	runnable, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return runnable, nil
}

func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetRegistryForTests() {
	registry.mu.Lock()
	registry.m = make(map[string]Factory)
	registry.mu.Unlock()
	registerBuiltins()
}
