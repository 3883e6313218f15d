package ai

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps provider names to implementations and tracks a default.
// It is an explicit value constructed once and passed by reference; operations
// are guarded by a mutex so register/unregister/setDefault are never
// observable half-applied.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	defaultName string
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under the given name. Names are normalized to
// lowercase. The first registration becomes the default; re-registering an
// existing name overwrites it without changing the provider count.
func (r *Registry) Register(name string, provider Provider) error {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return &InvalidProviderError{Name: name, Reason: "name must not be empty"}
	}
	if provider == nil {
		return &InvalidProviderError{Name: normalized, Reason: "provider must not be nil"}
	}

	info := provider.Info()
	switch {
	case info.Name == "":
		return &InvalidProviderError{Name: normalized, Reason: "provider info missing name"}
	case info.DisplayName == "":
		return &InvalidProviderError{Name: normalized, Reason: "provider info missing displayName"}
	case len(info.SupportedModels) == 0:
		return &InvalidProviderError{Name: normalized, Reason: "provider info missing supportedModels"}
	case info.DefaultModel == "":
		return &InvalidProviderError{Name: normalized, Reason: "provider info missing defaultModel"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[normalized] = provider
	if r.defaultName == "" {
		r.defaultName = normalized
	}
	return nil
}

// Get returns the provider registered under name (case-insensitive) or nil
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[strings.ToLower(strings.TrimSpace(name))]
}

// GetOrError returns the provider registered under name or ProviderNotFoundError
func (r *Registry) GetOrError(name string) (Provider, error) {
	if p := r.Get(name); p != nil {
		return p, nil
	}
	return nil, &ProviderNotFoundError{Name: name}
}

// Default returns the current default provider, or nil when the registry is empty
func (r *Registry) Default() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultName == "" {
		return nil
	}
	return r.providers[r.defaultName]
}

// DefaultName returns the name of the current default provider
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// SetDefault makes the named provider the default
func (r *Registry) SetDefault(name string) error {
	normalized := strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[normalized]; !ok {
		return &ProviderNotFoundError{Name: name}
	}
	r.defaultName = normalized
	return nil
}

// Unregister removes the named provider. If the removed provider was the
// default and others remain, an arbitrary remaining provider becomes the
// default; if none remain, the default is cleared.
func (r *Registry) Unregister(name string) {
	normalized := strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[normalized]; !ok {
		return
	}
	delete(r.providers, normalized)

	if r.defaultName != normalized {
		return
	}
	r.defaultName = ""
	for remaining := range r.providers {
		r.defaultName = remaining
		break
	}
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Names returns the sorted names of all registered providers
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextProvider returns a registered provider other than the named one. This is
// the cross-provider fallback extension point; it returns nil when no
// alternative exists. Selection order among alternatives is unspecified.
func (r *Registry) NextProvider(current string) Provider {
	normalized := strings.ToLower(strings.TrimSpace(current))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, p := range r.providers {
		if name != normalized {
			return p
		}
	}
	return nil
}
