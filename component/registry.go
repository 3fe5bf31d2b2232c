package component

import (
	"fmt"
	"strings"
	"sync"

	"github.com/c360/thermoflow/errors"
)

// SourceFactory creates a Source from a full input selector. The factory
// receives the whole selector (scheme included) so it can parse its own
// arguments, and the shared dependencies. All I/O belongs in the component's
// lifecycle, not in the factory.
type SourceFactory func(selector string, deps Dependencies) (Source, error)

// SinkFactory creates a Sink from a full output selector.
type SinkFactory func(selector string, deps Dependencies) (Sink, error)

// Registry manages source and sink factories keyed by selector scheme.
// Registration and lookup are thread-safe.
type Registry struct {
	sources map[string]SourceFactory
	sinks   map[string]SinkFactory
	mu      sync.RWMutex
}

// NewRegistry creates a new empty component registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]SourceFactory),
		sinks:   make(map[string]SinkFactory),
	}
}

// RegisterSource registers a source factory for a selector scheme.
// Returns an error if the scheme is already registered.
func (r *Registry) RegisterSource(scheme string, factory SourceFactory) error {
	if scheme == "" || factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterSource", "scheme and factory validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[scheme]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("source scheme %q is already registered", scheme),
			"Registry", "RegisterSource", "duplicate scheme check")
	}
	r.sources[scheme] = factory
	return nil
}

// RegisterSink registers a sink factory for a selector scheme.
// Returns an error if the scheme is already registered.
func (r *Registry) RegisterSink(scheme string, factory SinkFactory) error {
	if scheme == "" || factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterSink", "scheme and factory validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sinks[scheme]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("sink scheme %q is already registered", scheme),
			"Registry", "RegisterSink", "duplicate scheme check")
	}
	r.sinks[scheme] = factory
	return nil
}

// CreateSource resolves an input selector against the registered source
// factories and invokes the matching one.
func (r *Registry) CreateSource(selector string, deps Dependencies) (Source, error) {
	scheme := selectorScheme(selector)

	r.mu.RLock()
	factory, exists := r.sources[scheme]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownSource, selector),
			"Registry", "CreateSource", "scheme lookup")
	}
	return factory(selector, deps)
}

// CreateSink resolves an output selector against the registered sink
// factories and invokes the matching one.
func (r *Registry) CreateSink(selector string, deps Dependencies) (Sink, error) {
	scheme := selectorScheme(selector)

	r.mu.RLock()
	factory, exists := r.sinks[scheme]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownSink, selector),
			"Registry", "CreateSink", "scheme lookup")
	}
	return factory(selector, deps)
}

// SourceSchemes returns the registered source schemes, for diagnostics.
func (r *Registry) SourceSchemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.sources))
	for scheme := range r.sources {
		schemes = append(schemes, scheme)
	}
	return schemes
}

// SinkSchemes returns the registered sink schemes, for diagnostics.
func (r *Registry) SinkSchemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.sinks))
	for scheme := range r.sinks {
		schemes = append(schemes, scheme)
	}
	return schemes
}

// SelectorArg returns the part of a selector after the scheme separator, or
// "" when the selector is bare (e.g. "pwm").
func SelectorArg(selector string) string {
	if idx := strings.Index(selector, ":"); idx >= 0 {
		return selector[idx+1:]
	}
	return ""
}

// selectorScheme extracts the scheme of a selector: everything before the
// first colon, or the whole selector when it has none.
func selectorScheme(selector string) string {
	if idx := strings.Index(selector, ":"); idx >= 0 {
		return selector[:idx]
	}
	return selector
}
