package transport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-resources/core"
)

// Adapter is a named core.Transport.
type Adapter interface {
	core.Transport
	Kind() string
}

type FactoryOptions struct {
	Config core.TransportConfig
	Logger core.Logger
}

type AdapterFactory func(opts FactoryOptions) (Adapter, error)

type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]Adapter
	factories map[string]AdapterFactory
}

func NewRegistry() *Registry {
	return &Registry{
		adapters:  map[string]Adapter{},
		factories: map[string]AdapterFactory{},
	}
}

// NewDefaultRegistry knows the "rest" and "retryable" kinds.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.RegisterFactory(KindREST, restFactory)
	_ = registry.RegisterFactory(KindRetryable, retryableFactory)
	return registry
}

func (r *Registry) Register(adapter Adapter) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	if adapter == nil {
		return fmt.Errorf("transport: adapter is nil")
	}
	kind := normalizeKind(adapter.Kind())
	if kind == "" {
		return fmt.Errorf("transport: adapter kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[kind]; exists {
		return fmt.Errorf("transport: adapter kind %q already registered", kind)
	}
	r.adapters[kind] = adapter
	return nil
}

func (r *Registry) RegisterFactory(kind string, factory AdapterFactory) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return fmt.Errorf("transport: adapter kind is required")
	}
	if factory == nil {
		return fmt.Errorf("transport: adapter factory is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("transport: adapter factory kind %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Build returns the registered adapter for kind, or builds one from its
// factory. An empty kind means "rest".
func (r *Registry) Build(kind string, opts FactoryOptions) (Adapter, error) {
	if r == nil {
		return nil, fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		kind = KindREST
	}

	r.mu.RLock()
	adapter, ok := r.adapters[kind]
	factory := r.factories[kind]
	r.mu.RUnlock()
	if ok {
		return adapter, nil
	}
	if factory == nil {
		return nil, core.NewConfigurationError(
			fmt.Sprintf("transport: adapter kind %q not registered", kind),
			map[string]any{"kind": kind},
		)
	}
	built, err := factory(opts)
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, fmt.Errorf("transport: factory for %q returned nil adapter", kind)
	}
	return built, nil
}

func (r *Registry) Get(kind string) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	kind = normalizeKind(kind)
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[kind]
	return adapter, ok
}

func (r *Registry) Kinds() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	for kind := range r.adapters {
		seen[kind] = struct{}{}
	}
	for kind := range r.factories {
		seen[kind] = struct{}{}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// FromConfig builds the transport described by cfg with the default
// registry. A positive retry_max upgrades "rest" to "retryable".
func FromConfig(cfg core.TransportConfig, logger core.Logger) (Adapter, error) {
	kind := normalizeKind(cfg.Kind)
	if (kind == "" || kind == KindREST) && cfg.RetryMax > 0 {
		kind = KindRetryable
	}
	return NewDefaultRegistry().Build(kind, FactoryOptions{Config: cfg, Logger: logger})
}

func restFactory(opts FactoryOptions) (Adapter, error) {
	client := &http.Client{Timeout: defaultRESTClientTimeout}
	if opts.Config.TimeoutMS > 0 {
		client.Timeout = time.Duration(opts.Config.TimeoutMS) * time.Millisecond
	}
	adapter := NewRESTAdapter(client)
	if opts.Config.MaxBodyBytes > 0 {
		adapter.MaxResponseBodyBytes = opts.Config.MaxBodyBytes
	}
	return adapter, nil
}

func retryableFactory(opts FactoryOptions) (Adapter, error) {
	adapter := NewRetryingAdapter(RetryConfig{
		RetryMax: opts.Config.RetryMax,
		WaitMin:  time.Duration(opts.Config.RetryWaitMS) * time.Millisecond,
		Timeout:  time.Duration(opts.Config.TimeoutMS) * time.Millisecond,
		Logger:   opts.Logger,
	})
	if opts.Config.MaxBodyBytes > 0 {
		adapter.MaxResponseBodyBytes = opts.Config.MaxBodyBytes
	}
	return adapter, nil
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}
