// Package kv implements string-keyed durable slots, the local equivalent of
// browser storage. Each slot holds one opaque value.
package kv

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Store is a string-keyed slot store.
type Store interface {
	// Get returns the slot value. Returns (nil, false, nil) if the slot is unset.
	Get(key string) ([]byte, bool, error)
	// Set replaces the slot value.
	Set(key string, value []byte) error
	// Delete clears the slot. Deleting an unset slot is not an error.
	Delete(key string) error
	// Close releases backend resources.
	Close() error
}

var (
	// ErrInvalidKey indicates a slot key is empty or contains path components.
	ErrInvalidKey = errors.New("kv: invalid key")
	// ErrQuotaExceeded indicates a value is larger than the slot quota.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
)

// validKey rejects keys that are empty, dot-segments, or contain separators.
func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// checkQuota returns ErrQuotaExceeded when limit is positive and value exceeds it.
func checkQuota(key string, value []byte, limit int64) error {
	if limit > 0 && int64(len(value)) > limit {
		return fmt.Errorf("%w: slot %q is %d bytes, limit %d", ErrQuotaExceeded, key, len(value), limit)
	}
	return nil
}

// Options configures a backend created through a Registry.
type Options struct {
	Dir          string // Data directory for file-backed stores.
	MaxSlotBytes int64  // Per-slot size limit; 0 disables the check.
}

// Factory creates a Store from Options.
type Factory func(opts Options) (Store, error)

// Registry maps backend names to factory functions.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a Registry with the file, sqlite and memory backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("file", func(opts Options) (Store, error) {
		return NewFileStore(opts.Dir, WithMaxSlotBytes(opts.MaxSlotBytes)), nil
	})
	r.Register("sqlite", func(opts Options) (Store, error) {
		return OpenSQLiteStore(opts.Dir, WithMaxSlotBytes(opts.MaxSlotBytes))
	})
	r.Register("memory", func(opts Options) (Store, error) {
		return NewMemoryStore(WithMaxSlotBytes(opts.MaxSlotBytes)), nil
	})
	return r
}

// Register adds a named backend factory. Overwrites if name already exists.
// Panics if name is empty or f is nil (programmer error).
func (r *Registry) Register(name string, f Factory) {
	if name == "" {
		panic("kv: Register called with empty name")
	}
	if f == nil {
		panic("kv: Register called with nil factory")
	}
	r.factories[name] = f
}

// Open instantiates a backend by name.
// Returns an error if the name is not registered or the factory fails.
func (r *Registry) Open(name string, opts Options) (Store, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &UnknownBackendError{
			Name:      name,
			Available: r.Backends(),
		}
	}
	s, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: backend %q: %w", name, err)
	}
	return s, nil
}

// Backends returns registered backend names in sorted order.
func (r *Registry) Backends() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownBackendError indicates a backend name is not registered.
type UnknownBackendError struct {
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("kv: unknown backend %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	maxSlotBytes int64
}

// WithMaxSlotBytes limits the size of a single slot value.
func WithMaxSlotBytes(n int64) Option {
	return func(o *storeOptions) { o.maxSlotBytes = n }
}

func applyOptions(opts []Option) storeOptions {
	var o storeOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
