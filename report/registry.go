package report

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/c360/reportstream/errors"
)

// Factory creates a fresh payload instance for a report type.
type Factory func() Body

// Registration holds the factory and metadata for a payload type.
type Registration struct {
	Factory     Factory        `json:"-"`           // Factory function (not serializable)
	Kind        string         `json:"kind"`        // Discriminator string (e.g., "network-error")
	Description string         `json:"description"` // Human-readable description
	Example     map[string]any `json:"example"`     // Optional example body data
}

// Registry maps discriminator strings to payload factories and type identity
// tokens. It provides thread-safe registration and lookup, enabling
// DispatchedReport.UnmarshalJSON to recreate typed payloads from JSON.
//
// Registration is expected to complete during program initialization, before
// any dispatch decoding; the mutex additionally makes lazy registration from
// multiple goroutines safe. Re-registering the identical (kind, type) pair is
// a harmless no-op; registering a different type under a taken kind is a
// fatal configuration error, never a silent overwrite.
type Registry struct {
	registrations map[string]*Registration // Registry by discriminator string
	types         map[string]reflect.Type  // Type identity tokens by discriminator
	mu            sync.RWMutex             // Protects both maps
}

// NewRegistry creates a new empty payload registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]*Registration),
		types:         make(map[string]reflect.Type),
	}
}

// Register registers a payload factory with validation.
// Returns a fatal-classified error if the kind is already bound to a
// different concrete type.
func (r *Registry) Register(registration *Registration) error {
	if registration == nil {
		return errors.WrapInvalid(
			errors.ErrNilRegistration,
			"Registry",
			"Register",
			"registration validation",
		)
	}

	if registration.Kind == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "kind validation")
	}

	if registration.Factory == nil {
		return errors.WrapInvalid(
			errors.ErrInvalidConfig,
			"Registry",
			"Register",
			"factory function validation",
		)
	}

	probe := registration.Factory()
	if probe == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "factory product validation")
	}
	typ := reflect.TypeOf(probe)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, taken := r.types[registration.Kind]; taken {
		if existing == typ {
			// Idempotent re-registration of the same type is harmless.
			return nil
		}
		return errors.WrapFatal(
			fmt.Errorf("%w: kind %q already bound to %s, cannot bind %s",
				errors.ErrDuplicateRegistration, registration.Kind, existing, typ),
			"Registry",
			"Register",
			"duplicate kind check",
		)
	}

	r.registrations[registration.Kind] = registration
	r.types[registration.Kind] = typ
	return nil
}

// Create creates a fresh payload instance for a discriminator.
// Returns nil if the kind is not registered, letting callers surface an
// unknown-report-type error.
func (r *Registry) Create(kind string) Body {
	r.mu.RLock()
	registration, exists := r.registrations[kind]
	r.mu.RUnlock()

	if !exists {
		return nil
	}

	return registration.Factory()
}

// TypeOf returns the identity token of the concrete type registered for a
// discriminator.
func (r *Registry) TypeOf(kind string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, exists := r.types[kind]
	return typ, exists
}

// Lookup returns the registration for a discriminator.
// Returns the registration and true if found, nil and false otherwise.
func (r *Registry) Lookup(kind string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.registrations[kind]
	if !exists {
		return nil, false
	}

	// Return a copy to prevent external modification of the factory function
	return &Registration{
		Kind:        registration.Kind,
		Description: registration.Description,
		Example:     registration.Example,
		// Factory is intentionally not copied for safety
	}, true
}

// Kinds returns all registered discriminator strings, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.registrations))
	for kind := range r.registrations {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// List returns all registrations keyed by discriminator.
// Returns copies to prevent external modification.
func (r *Registry) List() map[string]*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Registration, len(r.registrations))
	for kind, registration := range r.registrations {
		result[kind] = &Registration{
			Kind:        registration.Kind,
			Description: registration.Description,
			Example:     registration.Example,
			// Factory is intentionally not copied for safety
		}
	}

	return result
}

// globalRegistry backs the package-level registration functions and
// DispatchedReport decoding.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the process-wide payload registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

// Register registers a payload type with the process-wide registry.
func Register(registration *Registration) error {
	return globalRegistry.Register(registration)
}

// MustRegister registers a payload type with the process-wide registry and
// panics on failure. Intended for use during program initialization, where a
// conflicting registration must abort startup.
func MustRegister(registration *Registration) {
	if err := Register(registration); err != nil {
		panic("report: " + err.Error())
	}
}

// Create creates a fresh payload instance from the process-wide registry.
func Create(kind string) Body {
	return globalRegistry.Create(kind)
}
