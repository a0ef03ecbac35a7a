package report

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Body represents the type-specific content of a report. All payload types
// must implement this interface to provide their discriminator, validation,
// serialization, and value equality.
//
// Example implementation:
//
//	type Lint struct {
//	    SourceFile string `json:"source_file"`
//	    Line       uint32 `json:"line"`
//	    Column     uint32 `json:"column"`
//	    Finding    string `json:"finding"`
//	}
//
//	func (l *Lint) Kind() string { return "lint" }
//
//	func (l *Lint) Validate() error {
//	    if l.SourceFile == "" {
//	        return errors.New("source file is required")
//	    }
//	    return nil
//	}
//
//	func (l *Lint) Equal(other Body) bool { return EqualBodies(l, other) }
//
//	func (l *Lint) MarshalJSON() ([]byte, error) {
//	    // Use alias to avoid infinite recursion
//	    type Alias Lint
//	    return json.Marshal((*Alias)(l))
//	}
//
//	func (l *Lint) UnmarshalJSON(data []byte) error {
//	    type Alias Lint
//	    return json.Unmarshal(data, (*Alias)(l))
//	}
type Body interface {
	// Kind returns the discriminator string that identifies this payload
	// type in a report's "type" field. It must be stable and globally
	// unique across all registered payload types.
	Kind() string

	// Validate checks the payload data for correctness.
	// Validate is never called during decoding; schema enforcement
	// (required fields, value types) belongs in UnmarshalJSON.
	Validate() error

	// Equal reports value equality against another payload. Comparing
	// against a payload of a different concrete type returns false, never
	// an error.
	Equal(other Body) bool

	// JSON serialization using standard Go interfaces. UnmarshalJSON must
	// reject bodies that are missing required schema fields.
	json.Marshaler
	json.Unmarshaler
}

// EqualBodies reports structural equality of two payloads, first checking
// that they share a concrete type. It is the standard implementation for
// Body.Equal.
func EqualBodies(a, b Body) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Handle is a type-erased wrapper owning exactly one concrete payload
// instance. It exposes the payload's discriminator, an identity check against
// a runtime type token, downcast (via As), debug rendering, and value
// equality, without the caller needing to know the concrete type.
type Handle struct {
	body Body
	typ  reflect.Type
}

// NewHandle wraps a concrete payload in a type-erased handle.
func NewHandle(body Body) Handle {
	return Handle{
		body: body,
		typ:  reflect.TypeOf(body),
	}
}

// Kind returns the wrapped payload's discriminator string.
func (h Handle) Kind() string {
	if h.body == nil {
		return ""
	}
	return h.body.Kind()
}

// Body returns the wrapped payload.
func (h Handle) Body() Body {
	return h.body
}

// Type returns the identity token of the wrapped payload's concrete type.
func (h Handle) Type() reflect.Type {
	return h.typ
}

// Is checks whether the handle wraps a payload of the given concrete type.
func (h Handle) Is(t reflect.Type) bool {
	return h.typ == t
}

// Equal reports value equality against another handle. Handles wrapping
// different concrete types are never equal, even with identical field values.
func (h Handle) Equal(other Handle) bool {
	if h.body == nil || other.body == nil {
		return h.body == nil && other.body == nil
	}
	if h.typ != other.typ {
		return false
	}
	return h.body.Equal(other.body)
}

// String renders the handle for debugging as "kind(fields)".
func (h Handle) String() string {
	if h.body == nil {
		return "report.Handle(<nil>)"
	}
	return fmt.Sprintf("%s(%+v)", h.body.Kind(), h.body)
}

// As downcasts a handle to a concrete payload type.
//
//	if nel, ok := report.As[*report.NEL](rep.Handle()); ok { ... }
func As[B Body](h Handle) (B, bool) {
	b, ok := h.body.(B)
	return b, ok
}
