package report

import (
	"encoding/json"
	"fmt"

	"github.com/c360/reportstream/errors"
)

// Discriminators for the report types generated by the browser's JavaScript
// environment.
const (
	KindCrash        = "crash"
	KindDeprecation  = "deprecation"
	KindIntervention = "intervention"
)

// Crash is the body of a crash report: the renderer for the document stopped
// unexpectedly.
type Crash struct {
	// Reason the browser gives for the crash (e.g., "oom", "unresponsive").
	Reason string `json:"reason"`
}

// Kind returns the crash discriminator.
func (c *Crash) Kind() string { return KindCrash }

// Validate checks the body for correctness.
func (c *Crash) Validate() error {
	if c.Reason == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Crash", "Validate", "reason cannot be empty")
	}
	return nil
}

// Equal reports value equality against another payload.
func (c *Crash) Equal(other Body) bool {
	return EqualBodies(c, other)
}

// MarshalJSON serializes the body.
func (c *Crash) MarshalJSON() ([]byte, error) {
	type Alias Crash
	return json.Marshal((*Alias)(c))
}

// UnmarshalJSON deserializes the body, rejecting a missing reason.
func (c *Crash) UnmarshalJSON(data []byte) error {
	var wire struct {
		Reason *string `json:"reason"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "Crash", "UnmarshalJSON", "body decode")
	}
	if wire.Reason == nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrMissingField, "reason"),
			"Crash", "UnmarshalJSON", "body validation")
	}
	c.Reason = *wire.Reason
	return nil
}

// Deprecation is the body of a deprecation report: the document used a
// feature scheduled for removal.
type Deprecation struct {
	// ID of the deprecated feature.
	ID string `json:"id"`
	// AnticipatedRemoval is the expected removal date, if announced.
	AnticipatedRemoval *string `json:"anticipatedRemoval,omitempty"`
	// Message is the human-readable deprecation notice.
	Message string `json:"message"`
	// SourceFile where the feature was used, if known.
	SourceFile *string `json:"sourceFile,omitempty"`
	// LineNumber in the source file, if known.
	LineNumber *uint32 `json:"lineNumber,omitempty"`
	// ColumnNumber in the source file, if known.
	ColumnNumber *uint32 `json:"columnNumber,omitempty"`
}

// Kind returns the deprecation discriminator.
func (d *Deprecation) Kind() string { return KindDeprecation }

// Validate checks the body for correctness.
func (d *Deprecation) Validate() error {
	if d.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Deprecation", "Validate", "id cannot be empty")
	}
	return nil
}

// Equal reports value equality against another payload.
func (d *Deprecation) Equal(other Body) bool {
	return EqualBodies(d, other)
}

// MarshalJSON serializes the body.
func (d *Deprecation) MarshalJSON() ([]byte, error) {
	type Alias Deprecation
	return json.Marshal((*Alias)(d))
}

// UnmarshalJSON deserializes the body, rejecting missing required fields.
func (d *Deprecation) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID                 *string `json:"id"`
		AnticipatedRemoval *string `json:"anticipatedRemoval"`
		Message            *string `json:"message"`
		SourceFile         *string `json:"sourceFile"`
		LineNumber         *uint32 `json:"lineNumber"`
		ColumnNumber       *uint32 `json:"columnNumber"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "Deprecation", "UnmarshalJSON", "body decode")
	}
	if wire.ID == nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrMissingField, "id"),
			"Deprecation", "UnmarshalJSON", "body validation")
	}
	if wire.Message == nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrMissingField, "message"),
			"Deprecation", "UnmarshalJSON", "body validation")
	}

	d.ID = *wire.ID
	d.AnticipatedRemoval = wire.AnticipatedRemoval
	d.Message = *wire.Message
	d.SourceFile = wire.SourceFile
	d.LineNumber = wire.LineNumber
	d.ColumnNumber = wire.ColumnNumber
	return nil
}

// Intervention is the body of an intervention report: the browser changed or
// blocked a requested behavior.
type Intervention struct {
	// ID of the intervention.
	ID string `json:"id"`
	// Message is the human-readable intervention notice.
	Message string `json:"message"`
	// SourceFile where the behavior was requested, if known.
	SourceFile *string `json:"sourceFile,omitempty"`
	// LineNumber in the source file, if known.
	LineNumber *uint32 `json:"lineNumber,omitempty"`
	// ColumnNumber in the source file, if known.
	ColumnNumber *uint32 `json:"columnNumber,omitempty"`
}

// Kind returns the intervention discriminator.
func (i *Intervention) Kind() string { return KindIntervention }

// Validate checks the body for correctness.
func (i *Intervention) Validate() error {
	if i.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Intervention", "Validate", "id cannot be empty")
	}
	return nil
}

// Equal reports value equality against another payload.
func (i *Intervention) Equal(other Body) bool {
	return EqualBodies(i, other)
}

// MarshalJSON serializes the body.
func (i *Intervention) MarshalJSON() ([]byte, error) {
	type Alias Intervention
	return json.Marshal((*Alias)(i))
}

// UnmarshalJSON deserializes the body, rejecting missing required fields.
func (i *Intervention) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID           *string `json:"id"`
		Message      *string `json:"message"`
		SourceFile   *string `json:"sourceFile"`
		LineNumber   *uint32 `json:"lineNumber"`
		ColumnNumber *uint32 `json:"columnNumber"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "Intervention", "UnmarshalJSON", "body decode")
	}
	if wire.ID == nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrMissingField, "id"),
			"Intervention", "UnmarshalJSON", "body validation")
	}
	if wire.Message == nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrMissingField, "message"),
			"Intervention", "UnmarshalJSON", "body validation")
	}

	i.ID = *wire.ID
	i.Message = *wire.Message
	i.SourceFile = wire.SourceFile
	i.LineNumber = wire.LineNumber
	i.ColumnNumber = wire.ColumnNumber
	return nil
}
