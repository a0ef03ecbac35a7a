package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/pkg/msduration"
)

// DispatchedReport is a single report decoded through the Registry-Dispatch
// Model: the envelope and the body are consumed together in one pass, with
// the body dispatched through a registry and held behind a type-erased
// Handle.
//
// DispatchedReport is immutable after creation or decoding. Unlike the
// Opaque-Body Model there is no raw fallback: a report whose discriminator is
// not registered fails to decode with an unknown-report-type error.
type DispatchedReport struct {
	age       time.Duration
	url       string
	userAgent string
	handle    Handle
}

// NewDispatchedReport creates a dispatched report around a concrete payload.
func NewDispatchedReport(age time.Duration, url, userAgent string, body Body) *DispatchedReport {
	return &DispatchedReport{
		age:       age,
		url:       url,
		userAgent: userAgent,
		handle:    NewHandle(body),
	}
}

// Age returns the time between report generation and upload.
func (r *DispatchedReport) Age() time.Duration {
	return r.age
}

// URL returns the URL of the request or document the report describes.
func (r *DispatchedReport) URL() string {
	return r.url
}

// UserAgent returns the client's User-Agent value.
func (r *DispatchedReport) UserAgent() string {
	return r.userAgent
}

// Kind returns the payload's discriminator string.
func (r *DispatchedReport) Kind() string {
	return r.handle.Kind()
}

// Body returns the payload behind its capability interface.
func (r *DispatchedReport) Body() Body {
	return r.handle.Body()
}

// Handle returns the type-erased payload handle, which supports identity
// checks, downcast via As, debug rendering, and dynamic equality.
func (r *DispatchedReport) Handle() Handle {
	return r.handle
}

// Equal reports structural equality against another dispatched report.
// Payloads of different concrete types are never equal.
func (r *DispatchedReport) Equal(other *DispatchedReport) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.age == other.age &&
		r.url == other.url &&
		r.userAgent == other.userAgent &&
		r.handle.Equal(other.handle)
}

// Validate performs comprehensive report validation.
func (r *DispatchedReport) Validate() error {
	if r.age < 0 {
		return errors.WrapInvalid(errors.ErrNegativeDuration, "DispatchedReport", "Validate", "age validation")
	}

	if r.handle.Body() == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "DispatchedReport", "Validate", "body cannot be nil")
	}

	if err := r.handle.Body().Validate(); err != nil {
		return errors.WrapInvalid(err, "DispatchedReport", "Validate", "invalid body")
	}

	return nil
}

// String renders the report for debugging.
func (r *DispatchedReport) String() string {
	return fmt.Sprintf("report{age: %s, url: %s, body: %s}", r.age, r.url, r.handle)
}

// MarshalJSON encodes the report in the common wire format, asking the
// type-erased handle for its discriminator and serialized body.
func (r *DispatchedReport) MarshalJSON() ([]byte, error) {
	body := r.handle.Body()
	if body == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "DispatchedReport", "MarshalJSON", "body cannot be nil")
	}

	bodyData, err := body.MarshalJSON()
	if err != nil {
		return nil, errors.WrapInvalid(err, "DispatchedReport", "MarshalJSON", "body encode")
	}

	type wire struct {
		Age       msduration.Duration `json:"age"`
		URL       string              `json:"url"`
		UserAgent string              `json:"user_agent"`
		Type      string              `json:"type"`
		Body      json.RawMessage     `json:"body"`
	}
	return json.Marshal(wire{
		Age:       msduration.From(r.age),
		URL:       r.url,
		UserAgent: r.userAgent,
		Type:      body.Kind(),
		Body:      bodyData,
	})
}

// UnmarshalJSON decodes a report in one pass through the process-wide
// registry. An unregistered discriminator fails with ErrUnknownReportType; a
// registered discriminator whose body violates the payload schema fails with
// ErrSchemaViolation tagged with the discriminator. The two are never
// conflated.
func (r *DispatchedReport) UnmarshalJSON(data []byte) error {
	return r.unmarshalWith(globalRegistry, data)
}

func (r *DispatchedReport) unmarshalWith(registry *Registry, data []byte) error {
	wire, err := decodeEnvelope(data, "DispatchedReport")
	if err != nil {
		return err
	}

	body := registry.Create(*wire.Type)
	if body == nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownReportType, *wire.Type),
			"DispatchedReport", "UnmarshalJSON", "registry dispatch")
	}

	if err := body.UnmarshalJSON(wire.Body); err != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: report type %q: %w", errors.ErrSchemaViolation, *wire.Type, err),
			"DispatchedReport", "UnmarshalJSON", "body decode")
	}

	r.age = wire.Age.Std()
	r.url = *wire.URL
	r.userAgent = *wire.UserAgent
	r.handle = NewHandle(body)
	return nil
}

// DecodeReport decodes a single report through this registry instead of the
// process-wide one.
func (r *Registry) DecodeReport(data []byte) (*DispatchedReport, error) {
	var rep DispatchedReport
	if err := rep.unmarshalWith(r, data); err != nil {
		return nil, err
	}
	return &rep, nil
}
