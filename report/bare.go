package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/pkg/msduration"
)

// BareReport is a single report whose envelope has been decoded but whose
// body is still an uninterpreted JSON value. This is the Opaque-Body Model:
// the caller supplies the expected payload type at probe time via ParseAs.
type BareReport struct {
	// Age is the time between when the report was generated by the client
	// and when it was uploaded.
	Age msduration.Duration
	// URL of the request or document the report describes.
	URL string
	// UserAgent is the client's User-Agent value.
	UserAgent string
	// Type is the payload discriminator string.
	Type string
	// Body is the report body, still encoded as JSON.
	Body json.RawMessage
}

// bareWire is the JSON wire format shadow for BareReport. Pointer fields let
// decoding distinguish absent required fields from zero values.
type bareWire struct {
	Age       *msduration.Duration `json:"age"`
	URL       *string              `json:"url"`
	UserAgent *string              `json:"user_agent"`
	Type      *string              `json:"type"`
	Body      json.RawMessage      `json:"body"`
}

var jsonNull = []byte("null")

// decodeEnvelope parses and checks the common envelope fields.
func decodeEnvelope(data []byte, component string) (bareWire, error) {
	var wire bareWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return bareWire{}, errors.WrapInvalid(err, component, "UnmarshalJSON", "envelope decode")
	}

	missing := func(field string) error {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrMissingField, field),
			component, "UnmarshalJSON", "envelope validation")
	}

	switch {
	case wire.Age == nil:
		return bareWire{}, missing("age")
	case wire.URL == nil:
		return bareWire{}, missing("url")
	case wire.UserAgent == nil:
		return bareWire{}, missing("user_agent")
	case wire.Type == nil:
		return bareWire{}, missing("type")
	case wire.Body == nil || bytes.Equal(wire.Body, jsonNull):
		return bareWire{}, missing("body")
	}

	return wire, nil
}

// UnmarshalJSON decodes a report envelope, retaining the body as raw JSON.
// All envelope fields are required; a missing field is a decode error, not a
// default.
func (r *BareReport) UnmarshalJSON(data []byte) error {
	wire, err := decodeEnvelope(data, "BareReport")
	if err != nil {
		return err
	}

	r.Age = *wire.Age
	r.URL = *wire.URL
	r.UserAgent = *wire.UserAgent
	r.Type = *wire.Type
	r.Body = wire.Body
	return nil
}

// MarshalJSON is the structural inverse of UnmarshalJSON.
func (r BareReport) MarshalJSON() ([]byte, error) {
	type wire struct {
		Age       msduration.Duration `json:"age"`
		URL       string              `json:"url"`
		UserAgent string              `json:"user_agent"`
		Type      string              `json:"type"`
		Body      json.RawMessage     `json:"body"`
	}
	return json.Marshal(wire{
		Age:       r.Age,
		URL:       r.URL,
		UserAgent: r.UserAgent,
		Type:      r.Type,
		Body:      r.Body,
	})
}

// BodyPtr constrains a payload type to its pointer form implementing Body.
// It lets ParseAs and ComposeBare allocate and probe payloads generically.
type BodyPtr[B any] interface {
	*B
	Body
}

// ParseAs probes a bare report against the payload type B.
//
// The result is three-way:
//   - (nil, false, nil): the report's discriminator does not match B's;
//     this is a normal outcome, not an error.
//   - (nil, true, err): the discriminator matches but the body does not
//     satisfy B's schema.
//   - (rep, true, nil): a fully typed report.
//
// Separating "wrong type" from "right type but malformed" lets a caller try
// several candidate payload types against a heterogeneous batch without
// conflating disinterest with corruption.
func ParseAs[B any, P BodyPtr[B]](bare BareReport) (*Report[B], bool, error) {
	probe := P(new(B))
	if bare.Type != probe.Kind() {
		return nil, false, nil
	}

	if err := probe.UnmarshalJSON(bare.Body); err != nil {
		return nil, true, errors.WrapInvalid(
			fmt.Errorf("%w: report type %q: %w", errors.ErrSchemaViolation, bare.Type, err),
			"BareReport", "ParseAs", "body decode")
	}

	return &Report[B]{
		Age:       bare.Age.Std(),
		URL:       bare.URL,
		UserAgent: bare.UserAgent,
		Body:      *(*B)(probe),
	}, true, nil
}
