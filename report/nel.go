package report

import (
	"encoding/json"
	"fmt"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/pkg/msduration"
)

// KindNetworkError is the discriminator for Network Error Logging reports.
const KindNetworkError = "network-error"

// NEL is the body of a single Network Error Logging report.
type NEL struct {
	// Referrer information for the request, as determined by the referrer
	// policy associated with its client.
	Referrer string `json:"referrer"`
	// SamplingFraction is the sampling rate in effect for this request,
	// between 0.0 and 1.0 inclusive.
	SamplingFraction float64 `json:"sampling_fraction"`
	// ServerIP is the address of the host the request was sent to.
	ServerIP string `json:"server_ip"`
	// Protocol is the ALPN ID of the network protocol used.
	Protocol string `json:"protocol"`
	// Method of the HTTP request (e.g., GET, POST).
	Method string `json:"method"`
	// StatusCode of the HTTP response, if available.
	StatusCode *uint16 `json:"status_code,omitempty"`
	// ElapsedTime between the start of the fetch and its completion or
	// abort, if measured. Absent is distinct from zero.
	ElapsedTime *msduration.Duration `json:"elapsed_time,omitempty"`
	// Phase of the request in which the failure occurred: dns, connection,
	// or application. A successful request always reports application.
	Phase string `json:"phase"`
	// Status is the code describing the error, or "ok" on success.
	// Wire key: "type".
	Status string `json:"type"`
}

// Kind returns the NEL discriminator.
func (n *NEL) Kind() string {
	return KindNetworkError
}

// Validate checks the body for correctness. Cross-field invariants (such as
// status_code presence per phase) are deliberately not checked.
func (n *NEL) Validate() error {
	if n.SamplingFraction < 0 || n.SamplingFraction > 1 {
		return errors.WrapInvalid(errors.ErrInvalidData, "NEL", "Validate",
			fmt.Sprintf("sampling_fraction %v outside [0, 1]", n.SamplingFraction))
	}
	if n.ElapsedTime != nil && *n.ElapsedTime < 0 {
		return errors.WrapInvalid(errors.ErrNegativeDuration, "NEL", "Validate", "elapsed_time validation")
	}
	return nil
}

// Equal reports value equality against another payload.
func (n *NEL) Equal(other Body) bool {
	return EqualBodies(n, other)
}

// MarshalJSON serializes the body; durations travel as integer milliseconds.
func (n *NEL) MarshalJSON() ([]byte, error) {
	// Use alias to avoid infinite recursion
	type Alias NEL
	return json.Marshal((*Alias)(n))
}

// nelWire is the decoding shadow for NEL. Pointer fields for required keys
// let decoding distinguish absence from zero values.
type nelWire struct {
	Referrer         *string              `json:"referrer"`
	SamplingFraction *float64             `json:"sampling_fraction"`
	ServerIP         *string              `json:"server_ip"`
	Protocol         *string              `json:"protocol"`
	Method           *string              `json:"method"`
	StatusCode       *uint16              `json:"status_code"`
	ElapsedTime      *msduration.Duration `json:"elapsed_time"`
	Phase            *string              `json:"phase"`
	Status           *string              `json:"type"`
}

// UnmarshalJSON deserializes the body, rejecting bodies with missing required
// fields.
func (n *NEL) UnmarshalJSON(data []byte) error {
	var wire nelWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "NEL", "UnmarshalJSON", "body decode")
	}

	for field, present := range map[string]bool{
		"referrer":          wire.Referrer != nil,
		"sampling_fraction": wire.SamplingFraction != nil,
		"server_ip":         wire.ServerIP != nil,
		"protocol":          wire.Protocol != nil,
		"method":            wire.Method != nil,
		"phase":             wire.Phase != nil,
		"type":              wire.Status != nil,
	} {
		if !present {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrMissingField, field),
				"NEL", "UnmarshalJSON", "body validation")
		}
	}

	n.Referrer = *wire.Referrer
	n.SamplingFraction = *wire.SamplingFraction
	n.ServerIP = *wire.ServerIP
	n.Protocol = *wire.Protocol
	n.Method = *wire.Method
	n.StatusCode = wire.StatusCode
	n.ElapsedTime = wire.ElapsedTime
	n.Phase = *wire.Phase
	n.Status = *wire.Status
	return nil
}
