package report

import (
	"encoding/json"
	"fmt"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/pkg/jsoncodec"
)

// ElementError records a single report in a batch that failed to decode.
type ElementError struct {
	// Index of the failing report in the uploaded array.
	Index int
	// Err is the decode error for that element.
	Err error
}

// Error implements the error interface.
func (e ElementError) Error() string {
	return fmt.Sprintf("report %d: %s", e.Index, e.Err)
}

// Unwrap returns the underlying decode error.
func (e ElementError) Unwrap() error {
	return e.Err
}

// splitBatch decodes the top-level array without interpreting its elements.
// A malformed array is fatal for the whole batch.
func splitBatch(data []byte, operation string) ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := jsoncodec.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrMalformedBatch, err),
			"Batch", operation, "top-level array decode")
	}
	return raw, nil
}

// DecodeBatch parses a JSON array of reports into bare envelopes.
// It is strict: a malformed top-level array, or any element with a missing or
// ill-typed envelope field, fails the whole batch with the element's index in
// the error.
func DecodeBatch(data []byte) ([]BareReport, error) {
	raw, err := splitBatch(data, "DecodeBatch")
	if err != nil {
		return nil, err
	}

	reports := make([]BareReport, 0, len(raw))
	for i, element := range raw {
		var r BareReport
		if err := jsoncodec.Unmarshal(element, &r); err != nil {
			return nil, ElementError{Index: i, Err: err}
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// DecodeBatchLenient parses a JSON array of reports element-wise, isolating
// per-report envelope errors: a single bad element does not fail the batch.
// The returned envelopes preserve upload order; each failing element is
// reported in the second return value. Only a malformed top-level array is an
// error for the whole batch.
func DecodeBatchLenient(data []byte) ([]BareReport, []ElementError, error) {
	raw, err := splitBatch(data, "DecodeBatchLenient")
	if err != nil {
		return nil, nil, err
	}

	reports := make([]BareReport, 0, len(raw))
	var failures []ElementError
	for i, element := range raw {
		var r BareReport
		if err := jsoncodec.Unmarshal(element, &r); err != nil {
			failures = append(failures, ElementError{Index: i, Err: err})
			continue
		}
		reports = append(reports, r)
	}
	return reports, failures, nil
}

// DecodeBatchDispatched parses a JSON array of reports through the
// process-wide registry, committing to interpreting every report eagerly.
// Any element whose discriminator is unregistered, or whose body violates its
// payload schema, fails the batch with the element's index in the error.
func DecodeBatchDispatched(data []byte) ([]*DispatchedReport, error) {
	return DefaultRegistry().DecodeBatch(data)
}

// DecodeBatch parses a JSON array of reports through this registry.
func (r *Registry) DecodeBatch(data []byte) ([]*DispatchedReport, error) {
	raw, err := splitBatch(data, "DecodeBatch")
	if err != nil {
		return nil, err
	}

	reports := make([]*DispatchedReport, 0, len(raw))
	for i, element := range raw {
		rep, err := r.DecodeReport(element)
		if err != nil {
			return nil, ElementError{Index: i, Err: err}
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
