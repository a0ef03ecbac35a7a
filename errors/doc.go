// Package errors provides standardized error handling patterns for reportstream.
//
// # Overview
//
// The errors package implements a three-class error classification system for
// report parsing pipelines: Transient (temporary, retryable), Invalid (bad
// input, non-retryable), and Fatal (unrecoverable, stop processing).
//
// Classification matters here because report batches mix failure modes with
// very different handling requirements. A malformed report in an upload is
// Invalid and should be skipped or rejected, a sink that cannot currently be
// reached is Transient and the delivery should be retried, while a conflicting
// payload registration is Fatal and must abort startup rather than let two
// builds of the same binary parse identical wire bytes into different types.
//
// # Error Classification
//
// Errors are classified based on their type or content:
//
//   - Transient: connection issues, sink unavailability (retry recommended)
//   - Invalid: malformed batches, missing envelope fields, unknown report
//     types, payload schema violations (do not retry)
//   - Fatal: bad configuration, conflicting registrations (stop processing)
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if registered, taken := r.kinds[kind]; taken && registered != typ {
//	    return errors.ErrDuplicateRegistration
//	}
//
// Wrap errors with context for debugging:
//
//	if err := json.Unmarshal(data, &wire); err != nil {
//	    return errors.WrapInvalid(err, "BareReport", "UnmarshalJSON", "envelope decode")
//	}
//
// Check classification for retry logic:
//
//	if err := sink.Store(ctx, batch); err != nil {
//	    if errors.IsTransient(err) {
//	        // retry with backoff
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: <underlying error>"
//
// which keeps log lines grep-able by component and operation.
package errors
