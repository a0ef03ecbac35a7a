// Package msduration provides the canonical duration-as-milliseconds codec.
//
// This package uses a non-negative integer count of milliseconds as the
// canonical wire format for durations, matching the Reporting API encoding of
// the envelope's age field and of payload fields such as NEL's elapsed_time.
// All encodings truncate sub-millisecond precision (never round up), so
// decoding an encoded value is the identity for any duration already
// expressed in whole milliseconds.
//
// Optional-Duration Semantics:
//   - Optional duration fields are represented as *Duration with omitempty
//   - Absence encodes as the field being omitted, never as 0
//   - A present 0 means "zero elapsed time", which is distinct from absent
//
// Usage Examples:
//
//	// Wire type in a struct
//	type Envelope struct {
//	    Age msduration.Duration `json:"age"`
//	}
//
//	// Optional wire field
//	type Body struct {
//	    ElapsedTime *msduration.Duration `json:"elapsed_time,omitempty"`
//	}
//
//	// Plain conversions
//	ms := msduration.ToMillis(1500 * time.Millisecond) // 1500
//	d, err := msduration.FromMillis(ms)
package msduration

import (
	"fmt"
	"strconv"
	"time"

	"github.com/c360/reportstream/errors"
)

// Duration is a time.Duration that encodes to JSON as an integer count of
// milliseconds. Encoding truncates sub-millisecond precision; decoding
// rejects negative and non-integer values.
type Duration time.Duration

// From converts a time.Duration to a Duration wire value.
func From(d time.Duration) Duration {
	return Duration(d)
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Millis returns the duration as whole milliseconds, truncated toward zero.
func (d Duration) Millis() int64 {
	return time.Duration(d).Milliseconds()
}

// MarshalJSON encodes the duration as an integer count of milliseconds.
// Negative durations are an encoding error.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d < 0 {
		return nil, errors.WrapInvalid(errors.ErrNegativeDuration, "Duration", "MarshalJSON",
			fmt.Sprintf("cannot encode %s", time.Duration(d)))
	}
	return strconv.AppendInt(nil, d.Millis(), 10), nil
}

// UnmarshalJSON decodes an integer count of milliseconds. Negative values,
// fractional values, and non-numeric JSON are rejected.
func (d *Duration) UnmarshalJSON(data []byte) error {
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "Duration", "UnmarshalJSON",
			fmt.Sprintf("expected integer milliseconds, got %s", data))
	}
	parsed, err := FromMillis(ms)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// ToMillis converts a time.Duration to whole milliseconds, truncated toward
// zero.
func ToMillis(d time.Duration) int64 {
	return d.Milliseconds()
}

// FromMillis converts a millisecond count to a time.Duration.
// Negative counts are an error.
func FromMillis(ms int64) (time.Duration, error) {
	if err := Validate(ms); err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Validate checks that a millisecond count is a legal wire value.
func Validate(ms int64) error {
	if ms < 0 {
		return errors.WrapInvalid(errors.ErrNegativeDuration, "msduration", "Validate",
			fmt.Sprintf("got %d", ms))
	}
	return nil
}
