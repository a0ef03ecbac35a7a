package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"no connection", ErrNoConnection, true},
		{"sink unavailable", ErrSinkUnavailable, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"malformed batch", ErrMalformedBatch, false},
		{"duplicate registration", ErrDuplicateRegistration, false},
		{"timeout in message", fmt.Errorf("operation timeout occurred"), true},
		{"network error", fmt.Errorf("network connection failed"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"malformed batch", ErrMalformedBatch, true},
		{"missing field", ErrMissingField, true},
		{"unknown report type", ErrUnknownReportType, true},
		{"schema violation", ErrSchemaViolation, true},
		{"negative duration", ErrNegativeDuration, true},
		{"parsing failed", ErrParsingFailed, true},
		{"no connection", ErrNoConnection, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"wrapped missing field", fmt.Errorf("decode: %w", ErrMissingField), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"duplicate registration", ErrDuplicateRegistration, true},
		{"missing field", ErrMissingField, false},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsFatal(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil defaults to transient", nil, ErrorTransient},
		{"malformed batch", ErrMalformedBatch, ErrorInvalid},
		{"duplicate registration", ErrDuplicateRegistration, ErrorFatal},
		{"sink unavailable", ErrSinkUnavailable, ErrorTransient},
		{"unknown error defaults to transient", errors.New("something odd"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("Classify(%v) = %v, want %v", test.err, got, test.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, "BareReport", "UnmarshalJSON", "envelope decode")
	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if !strings.Contains(err.Error(), "BareReport.UnmarshalJSON: envelope decode failed") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to base")
	}
	if Wrap(nil, "a", "b", "c") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestWrapClassified(t *testing.T) {
	base := errors.New("boom")

	if err := WrapInvalid(base, "C", "M", "a"); !IsInvalid(err) || !errors.Is(err, base) {
		t.Errorf("WrapInvalid produced %v", err)
	}
	if err := WrapFatal(base, "C", "M", "a"); !IsFatal(err) || !errors.Is(err, base) {
		t.Errorf("WrapFatal produced %v", err)
	}
	if err := WrapTransient(base, "C", "M", "a"); !IsTransient(err) || !errors.Is(err, base) {
		t.Errorf("WrapTransient produced %v", err)
	}
	if WrapInvalid(nil, "C", "M", "a") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestRetryConfig_ShouldRetry(t *testing.T) {
	config := DefaultRetryConfig()

	if config.ShouldRetry(nil, 0) {
		t.Error("nil error should not retry")
	}
	if !config.ShouldRetry(ErrSinkUnavailable, 0) {
		t.Error("transient error under max retries should retry")
	}
	if config.ShouldRetry(ErrSinkUnavailable, config.MaxRetries) {
		t.Error("should not retry at max attempts")
	}
	if config.ShouldRetry(ErrMalformedBatch, 0) {
		t.Error("invalid errors should never retry")
	}

	scoped := config
	scoped.RetryableErrors = []error{ErrNoConnection}
	if scoped.ShouldRetry(ErrSinkUnavailable, 0) {
		t.Error("errors outside the retryable list should not retry")
	}
	if !scoped.ShouldRetry(ErrNoConnection, 0) {
		t.Error("errors in the retryable list should retry")
	}
}

func TestRetryConfig_BackoffDelay(t *testing.T) {
	config := RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		BackoffFactor: 2.0,
	}

	if d := config.BackoffDelay(0); d != 100*time.Millisecond {
		t.Errorf("attempt 0 delay = %v", d)
	}
	if d := config.BackoffDelay(1); d != 200*time.Millisecond {
		t.Errorf("attempt 1 delay = %v", d)
	}
	if d := config.BackoffDelay(10); d != time.Second {
		t.Errorf("delay should cap at MaxDelay, got %v", d)
	}
}
