// Package reportregistry provides payload type registration for reportstream.
// Registration is an explicit, visible step executed during program startup,
// before any dispatch decoding is attempted.
package reportregistry

import (
	"errors"
	"fmt"

	pkgerrors "github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/report"
)

// builtins lists the payload types shipped with reportstream:
//
//   - network-error: Network Error Logging diagnostics
//   - crash: renderer crash reports
//   - deprecation: deprecated feature usage reports
//   - intervention: browser intervention reports
//
// Third-party payload types are registered directly by their own packages
// using report.Register; they do not need to appear here.
func builtins() []*report.Registration {
	return []*report.Registration{
		{
			Kind:        report.KindNetworkError,
			Description: "Network Error Logging diagnostics for a single request",
			Factory:     func() report.Body { return &report.NEL{} },
			Example: map[string]any{
				"referrer":          "https://example.com/",
				"sampling_fraction": 0.5,
				"server_ip":         "203.0.113.75",
				"protocol":          "h2",
				"method":            "POST",
				"status_code":       200,
				"elapsed_time":      45,
				"phase":             "application",
				"type":              "ok",
			},
		},
		{
			Kind:        report.KindCrash,
			Description: "Renderer crash report",
			Factory:     func() report.Body { return &report.Crash{} },
			Example: map[string]any{
				"reason": "oom",
			},
		},
		{
			Kind:        report.KindDeprecation,
			Description: "Deprecated feature usage report",
			Factory:     func() report.Body { return &report.Deprecation{} },
			Example: map[string]any{
				"id":      "websql",
				"message": "WebSQL is deprecated",
			},
		},
		{
			Kind:        report.KindIntervention,
			Description: "Browser intervention report",
			Factory:     func() report.Body { return &report.Intervention{} },
			Example: map[string]any{
				"id":      "audio-autoplay",
				"message": "Autoplay was blocked",
			},
		},
	}
}

// Register registers all built-in payload types with the provided registry.
func Register(registry *report.Registry) error {
	// CRITICAL: Nil registry is a programming error (fatal), not invalid input
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ReportRegistry", "Register", "registry validation")
	}

	for _, registration := range builtins() {
		if err := registry.Register(registration); err != nil {
			return pkgerrors.Wrap(err, "ReportRegistry", "Register",
				fmt.Sprintf("%s payload registration", registration.Kind))
		}
	}

	return nil
}
