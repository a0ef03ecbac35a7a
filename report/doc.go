// Package report parses Reporting API report batches: JSON arrays of report
// objects that share a common envelope (age, url, user_agent, type) and carry
// a type-specific body selected by the "type" discriminator string.
//
// The package is built around an open payload schema set. New report types
// are added by third parties without touching the envelope logic: a payload
// is any type implementing the Body interface, associated with its
// discriminator through a Registry.
//
// # Two parsing models
//
// The package deliberately offers two models, because "how should the caller
// handle payload type uncertainty" has two valid answers with genuinely
// different error semantics.
//
// The Opaque-Body Model decodes the envelope eagerly and keeps the body as
// raw JSON. The caller probes each report against the payload types it cares
// about:
//
//	reports, err := report.DecodeBatch(payload)
//	for _, bare := range reports {
//	    rep, matched, err := report.ParseAs[report.NEL](bare)
//	    if !matched {
//	        continue // a type we are not interested in; not an error
//	    }
//	    if err != nil {
//	        // right type, malformed body
//	    }
//	    // rep is a fully typed *Report[NEL]
//	}
//
// A non-matching discriminator is a normal outcome, never an error. Only a
// matching report with a body that fails the payload's schema yields an
// error, so a pipeline can cheaply filter a heterogeneous batch.
//
// The Registry-Dispatch Model commits to interpreting every report eagerly
// through the process-wide registry and hands back a type-erased, downcastable
// Handle:
//
//	reportregistry.Register(report.DefaultRegistry())
//
//	dispatched, err := report.DecodeBatchDispatched(payload)
//	for _, rep := range dispatched {
//	    if nel, ok := report.As[*report.NEL](rep.Handle()); ok {
//	        // concrete payload
//	    }
//	}
//
// Here an unregistered discriminator fails the report's decode with an
// unknown-report-type error; there is no raw fallback.
//
// # Registration
//
// Registration is an explicit, visible step executed during program startup,
// before any dispatch decoding:
//
//	err := report.Register(&report.Registration{
//	    Kind:    "lint",
//	    Factory: func() report.Body { return &Lint{} },
//	})
//
// Registering a second factory under a taken discriminator with a different
// concrete type is a fatal configuration error. Re-registering the identical
// (kind, type) pair is harmless.
//
// # Wire format
//
// Durations travel as non-negative integer milliseconds (pkg/msduration);
// optional durations are either an integer or an omitted field, never 0 for
// absence. The envelope requires all of age, url, user_agent, type, and body
// to be present.
package report
