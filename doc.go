// Package reportstream provides parsing and collection for W3C Reporting API
// and Network Error Logging payloads.
//
// The report package is the core library: envelope decoding, typed body
// probing, and registry-based dispatch. The reportregistry package wires the
// built-in report types into a registry. The collector package serves an HTTP
// upload endpoint backed by a pluggable sink.
package reportstream
