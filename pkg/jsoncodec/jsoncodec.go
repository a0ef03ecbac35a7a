// Package jsoncodec centralizes JSON encoding and decoding for reportstream.
// It wraps a std-compatible sonic configuration so callers keep the exact
// semantics of encoding/json (including custom Marshaler/Unmarshaler methods)
// with faster batch throughput.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

// Marshal encodes v to JSON.
func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

// MarshalIndent encodes v to indented JSON.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return defaultConfig.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

// Encode writes v as JSON to w.
func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}

// Decode reads JSON from r into v.
func Decode(r io.Reader, v any) error {
	dec := defaultConfig.NewDecoder(r)
	return dec.Decode(v)
}
