// Package payload models JSON request bodies as a tagged Value and
// produces the canonical form that request signatures are computed over.
//
// # Values
//
// A Value is one of null, bool, number, string, array or object. Values
// are immutable; objects keep member order so that the signature input
// can be reproduced exactly. Build them directly or convert from any Go
// value:
//
//	v := payload.Object(
//	    payload.Member{Key: "orange", Value: payload.Int(5)},
//	    payload.Member{Key: "blue", Value: payload.Array(payload.Int(1), payload.Int(5), payload.Int(2))},
//	)
//
//	v, err := payload.From(map[string]any{"orange": 5})
//
// # Canonical Form
//
// Canonicalize sorts object keys, strips every space from strings and
// recurses into arrays and objects. Two payloads that differ only in key
// order or incidental spaces have the same canonical form:
//
//	a, _ := payload.CanonicalJSON(map[string]any{"b": "x y", "a": 1})
//	// {"a":1,"b":"xy"}
//
// CanonicalJSON serializes with ECMAScript JSON.stringify formatting via
// RFC 8785, so signatures match those produced by browser clients.
package payload
