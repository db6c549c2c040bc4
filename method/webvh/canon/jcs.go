/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package canon implements the canonicalization and hashing recipe
// shared by every hash in the did:webvh log-entry engine: JCS
// (RFC 8785) canonicalization, SHA-256 multihash encoding, base58
// multibase encoding, and multikey parsing/rendering.
package canon

import (
	"encoding/json"

	"github.com/gowebpki/jcs"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// MarshalCanonical marshals v to JSON and then reduces it to its
// unique JCS byte form. Every entry hash, SCID, and pre-rotation
// key-hash commitment in the system is computed over this exact byte
// sequence; a divergent canonicalizer breaks signature verification
// against peer implementations.
func MarshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.LogEntryError, "marshal document for canonicalization", err)
	}

	return CanonicalizeJSON(raw)
}

// CanonicalizeJSON reduces raw (already-valid JSON) to its JCS byte
// form.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.LogEntryError, "canonicalize JSON document", err)
	}

	return out, nil
}
