/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package canon

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multihash"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// HashMultibase computes the SHA-256 multihash (code 0x12, length 32)
// of data and base58btc-encodes it without a leading multibase
// prefix byte -- the "multibase-without-prefix" form used for entry
// hashes, SCIDs, and pre-rotation key-hash commitments.
func HashMultibase(data []byte) (string, error) {
	sum := sha256.Sum256(data)

	mh, err := multihash.Encode(sum[:], multihash.SHA2_256)
	if err != nil {
		return "", webvherr.Wrap(webvherr.LogEntryError, "encode sha-256 multihash", err)
	}

	return base58.Encode(mh), nil
}

// VerifyHashMultibase reports whether encoded is the HashMultibase of
// data.
func VerifyHashMultibase(data []byte, encoded string) (bool, error) {
	want, err := HashMultibase(data)
	if err != nil {
		return false, err
	}

	return want == encoded, nil
}

// DecodeHashMultibase decodes a multibase-without-prefix base58
// multihash string back to its raw multihash bytes, validating that
// it parses as a multihash.
func DecodeHashMultibase(encoded string) ([]byte, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.SCIDError, "base58-decode multihash", err)
	}

	if _, err := multihash.Decode(raw); err != nil {
		return nil, webvherr.Wrap(webvherr.SCIDError, "decode multihash", err)
	}

	return raw, nil
}
