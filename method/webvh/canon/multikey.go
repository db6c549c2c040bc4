/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package canon

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-varint"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// Ed25519PubKeyMultiCodec is the multicodec code for an ed25519
// public key, per https://github.com/multiformats/multicodec.
const Ed25519PubKeyMultiCodec = 0xed

const multikeyPrefix = "z"

// ParseMultikey base58-decodes a multikey string (e.g. "z6Mk...") and
// strips its multicodec varint prefix, returning the codec and the
// raw public-key bytes.
func ParseMultikey(mk string) (codec uint64, raw []byte, err error) {
	if len(mk) == 0 || mk[:1] != multikeyPrefix {
		return 0, nil, webvherr.New(webvherr.DIDError, fmt.Sprintf("multikey %q missing multibase-base58btc prefix", mk))
	}

	decoded, err := base58.Decode(mk[1:])
	if err != nil {
		return 0, nil, webvherr.Wrap(webvherr.DIDError, "base58-decode multikey", err)
	}

	codec, n, err := varint.FromUvarint(decoded)
	if err != nil {
		return 0, nil, webvherr.Wrap(webvherr.DIDError, "read multikey multicodec prefix", err)
	}

	return codec, decoded[n:], nil
}

// EncodeMultikey encodes raw public-key bytes under the given
// multicodec code into a multikey string.
func EncodeMultikey(codec uint64, raw []byte) string {
	prefix := varint.ToUvarint(codec)

	return multikeyPrefix + base58.Encode(append(prefix, raw...))
}

// Ed25519Multikey encodes an ed25519 public key as a multikey string.
func Ed25519Multikey(pub []byte) string {
	return EncodeMultikey(Ed25519PubKeyMultiCodec, pub)
}

// ParseEd25519Multikey parses a multikey string expected to carry an
// ed25519 public key.
func ParseEd25519Multikey(mk string) ([]byte, error) {
	codec, raw, err := ParseMultikey(mk)
	if err != nil {
		return nil, err
	}

	if codec != Ed25519PubKeyMultiCodec {
		return nil, webvherr.New(webvherr.DIDError, fmt.Sprintf("multikey %q is not an ed25519 key (codec %#x)", mk, codec))
	}

	return raw, nil
}

// DIDKeyID renders the did:key verification-method identity for a
// multikey: "did:key:<mb>#<mb>", the form used for witness and
// update-key verificationMethod values throughout the log-entry
// engine.
func DIDKeyID(mk string) string {
	return "did:key:" + mk + "#" + mk
}
