/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package witness implements the witness-proof subsystem: per-witness
// proof collection, "latest-proof wins" reduction, and threshold
// validation against a replayed chain.
package witness

import (
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// Entry is one witness proof entry of the did-witness.json collection:
// the proofs of one or more witnesses, each binding that witness's
// signature to one versionId.
type Entry struct {
	VersionID string                        `json:"versionId"`
	Proof     []*logentry.DataIntegrityProof `json:"proof"`
}

// Sign produces a Data Integrity proof over {"versionId": versionID}
// using the witness's signing key -- the document every witness
// co-signs.
func Sign(versionID, multikey string, signer logentry.Signer, at time.Time) (*logentry.DataIntegrityProof, error) {
	msg, err := canon.MarshalCanonical(map[string]string{"versionId": versionID})
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(msg)
	if err != nil {
		return nil, webvherr.Wrap(webvherr.WitnessProofError, "sign witness proof", err)
	}

	return &logentry.DataIntegrityProof{
		Type:               "DataIntegrityProof",
		Cryptosuite:        logentry.DataIntegrityCryptosuite,
		Created:            at,
		VerificationMethod: canon.DIDKeyID(multikey),
		ProofPurpose:       "authentication",
		ProofValue:         base64.RawURLEncoding.EncodeToString(sig),
	}, nil
}

// Verify verifies proof over {"versionId": versionID} against the
// witness's multikey.
func Verify(versionID, multikey string, proof *logentry.DataIntegrityProof) error {
	pub, err := canon.ParseEd25519Multikey(multikey)
	if err != nil {
		return err
	}

	msg, err := canon.MarshalCanonical(map[string]string{"versionId": versionID})
	if err != nil {
		return err
	}

	sig, err := base64.RawURLEncoding.DecodeString(proof.ProofValue)
	if err != nil {
		return webvherr.Wrap(webvherr.WitnessProofError, "decode witness proof value", err)
	}

	if !ed25519.Verify(pub, msg, sig) {
		return webvherr.New(webvherr.WitnessProofError, "witness signature verification failed")
	}

	return nil
}
