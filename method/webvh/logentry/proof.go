/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logentry

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// DataIntegrityCryptosuite is the only cryptosuite this implementation
// signs and verifies: an ed25519 signature over the JCS
// canonicalization of the document, per the glossary's Data Integrity
// Proof definition.
const DataIntegrityCryptosuite = "eddsa-jcs-2022"

// DataIntegrityProof is a detached signature bound to a canonicalized
// document with a declared verificationMethod, always of the form
// "did:key:<mb>#<mb>".
type DataIntegrityProof struct {
	Type               string    `json:"type"`
	Cryptosuite        string    `json:"cryptosuite"`
	Created            time.Time `json:"created"`
	VerificationMethod string    `json:"verificationMethod"`
	ProofPurpose       string    `json:"proofPurpose"`
	ProofValue         string    `json:"proofValue"`
}

const (
	proofType           = "DataIntegrityProof"
	defaultProofPurpose = "authentication"
)

type dataIntegrityProofJSON struct {
	Type               string          `json:"type"`
	Cryptosuite        string          `json:"cryptosuite"`
	Created            json.RawMessage `json:"created"`
	VerificationMethod string          `json:"verificationMethod"`
	ProofPurpose       string          `json:"proofPurpose"`
	ProofValue         string          `json:"proofValue"`
}

// MarshalJSON renders p with created in TimeLayout.
func (p *DataIntegrityProof) MarshalJSON() ([]byte, error) {
	created, err := marshalTime(p.Created)
	if err != nil {
		return nil, err
	}

	return json.Marshal(dataIntegrityProofJSON{
		Type:               p.Type,
		Cryptosuite:        p.Cryptosuite,
		Created:            created,
		VerificationMethod: p.VerificationMethod,
		ProofPurpose:       p.ProofPurpose,
		ProofValue:         p.ProofValue,
	})
}

// UnmarshalJSON parses raw into p.
func (p *DataIntegrityProof) UnmarshalJSON(raw []byte) error {
	var pj dataIntegrityProofJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		return webvherr.Wrap(webvherr.LogEntryError, "unmarshal proof", err)
	}

	created, err := unmarshalTime(pj.Created)
	if err != nil {
		return err
	}

	p.Type = pj.Type
	p.Cryptosuite = pj.Cryptosuite
	p.Created = created
	p.VerificationMethod = pj.VerificationMethod
	p.ProofPurpose = pj.ProofPurpose
	p.ProofValue = pj.ProofValue

	return nil
}

// Signer produces an ed25519 signature over msg.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
}

// ed25519Signer adapts a raw ed25519 private key to Signer.
type ed25519Signer struct {
	priv ed25519.PrivateKey
}

// NewEd25519Signer wraps priv as a Signer.
func NewEd25519Signer(priv ed25519.PrivateKey) Signer {
	return &ed25519Signer{priv: priv}
}

func (s *ed25519Signer) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, msg), nil
}

// Sign attaches a Data Integrity proof to e, signing the JCS
// canonicalization of e with its proof omitted and its versionId
// transiently set to transientVersionID (the previous entry's
// versionId, or the SCID placeholder for the genesis entry).
func Sign(e *Entry, transientVersionID, multikey string, signer Signer) error {
	msg, err := canonicalHashingBytes(e, transientVersionID)
	if err != nil {
		return err
	}

	sig, err := signer.Sign(msg)
	if err != nil {
		return webvherr.Wrap(webvherr.LogEntryError, "sign log entry", err)
	}

	e.Proof = append(e.Proof, &DataIntegrityProof{
		Type:               proofType,
		Cryptosuite:        DataIntegrityCryptosuite,
		Created:            e.VersionTime,
		VerificationMethod: canon.DIDKeyID(multikey),
		ProofPurpose:       defaultProofPurpose,
		ProofValue:         base64.RawURLEncoding.EncodeToString(sig),
	})

	return nil
}

// VerifyProof verifies the first proof of e (per spec, only the first
// proof is inspected during chain verification) against
// transientVersionID and the given multikey's raw ed25519 public key.
func VerifyProof(e *Entry, transientVersionID string, pubKey []byte) error {
	if len(e.Proof) == 0 {
		return webvherr.New(webvherr.ValidationError, "log entry has no proof")
	}

	proof := e.Proof[0]

	if proof.Cryptosuite != DataIntegrityCryptosuite {
		return webvherr.New(webvherr.ValidationError, "unsupported proof cryptosuite "+proof.Cryptosuite)
	}

	sig, err := base64.RawURLEncoding.DecodeString(proof.ProofValue)
	if err != nil {
		return webvherr.Wrap(webvherr.ValidationError, "decode proof value", err)
	}

	msg, err := canonicalHashingBytes(e, transientVersionID)
	if err != nil {
		return err
	}

	if !ed25519.Verify(pubKey, msg, sig) {
		return webvherr.New(webvherr.ValidationError, "signature verification failed")
	}

	return nil
}

// VerifyProofAgainstMultikey is VerifyProof taking the signer's
// multikey string instead of raw bytes.
func VerifyProofAgainstMultikey(e *Entry, transientVersionID, multikey string) error {
	pubKey, err := canon.ParseEd25519Multikey(multikey)
	if err != nil {
		return err
	}

	return VerifyProof(e, transientVersionID, pubKey)
}
