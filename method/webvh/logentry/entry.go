/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logentry implements the did:webvh log entry record: its
// construction, version-id derivation, SCID placeholder substitution,
// canonical hashing, and Data Integrity proof attach/verify. It is
// grounded on the construct/hash/finalize/sign/verify sequence of the
// reference implementation and on the teacher's doc/signature
// abstractions, adapted from RDF/JSON-LD canonicalization to JCS.
package logentry

import (
	"encoding/json"
	"time"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/params"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// SCIDPlaceholder is the literal token substituted with the computed
// SCID wherever it appears in the genesis entry's parameters or DID
// document state.
const SCIDPlaceholder = "{SCID}"

// TimeLayout is the RFC 3339, whole-seconds, explicit-timezone layout
// every versionTime must serialize with, matching peer
// canonicalization byte-for-byte.
const TimeLayout = "2006-01-02T15:04:05Z"

// Entry is one immutable, signed log entry.
type Entry struct {
	VersionID   string                `json:"versionId"`
	VersionTime time.Time             `json:"versionTime"`
	Parameters  *params.Wire          `json:"parameters"`
	State       json.RawMessage       `json:"state"`
	Proof       []*DataIntegrityProof `json:"proof,omitempty"`
}

// entryJSON mirrors Entry's field layout for JSON (un)marshaling with
// an explicit versionTime format.
type entryJSON struct {
	VersionID   string                `json:"versionId"`
	VersionTime json.RawMessage       `json:"versionTime"`
	Parameters  *params.Wire          `json:"parameters"`
	State       json.RawMessage       `json:"state"`
	Proof       []*DataIntegrityProof `json:"proof,omitempty"`
}

// MarshalJSON renders e with versionTime in TimeLayout.
func (e *Entry) MarshalJSON() ([]byte, error) {
	vt, err := marshalTime(e.VersionTime)
	if err != nil {
		return nil, err
	}

	return json.Marshal(entryJSON{
		VersionID:   e.VersionID,
		VersionTime: vt,
		Parameters:  e.Parameters,
		State:       e.State,
		Proof:       e.Proof,
	})
}

// UnmarshalJSON parses raw into e, including the legacy-vs-current
// parameters variant detection performed by params.Wire.
func (e *Entry) UnmarshalJSON(raw []byte) error {
	var ej entryJSON
	if err := json.Unmarshal(raw, &ej); err != nil {
		return webvherr.Wrap(webvherr.LogEntryError, "unmarshal log entry", err)
	}

	vt, err := unmarshalTime(ej.VersionTime)
	if err != nil {
		return err
	}

	e.VersionID = ej.VersionID
	e.VersionTime = vt
	e.Parameters = ej.Parameters
	e.State = ej.State
	e.Proof = ej.Proof

	return nil
}

// VersionNumber returns the integer prefix of e.VersionID ("<n>-<hash>").
func (e *Entry) VersionNumber() (int, error) {
	return versionNumber(e.VersionID)
}

// EntryHash returns the hash suffix of e.VersionID ("<n>-<hash>").
func (e *Entry) EntryHash() (string, error) {
	return versionHash(e.VersionID)
}

func versionNumber(versionID string) (int, error) {
	n, _, err := splitVersionID(versionID)

	return n, err
}

func versionHash(versionID string) (string, error) {
	_, h, err := splitVersionID(versionID)

	return h, err
}

func splitVersionID(versionID string) (int, string, error) {
	for i := 0; i < len(versionID); i++ {
		if versionID[i] == '-' {
			n, err := parsePositiveInt(versionID[:i])
			if err != nil {
				return 0, "", webvherr.Wrap(webvherr.LogEntryError, "parse versionId number", err)
			}

			return n, versionID[i+1:], nil
		}
	}

	return 0, "", webvherr.New(webvherr.LogEntryError, "malformed versionId: missing '-' separator")
}

func parsePositiveInt(s string) (int, error) {
	n := 0

	if s == "" {
		return 0, webvherr.New(webvherr.LogEntryError, "empty version number")
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, webvherr.New(webvherr.LogEntryError, "non-numeric version number")
		}

		n = n*10 + int(r-'0')
	}

	return n, nil
}

// hashableJSON is the JSON shape hashed/signed: the entry with its
// proof omitted entirely (not emptied), per spec §4.4/§8.
type hashableJSON struct {
	VersionID   string          `json:"versionId"`
	VersionTime string          `json:"versionTime"`
	Parameters  *params.Wire    `json:"parameters"`
	State       json.RawMessage `json:"state"`
}

// canonicalHashingBytes returns the JCS bytes of e with versionID
// substituted transiently and proof omitted, the document both the
// entry hash and the Data Integrity proof are computed over.
func canonicalHashingBytes(e *Entry, transientVersionID string) ([]byte, error) {
	h := hashableJSON{
		VersionID:   transientVersionID,
		VersionTime: e.VersionTime.UTC().Format(TimeLayout),
		Parameters:  e.Parameters,
		State:       e.State,
	}

	return canon.MarshalCanonical(h)
}
