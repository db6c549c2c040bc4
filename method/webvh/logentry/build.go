/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logentry

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/params"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// Construct builds an unsigned entry. For the genesis entry, pass
// previousVersionID = "" and wireParams.SCID = SCIDPlaceholder; its
// versionId is left equal to the SCID placeholder until FinalizeGenesis
// substitutes the real SCID and derives "1-<hash>". For subsequent
// entries, previousVersionID is the prior entry's versionId;
// FinalizeSubsequent derives "<k>-<hash>" with k = previousVersionNumber+1.
func Construct(previousVersionID string, versionTime time.Time, wireParams *params.Wire, state json.RawMessage) *Entry {
	transient := previousVersionID
	if transient == "" {
		transient = SCIDPlaceholder
	}

	return &Entry{
		VersionID:   transient,
		VersionTime: versionTime.Truncate(time.Second),
		Parameters:  wireParams,
		State:       state,
	}
}

// ComputeEntryHash returns the entry hash of e as it currently
// stands: the JCS+multihash of e with proof omitted and versionId
// temporarily set to transientVersionID.
func ComputeEntryHash(e *Entry, transientVersionID string) (string, error) {
	msg, err := canonicalHashingBytes(e, transientVersionID)
	if err != nil {
		return "", err
	}

	return canon.HashMultibase(msg)
}

// FinalizeGenesis computes the SCID, substitutes SCIDPlaceholder for
// it everywhere in e's parameters and state, and sets e.VersionID to
// "1-<hash>" of the substituted entry. Returns the computed SCID.
func FinalizeGenesis(e *Entry) (string, error) {
	scid, err := ComputeEntryHash(e, SCIDPlaceholder)
	if err != nil {
		return "", err
	}

	if err := substitutePlaceholder(e, scid); err != nil {
		return "", err
	}

	finalHash, err := ComputeEntryHash(e, SCIDPlaceholder)
	if err != nil {
		return "", err
	}

	e.VersionID = "1-" + finalHash

	return scid, nil
}

// FinalizeSubsequent sets e.VersionID to "<k>-<hash>" where
// k = previousVersionNumber+1 and hash is computed with versionId
// transiently equal to previousVersionID.
func FinalizeSubsequent(e *Entry, previousVersionID string) error {
	prevN, err := versionNumber(previousVersionID)
	if err != nil {
		return err
	}

	hash, err := ComputeEntryHash(e, previousVersionID)
	if err != nil {
		return err
	}

	e.VersionID = strconv.Itoa(prevN+1) + "-" + hash

	return nil
}

// substitutePlaceholder string-replaces every occurrence of
// SCIDPlaceholder in e's parameters and state (serialized as JSON
// text) with scid, then re-parses them. No other string is treated
// specially.
func substitutePlaceholder(e *Entry, scid string) error {
	paramsRaw, err := json.Marshal(e.Parameters)
	if err != nil {
		return webvherr.Wrap(webvherr.SCIDError, "marshal parameters for scid substitution", err)
	}

	paramsRaw = bytes.ReplaceAll(paramsRaw, []byte(SCIDPlaceholder), []byte(scid))

	var newParams params.Wire
	if err := json.Unmarshal(paramsRaw, &newParams); err != nil {
		return webvherr.Wrap(webvherr.SCIDError, "re-parse parameters after scid substitution", err)
	}

	newParams.Variant = e.Parameters.Variant
	e.Parameters = &newParams

	e.State = bytes.ReplaceAll(e.State, []byte(SCIDPlaceholder), []byte(scid))

	return nil
}

// VerifyGenesisSCID re-derives the SCID of a finalized genesis entry
// and reports whether it equals scid: the reverse of FinalizeGenesis,
// substituting the placeholder back in for every occurrence of scid
// before recomputing the hash, per invariant 4.
func VerifyGenesisSCID(e *Entry, scid string) (bool, error) {
	reverted := &Entry{
		VersionID:   SCIDPlaceholder,
		VersionTime: e.VersionTime,
	}

	paramsRaw, err := json.Marshal(e.Parameters)
	if err != nil {
		return false, webvherr.Wrap(webvherr.SCIDError, "marshal parameters for scid verification", err)
	}

	paramsRaw = bytes.ReplaceAll(paramsRaw, []byte(scid), []byte(SCIDPlaceholder))

	var revertedParams params.Wire
	if err := json.Unmarshal(paramsRaw, &revertedParams); err != nil {
		return false, webvherr.Wrap(webvherr.SCIDError, "re-parse parameters for scid verification", err)
	}

	revertedParams.Variant = e.Parameters.Variant
	reverted.Parameters = &revertedParams
	reverted.State = bytes.ReplaceAll(e.State, []byte(scid), []byte(SCIDPlaceholder))

	recomputed, err := ComputeEntryHash(reverted, SCIDPlaceholder)
	if err != nil {
		return false, err
	}

	return recomputed == scid, nil
}

// SubstituteDIDPlaceholder string-replaces every occurrence of "{DID}"
// in raw with did. Used by the creation API before entry construction
// (spec §6 SCID substitution / {DID} placeholder).
func SubstituteDIDPlaceholder(raw json.RawMessage, did string) json.RawMessage {
	return bytes.ReplaceAll(raw, []byte("{DID}"), []byte(did))
}
