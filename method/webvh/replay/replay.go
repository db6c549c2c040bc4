/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package replay

import (
	"time"

	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/params"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// ValidatedEntry pairs a log entry with the effective parameters
// carried after it, and the document id in force at that point.
type ValidatedEntry struct {
	Entry     *logentry.Entry
	Effective *params.Effective
	DocID     string
}

// Result is the outcome of replaying a log: the prefix of entries
// that validated successfully, plus the chain-level state derived
// from them.
type Result struct {
	Entries        []*ValidatedEntry
	SCID           string
	Deactivated    bool
	FirstTimestamp time.Time
	LastTimestamp  time.Time

	// Truncated is true when replay stopped before the end of the
	// supplied entries because an entry after the first failed
	// validation; the DID still resolves at Entries[len-1].
	Truncated bool
}

// Replay walks entries in order, applying the per-entry and
// cross-entry checks of spec §4.5. A failure at entry k>1 halts the
// walk but preserves entries 1..k-1 (Result.Truncated=true). A
// failure at entry 1 is returned as an error: the DID fails to
// resolve.
func Replay(entries []*logentry.Entry, now time.Time) (*Result, error) {
	if len(entries) == 0 {
		return nil, webvherr.New(webvherr.NotFound, "log has no entries")
	}

	result := &Result{}

	var previous *params.Effective

	var previousEntry *logentry.Entry

	for i, entry := range entries {
		k := i + 1

		validated, scid, err := validateOne(entry, previous, previousEntry, k, now)
		if err != nil {
			if k == 1 {
				return nil, webvherr.Wrap(webvherr.ValidationError, "genesis entry failed validation", err)
			}

			result.Truncated = true

			break
		}

		if k == 1 {
			result.SCID = scid
			result.FirstTimestamp = entry.VersionTime
		}

		result.LastTimestamp = entry.VersionTime
		result.Entries = append(result.Entries, validated)

		previous = validated.Effective
		previousEntry = entry

		if validated.Effective.Deactivated {
			result.Deactivated = true

			break
		}
	}

	return result, nil
}

//nolint:gocyclo
func validateOne(
	entry *logentry.Entry,
	previous *params.Effective,
	previousEntry *logentry.Entry,
	k int,
	now time.Time,
) (*ValidatedEntry, string, error) {
	n, err := entry.VersionNumber()
	if err != nil {
		return nil, "", err
	}

	if n != k {
		return nil, "", webvherr.New(webvherr.ValidationError, "versionId number out of order")
	}

	if entry.VersionTime.After(now) {
		return nil, "", webvherr.New(webvherr.ValidationError, "versionTime is in the future")
	}

	if previousEntry != nil && entry.VersionTime.Before(previousEntry.VersionTime) {
		return nil, "", webvherr.New(webvherr.ValidationError, "versionTime is not monotonic")
	}

	eff, err := params.Validate(entry.Parameters, previous)
	if err != nil {
		return nil, "", webvherr.Wrap(webvherr.ParametersError, "validate parameters", err)
	}

	// The previous entry's updateKeys authorize this entry. While
	// pre-rotation was active, the keys this entry declares (already
	// checked against the previous nextKeyHashes) authorize it instead.
	authorizedKeys := eff.ActiveUpdateKeys
	if previous != nil && !previous.PreRotationActive {
		authorizedKeys = previous.UpdateKeys
	}

	mk, err := signingMultikey(entry)
	if err != nil {
		return nil, "", err
	}

	if !contains(authorizedKeys, mk) {
		return nil, "", webvherr.New(webvherr.ValidationError, "signing key is not authorized for this entry")
	}

	transientVersionID := logentry.SCIDPlaceholder
	if previousEntry != nil {
		transientVersionID = previousEntry.VersionID
	}

	if err := logentry.VerifyProofAgainstMultikey(entry, transientVersionID, mk); err != nil {
		return nil, "", err
	}

	hash, err := entry.EntryHash()
	if err != nil {
		return nil, "", err
	}

	recomputedHash, err := logentry.ComputeEntryHash(entry, transientVersionID)
	if err != nil {
		return nil, "", err
	}

	if hash != recomputedHash {
		return nil, "", webvherr.New(webvherr.ValidationError, "entry hash mismatch")
	}

	scid := ""

	if k == 1 {
		scid, err = verifyGenesisSCID(entry, eff.SCID)
		if err != nil {
			return nil, "", err
		}
	}

	docID, err := docID(entry.State)
	if err != nil {
		return nil, "", err
	}

	if previousEntry != nil {
		prevDocID, err := docID(previousEntry.State)
		if err != nil {
			return nil, "", err
		}

		if docID != prevDocID {
			if err := checkPortability(entry, eff, prevDocID); err != nil {
				return nil, "", err
			}
		}
	}

	return &ValidatedEntry{Entry: entry, Effective: eff, DocID: docID}, scid, nil
}

func checkPortability(entry *logentry.Entry, eff *params.Effective, prevDocID string) error {
	if !eff.Portable {
		return webvherr.New(webvherr.ValidationError, "DID document id changed but portable is not true")
	}

	aka, err := docAlsoKnownAs(entry.State)
	if err != nil {
		return err
	}

	if !contains(aka, prevDocID) {
		return webvherr.New(webvherr.ValidationError, "alsoKnownAs does not contain the previous DID document id")
	}

	return nil
}

func verifyGenesisSCID(entry *logentry.Entry, scid string) (string, error) {
	if scid == "" {
		return "", webvherr.New(webvherr.SCIDError, "genesis entry missing scid in effective parameters")
	}

	ok, err := logentry.VerifyGenesisSCID(entry, scid)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", webvherr.New(webvherr.SCIDError, "declared scid does not match the genesis entry hash")
	}

	return scid, nil
}

func signingMultikey(entry *logentry.Entry) (string, error) {
	if len(entry.Proof) == 0 {
		return "", webvherr.New(webvherr.ValidationError, "log entry has no proof")
	}

	vm := entry.Proof[0].VerificationMethod

	// "did:key:<mb>#<mb>" -> <mb>
	const prefix = "did:key:"

	if len(vm) <= len(prefix) {
		return "", webvherr.New(webvherr.ValidationError, "malformed verificationMethod")
	}

	rest := vm[len(prefix):]

	for i := 0; i < len(rest); i++ {
		if rest[i] == '#' {
			return rest[:i], nil
		}
	}

	return rest, nil
}
