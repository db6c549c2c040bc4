/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package params

import (
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// DiffGenesis produces the wire-level Parameters for the genesis
// entry given the fully desired effective state. scidPlaceholder is
// substituted for desired.SCID, which is not yet known at
// construction time (see logentry's SCID-placeholder substitution).
func DiffGenesis(desired *Effective, scidPlaceholder string) (*Wire, error) {
	if len(desired.UpdateKeys) == 0 {
		return nil, webvherr.New(webvherr.ParametersError, "genesis entry requires non-empty updateKeys")
	}

	w := &Wire{}
	w.Method = strPtr(desired.Method)
	w.SCID = strPtr(scidPlaceholder)
	w.UpdateKeys = &ListField{Value: desired.UpdateKeys}

	if desired.Portable {
		w.Portable = boolPtr(true)
	}

	if len(desired.NextKeyHashes) > 0 {
		w.NextKeyHashes = &ListField{Value: desired.NextKeyHashes}
	}

	if desired.Witness != nil {
		w.Witness = &WitnessField{Config: desired.Witness}
	}

	if len(desired.Watchers) > 0 {
		w.Watchers = &ListField{Value: desired.Watchers}
	}

	if desired.TTL != 0 && desired.TTL != defaultTTLSeconds {
		w.TTL = intPtr(desired.TTL)
	}

	return w, nil
}

// Diff produces the minimal wire-level Parameters for a non-genesis
// entry, encoding desired as a diff against previous (the previous
// entry's effective state), per spec §4.3.
//
//nolint:gocyclo
func Diff(desired, previous *Effective) (*Wire, error) {
	w := &Wire{}

	if desired.Method != previous.Method {
		if desired.Method < previous.Method {
			return nil, webvherr.New(webvherr.ParametersError, "method version cannot go backwards")
		}

		w.Method = strPtr(desired.Method)
	}

	if desired.Portable != previous.Portable {
		if desired.Portable {
			return nil, webvherr.New(webvherr.ParametersError, "portable may only become true on the genesis entry")
		}

		w.Portable = boolPtr(false)
	}

	if previous.PreRotationActive && !equalStringSlices(desired.UpdateKeys, previous.UpdateKeys) &&
		len(desired.UpdateKeys) == 0 {
		return nil, webvherr.New(webvherr.ParametersError, "updateKeys must be a non-empty emission while pre-rotation is active")
	}

	w.UpdateKeys = diffList(desired.UpdateKeys, previous.UpdateKeys, previous.PreRotationActive)

	w.NextKeyHashes = diffList(desired.NextKeyHashes, previous.NextKeyHashes, false)

	w.Witness = diffWitness(desired.Witness, previous.Witness)

	w.Watchers = diffList(desired.Watchers, previous.Watchers, false)

	if desired.TTL != previous.TTL {
		w.TTL = intPtr(desired.TTL)
	}

	if desired.Deactivated && !previous.Deactivated {
		if previous.PreRotationActive && w.NextKeyHashes == nil {
			return nil, webvherr.New(webvherr.ParametersError, "cannot deactivate while pre-rotation is active")
		}

		w.Deactivated = boolPtr(true)
		w.UpdateKeys = &ListField{Clear: true}
	}

	return w, nil
}

func diffList(curr, prev []string, mustEmitIfNonEmpty bool) *ListField {
	currEmpty := len(curr) == 0
	prevEmpty := len(prev) == 0

	switch {
	case currEmpty && prevEmpty:
		return nil
	case currEmpty && !prevEmpty:
		return &ListField{Clear: true}
	case equalStringSlices(curr, prev) && !mustEmitIfNonEmpty:
		return nil
	default:
		return &ListField{Value: curr}
	}
}

func diffWitness(curr, prev *WitnessConfig) *WitnessField {
	switch {
	case curr == nil && prev == nil:
		return nil
	case curr == nil && prev != nil:
		return &WitnessField{Clear: true}
	case curr.Equal(prev):
		return nil
	default:
		return &WitnessField{Config: curr}
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
