/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package params

import (
	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

const defaultTTLSeconds = 3600

// Effective is the full, merged parameter set in force after an entry
// has been applied, plus the derived state that §3/§4.3 require
// carrying alongside it: PreRotationActive, ActiveUpdateKeys, and
// ActiveWitness (which lags one entry behind witness changes per
// Open Question (ii)).
type Effective struct {
	Method        string
	SCID          string
	UpdateKeys    []string
	Portable      bool
	NextKeyHashes []string
	Witness       *WitnessConfig
	Watchers      []string
	Deactivated   bool
	TTL           int

	PreRotationActive bool
	ActiveUpdateKeys  []string
	ActiveWitness     *WitnessConfig
}

// Clone returns a shallow copy of e suitable for deriving the next
// entry's effective state from; list/config fields are treated as
// shared immutable references and are only replaced, never mutated
// in place, so sharing them across snapshots is safe.
func (e *Effective) Clone() *Effective {
	if e == nil {
		return nil
	}

	clone := *e

	return &clone
}

// Validate merges wire (entry k's parameters diff) against previous
// (entry k-1's effective state, or nil for the genesis entry) and
// returns the resulting effective state, enforcing the rules in
// spec §4.3.
func Validate(wire *Wire, previous *Effective) (*Effective, error) {
	if previous == nil {
		return validateGenesis(wire)
	}

	return validateSubsequent(wire, previous)
}

func validateGenesis(wire *Wire) (*Effective, error) {
	if wire.SCID == nil || *wire.SCID == "" {
		return nil, webvherr.New(webvherr.ParametersError, "genesis entry must declare scid")
	}

	if wire.UpdateKeys == nil || wire.UpdateKeys.Clear || len(wire.UpdateKeys.Value) == 0 {
		return nil, webvherr.New(webvherr.ParametersError, "genesis entry must declare non-empty updateKeys")
	}

	if wire.Deactivated != nil && *wire.Deactivated {
		return nil, webvherr.New(webvherr.ParametersError, "genesis entry cannot be deactivated")
	}

	eff := &Effective{
		SCID:       *wire.SCID,
		UpdateKeys: wire.UpdateKeys.Value,
		TTL:        defaultTTLSeconds,
	}

	if wire.Method != nil {
		eff.Method = *wire.Method
	}

	if wire.Portable != nil {
		eff.Portable = *wire.Portable
	}

	if wire.NextKeyHashes != nil && !wire.NextKeyHashes.Clear && len(wire.NextKeyHashes.Value) > 0 {
		eff.NextKeyHashes = wire.NextKeyHashes.Value
		eff.PreRotationActive = true
	}

	if wire.Witness != nil && !wire.Witness.Clear && wire.Witness.Config != nil {
		eff.Witness = wire.Witness.Config
	}

	if wire.Watchers != nil && !wire.Watchers.Clear {
		eff.Watchers = wire.Watchers.Value
	}

	if wire.TTL != nil {
		eff.TTL = *wire.TTL
	}

	eff.ActiveUpdateKeys = eff.UpdateKeys
	// Open Question (ii): activeWitness is always deferred by one
	// entry; the genesis entry's own proof threshold (if any) is
	// checked against no witness configuration.
	eff.ActiveWitness = nil

	return eff, nil
}

//nolint:gocyclo
func validateSubsequent(wire *Wire, previous *Effective) (*Effective, error) {
	if previous.Deactivated {
		return nil, webvherr.New(webvherr.DeactivatedError, "DID is deactivated, no further entries permitted")
	}

	if wire.SCID != nil && *wire.SCID != previous.SCID {
		return nil, webvherr.New(webvherr.ParametersError, "scid is immutable after genesis")
	}

	if wire.Portable != nil && *wire.Portable {
		return nil, webvherr.New(webvherr.ParametersError, "portable may only become true on the genesis entry")
	}

	eff := previous.Clone()
	eff.ActiveUpdateKeys = nil
	eff.ActiveWitness = previous.Witness // Open Question (ii): defer by one entry.

	if wire.Method != nil {
		eff.Method = *wire.Method
	}

	if wire.Portable != nil {
		eff.Portable = false
	}

	if err := applyKeyRotation(wire, previous, eff); err != nil {
		return nil, err
	}

	if wire.Witness != nil {
		if wire.Witness.Clear {
			eff.Witness = nil
		} else {
			eff.Witness = wire.Witness.Config
		}
	}

	if wire.Watchers != nil {
		if wire.Watchers.Clear {
			eff.Watchers = nil
		} else {
			eff.Watchers = wire.Watchers.Value
		}
	}

	if wire.TTL != nil {
		eff.TTL = *wire.TTL
	}

	if wire.Deactivated != nil && *wire.Deactivated {
		if !isEmptyUpdateKeys(wire.UpdateKeys) {
			return nil, webvherr.New(webvherr.ParametersError, "deactivation requires updateKeys to be cleared")
		}

		if eff.PreRotationActive {
			return nil, webvherr.New(webvherr.ParametersError, "cannot deactivate while pre-rotation is active")
		}

		eff.Deactivated = true
		eff.UpdateKeys = nil
		eff.ActiveUpdateKeys = nil
	}

	return eff, nil
}

func isEmptyUpdateKeys(f *ListField) bool {
	return f != nil && f.Clear
}

func applyKeyRotation(wire *Wire, previous *Effective, eff *Effective) error {
	if previous.PreRotationActive {
		if wire.NextKeyHashes == nil {
			return webvherr.New(webvherr.ParametersError, "nextKeyHashes must be carried forward while pre-rotation is active")
		}
	}

	if wire.UpdateKeys != nil {
		if wire.UpdateKeys.Clear {
			eff.UpdateKeys = nil
		} else {
			if previous.PreRotationActive {
				for _, k := range wire.UpdateKeys.Value {
					if err := checkKeyHashCommitted(k, previous.NextKeyHashes); err != nil {
						return err
					}
				}
			}

			eff.UpdateKeys = wire.UpdateKeys.Value
		}
	}

	eff.ActiveUpdateKeys = eff.UpdateKeys

	if wire.NextKeyHashes != nil {
		if wire.NextKeyHashes.Clear || len(wire.NextKeyHashes.Value) == 0 {
			eff.NextKeyHashes = nil
			eff.PreRotationActive = false
		} else {
			eff.NextKeyHashes = wire.NextKeyHashes.Value
			eff.PreRotationActive = true
		}
	}

	return nil
}

func checkKeyHashCommitted(key string, committed []string) error {
	hash, err := canon.HashMultibase([]byte(key))
	if err != nil {
		return err
	}

	for _, h := range committed {
		if h == hash {
			return nil
		}
	}

	return webvherr.New(webvherr.ParametersError, "update key does not hash to a pre-committed nextKeyHashes entry")
}
