/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package witness

import (
	"github.com/trustbloc/did-go/method/webvh/params"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// ValidateLogEntry reports whether entryVersionID/entryVersionNumber
// is co-signed by enough of config's witnesses to meet its threshold,
// using only proofs at or below highestVersionNumber (the highest
// version number the resolving client has itself replayed) -- so a
// witness's pre-signed future proof cannot be used to validate an
// entry the chain has not yet reached. A nil config means the log
// carries no witness requirement and every entry trivially passes.
func (c *Collection) ValidateLogEntry(
	config *params.WitnessConfig,
	entryVersionID string,
	entryVersionNumber int,
	highestVersionNumber int,
) (bool, error) {
	if config == nil {
		return true, nil
	}

	state := c.GenerateProofState(highestVersionNumber)

	count := 0

	for _, w := range config.Witnesses {
		r, ok := state[w.ID]
		if !ok {
			continue
		}

		if r.N < entryVersionNumber {
			continue
		}

		verified, err := verifyRecord(r, w.ID)
		if err != nil {
			return false, err
		}

		if verified {
			count++
		}
	}

	return count >= config.Threshold, nil
}

func verifyRecord(r record, witnessMultikey string) (bool, error) {
	if len(r.Proof) == 0 {
		return false, nil
	}

	for _, p := range r.Proof {
		if err := Verify(r.VersionID, witnessMultikey, p); err != nil {
			continue
		}

		return true, nil
	}

	return false, nil
}

// RequireValid is ValidateLogEntry but returns a webvherr on failure
// instead of a bool, for callers (the resolver facade) that treat an
// unmet witness threshold as a terminal validation error.
func (c *Collection) RequireValid(
	config *params.WitnessConfig,
	entryVersionID string,
	entryVersionNumber int,
	highestVersionNumber int,
) error {
	ok, err := c.ValidateLogEntry(config, entryVersionID, entryVersionNumber, highestVersionNumber)
	if err != nil {
		return err
	}

	if !ok {
		return webvherr.New(webvherr.WitnessProofError, "witness proof threshold not met")
	}

	return nil
}
