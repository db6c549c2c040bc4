/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package create

import (
	"encoding/json"
	"time"

	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/params"
)

// ChainStep is one update applied by BuildChain on top of the previous
// entry in the chain.
type ChainStep struct {
	VersionTime     time.Time
	Parameters      *params.Wire    // nil means no parameters change
	State           json.RawMessage // nil carries the previous entry's state forward
	SigningMultikey string
	Signer          logentry.Signer
}

// BuildChain applies steps on top of genesis in order, producing the
// signed multi-entry log fixtures exercised by this package's tests
// -- the Go equivalent of generate_history.rs's loop
// that repeatedly calls create_log_entry to grow a test DID's history.
func BuildChain(genesis *logentry.Entry, steps []ChainStep) ([]*logentry.Entry, error) {
	entries := make([]*logentry.Entry, 0, len(steps)+1)
	entries = append(entries, genesis)

	prev := genesis

	for _, step := range steps {
		state := step.State
		if state == nil {
			state = prev.State
		}

		wire := step.Parameters
		if wire == nil {
			wire = &params.Wire{}
		}

		e := logentry.Construct(prev.VersionID, step.VersionTime, wire, state)

		if err := logentry.FinalizeSubsequent(e, prev.VersionID); err != nil {
			return nil, err
		}

		if err := logentry.Sign(e, prev.VersionID, step.SigningMultikey, step.Signer); err != nil {
			return nil, err
		}

		entries = append(entries, e)
		prev = e
	}

	return entries, nil
}
