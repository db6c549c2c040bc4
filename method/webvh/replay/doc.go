/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package replay implements the validation state machine that replays
// a did:webvh log: per-entry signature/ordering/parameter checks and
// the cross-entry invariants (ordering, authorization, portability,
// deactivation).
package replay

import (
	"encoding/json"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

func docID(state json.RawMessage) (string, error) {
	var doc struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(state, &doc); err != nil {
		return "", webvherr.Wrap(webvherr.ValidationError, "unmarshal DID document id", err)
	}

	return doc.ID, nil
}

func docAlsoKnownAs(state json.RawMessage) ([]string, error) {
	var doc struct {
		AlsoKnownAs []string `json:"alsoKnownAs"`
	}

	if err := json.Unmarshal(state, &doc); err != nil {
		return nil, webvherr.Wrap(webvherr.ValidationError, "unmarshal DID document alsoKnownAs", err)
	}

	return doc.AlsoKnownAs, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
