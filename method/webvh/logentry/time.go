/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logentry

import (
	"encoding/json"
	"time"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// marshalTime renders t per TimeLayout: RFC 3339, whole seconds, with
// an explicit timezone. Canonicalization is byte-sensitive, so every
// entry/proof timestamp in the system must go through this helper
// rather than time.Time's default (sub-second, offset-preserving)
// JSON encoding.
func marshalTime(t time.Time) ([]byte, error) {
	return json.Marshal(t.UTC().Truncate(time.Second).Format(TimeLayout))
}

func unmarshalTime(raw []byte) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, webvherr.Wrap(webvherr.LogEntryError, "unmarshal timestamp", err)
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, webvherr.Wrap(webvherr.LogEntryError, "parse timestamp", err)
	}

	return t, nil
}
