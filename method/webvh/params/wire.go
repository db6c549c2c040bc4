/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package params implements the tri-state, diff-based, versioned
// "parameters" configuration carried across did:webvh log entries.
// A wire-level value distinguishes three states per field: absent
// ("inherit previous value"), cleared (JSON null in the legacy
// "1.0-pre" shape, or an empty collection/object in the current
// shape; "deactivate this setting"), and present ("replace"). A plain
// optional type cannot carry this distinction, so each field gets an
// explicit tagged variant.
package params

import (
	"bytes"
	"encoding/json"

	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// Variant identifies which on-the-wire shape a Parameters value was
// read in (or should be written in). The legacy "1.0-pre" shape
// serializes a cleared field as JSON null; the current shape
// serializes it as an empty collection or object. Hash verification
// is byte-sensitive, so the variant that was read must be preserved
// on re-serialization.
type Variant int

const (
	// Current is the "1.0" wire shape: cleared fields are empty
	// collections/objects.
	Current Variant = iota
	// LegacyPre is the "1.0-pre" wire shape: cleared fields are JSON
	// null.
	LegacyPre
)

// ListField is a tri-state list-valued field (updateKeys,
// nextKeyHashes, watchers). A nil *ListField means "absent" on the
// wire. A non-nil *ListField with Clear true means "cleared". A
// non-nil *ListField with Clear false carries the replacement value.
type ListField struct {
	Clear bool
	Value []string
}

// WitnessEntry is one entry of a witness configuration's witness
// list.
type WitnessEntry struct {
	ID string `json:"id"`
}

// WitnessConfig is the value form of the witness parameter.
type WitnessConfig struct {
	Threshold int            `json:"threshold"`
	Witnesses []WitnessEntry `json:"witnesses"`
}

// Equal reports structural equality of two witness configurations,
// used by the diff operation's same-value-is-absent rule.
func (w *WitnessConfig) Equal(o *WitnessConfig) bool {
	if w == nil || o == nil {
		return w == o
	}

	if w.Threshold != o.Threshold || len(w.Witnesses) != len(o.Witnesses) {
		return false
	}

	for i := range w.Witnesses {
		if w.Witnesses[i].ID != o.Witnesses[i].ID {
			return false
		}
	}

	return true
}

// WitnessField is the tri-state witness field: nil means absent;
// non-nil with Clear true means the witness config is cleared; non-nil
// with Clear false and Config set carries the replacement config.
type WitnessField struct {
	Clear  bool
	Config *WitnessConfig
}

// Wire is the on-the-wire "parameters" object of a single log entry:
// a diff against the previous entry's effective state.
type Wire struct {
	Variant Variant

	Method        *string
	SCID          *string
	UpdateKeys    *ListField
	Portable      *bool
	NextKeyHashes *ListField
	Witness       *WitnessField
	Watchers      *ListField
	Deactivated   *bool
	TTL           *int
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// MarshalJSON renders w in its recorded Variant, preserving the
// absent/cleared/present distinction byte-sensitively: entry hashes
// cover this exact representation.
func (w *Wire) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	first := true

	write := func(key string, raw []byte) {
		if !first {
			buf.WriteByte(',')
		}

		first = false
		buf.WriteString(`"` + key + `":`)
		buf.Write(raw)
	}

	if w.Method != nil {
		raw, _ := json.Marshal(*w.Method) //nolint:errcheck
		write("method", raw)
	}

	if w.SCID != nil {
		raw, _ := json.Marshal(*w.SCID) //nolint:errcheck
		write("scid", raw)
	}

	if w.UpdateKeys != nil {
		write("updateKeys", w.marshalList(w.UpdateKeys))
	}

	if w.Portable != nil {
		raw, _ := json.Marshal(*w.Portable) //nolint:errcheck
		write("portable", raw)
	}

	if w.NextKeyHashes != nil {
		write("nextKeyHashes", w.marshalList(w.NextKeyHashes))
	}

	if w.Witness != nil {
		write("witness", w.marshalWitness(w.Witness))
	}

	if w.Watchers != nil {
		write("watchers", w.marshalList(w.Watchers))
	}

	if w.Deactivated != nil {
		raw, _ := json.Marshal(*w.Deactivated) //nolint:errcheck
		write("deactivated", raw)
	}

	if w.TTL != nil {
		raw, _ := json.Marshal(*w.TTL) //nolint:errcheck
		write("ttl", raw)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (w *Wire) marshalList(f *ListField) []byte {
	if f.Clear {
		if w.Variant == LegacyPre {
			return []byte("null")
		}

		return []byte("[]")
	}

	raw, _ := json.Marshal(f.Value) //nolint:errcheck

	return raw
}

func (w *Wire) marshalWitness(f *WitnessField) []byte {
	if f.Clear {
		if w.Variant == LegacyPre {
			return []byte("null")
		}

		return []byte("{}")
	}

	raw, _ := json.Marshal(f.Config) //nolint:errcheck

	return raw
}

// UnmarshalJSON parses raw as a Wire, detecting the legacy "1.0-pre"
// shape by the presence of any JSON null among updateKeys,
// nextKeyHashes, witness, watchers, ttl.
func (w *Wire) UnmarshalJSON(raw []byte) error {
	var obj map[string]json.RawMessage

	if err := json.Unmarshal(raw, &obj); err != nil {
		return webvherr.Wrap(webvherr.ParametersError, "unmarshal parameters object", err)
	}

	*w = Wire{}

	for _, key := range []string{"updateKeys", "nextKeyHashes", "witness", "watchers", "ttl"} {
		if v, ok := obj[key]; ok && isJSONNull(v) {
			w.Variant = LegacyPre

			break
		}
	}

	if v, ok := obj["method"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return webvherr.Wrap(webvherr.ParametersError, "unmarshal method", err)
		}

		w.Method = &s
	}

	if v, ok := obj["scid"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return webvherr.Wrap(webvherr.ParametersError, "unmarshal scid", err)
		}

		w.SCID = &s
	}

	var err error

	if w.UpdateKeys, err = unmarshalList(obj, "updateKeys"); err != nil {
		return err
	}

	if v, ok := obj["portable"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return webvherr.Wrap(webvherr.ParametersError, "unmarshal portable", err)
		}

		w.Portable = &b
	}

	if w.NextKeyHashes, err = unmarshalList(obj, "nextKeyHashes"); err != nil {
		return err
	}

	if w.Witness, err = unmarshalWitness(obj); err != nil {
		return err
	}

	if w.Watchers, err = unmarshalList(obj, "watchers"); err != nil {
		return err
	}

	if v, ok := obj["deactivated"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return webvherr.Wrap(webvherr.ParametersError, "unmarshal deactivated", err)
		}

		w.Deactivated = &b
	}

	if v, ok := obj["ttl"]; ok {
		if isJSONNull(v) {
			w.TTL = nil
		} else {
			var n int
			if err := json.Unmarshal(v, &n); err != nil {
				return webvherr.Wrap(webvherr.ParametersError, "unmarshal ttl", err)
			}

			w.TTL = &n
		}
	}

	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return string(trimmed) == "null"
}

func unmarshalList(obj map[string]json.RawMessage, key string) (*ListField, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil //nolint:nilnil
	}

	if isJSONNull(v) {
		return &ListField{Clear: true}, nil
	}

	var list []string
	if err := json.Unmarshal(v, &list); err != nil {
		return nil, webvherr.Wrap(webvherr.ParametersError, "unmarshal "+key, err)
	}

	if len(list) == 0 {
		return &ListField{Clear: true}, nil
	}

	return &ListField{Value: list}, nil
}

func unmarshalWitness(obj map[string]json.RawMessage) (*WitnessField, error) {
	v, ok := obj["witness"]
	if !ok {
		return nil, nil //nolint:nilnil
	}

	if isJSONNull(v) {
		return &WitnessField{Clear: true}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(v, &raw); err != nil {
		return nil, webvherr.Wrap(webvherr.ParametersError, "unmarshal witness", err)
	}

	if len(raw) == 0 {
		return &WitnessField{Clear: true}, nil
	}

	var cfg WitnessConfig
	if err := json.Unmarshal(v, &cfg); err != nil {
		return nil, webvherr.Wrap(webvherr.ParametersError, "unmarshal witness config", err)
	}

	return &WitnessField{Config: &cfg}, nil
}
