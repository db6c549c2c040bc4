/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package create is the non-interactive DID creation API for
// did:webvh: given an address, a DID document template, the desired
// parameters, and signing keys, it produces the signed genesis log
// entry (and, if witnesses are configured, their co-signatures) ready
// to be written to did.jsonl / did-witness.json. Grounded on the
// configuration/builder shape of the reference implementation's
// create_did, expressed as a single Options struct passed to Create.
package create

import (
	"encoding/json"
	"time"

	"github.com/trustbloc/did-go/method/webvh/didurl"
	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/params"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
	"github.com/trustbloc/did-go/method/webvh/witness"
)

// Options carries everything needed to create a new did:webvh DID.
type Options struct {
	// Address is a URL ("https://example.com/dids/alice") or a
	// did:webvh identifier with the literal "{SCID}" placeholder
	// ("did:webvh:{SCID}:example.com").
	Address string

	// SigningMultikey/Signer produce the genesis entry's Data
	// Integrity proof; Multikey must be one of Parameters.UpdateKeys.
	SigningMultikey string
	Signer          logentry.Signer

	// DIDDocument is the DID document template; any "{DID}" token in
	// a leaf string is substituted with the resolved DID.
	DIDDocument json.RawMessage

	// Parameters is the desired genesis effective parameter set.
	// Its SCID field is ignored; the real SCID is computed.
	Parameters *params.Effective

	// WitnessSecrets maps a witness's multikey to the Signer that
	// co-signs on its behalf, for every witness named in
	// Parameters.Witness.
	WitnessSecrets map[string]logentry.Signer

	AlsoKnownAsWeb  bool
	AlsoKnownAsSCID bool

	// VersionTime overrides the genesis entry's versionTime; the zero
	// value means time.Now().
	VersionTime time.Time
}

// Result is the outcome of a successful Create.
type Result struct {
	DID            string
	Entry          *logentry.Entry
	WitnessEntries []*witness.Entry
}

// Create builds, finalizes, and signs a genesis log entry (and its
// witness co-signatures, if any) from opts.
func Create(opts Options) (*Result, error) {
	if len(opts.Parameters.UpdateKeys) == 0 {
		return nil, webvherr.New(webvherr.ParametersError, "at least one update key is required")
	}

	if opts.Signer == nil || opts.SigningMultikey == "" {
		return nil, webvherr.New(webvherr.LogEntryError, "a signer and its multikey are required")
	}

	id, err := didurl.Parse(opts.Address)
	if err != nil {
		return nil, err
	}

	if id.SCID == "" {
		id.SCID = logentry.SCIDPlaceholder
	}

	webvhDID := id.RenderDID()

	doc, err := addAlsoKnownAs(opts.DIDDocument, webvhDID, opts.AlsoKnownAsWeb, opts.AlsoKnownAsSCID)
	if err != nil {
		return nil, err
	}

	doc = logentry.SubstituteDIDPlaceholder(doc, webvhDID)

	wire, err := params.DiffGenesis(opts.Parameters, logentry.SCIDPlaceholder)
	if err != nil {
		return nil, err
	}

	versionTime := opts.VersionTime
	if versionTime.IsZero() {
		versionTime = time.Now()
	}

	entry := logentry.Construct("", versionTime, wire, doc)

	if _, err := logentry.FinalizeGenesis(entry); err != nil {
		return nil, err
	}

	if err := logentry.Sign(entry, logentry.SCIDPlaceholder, opts.SigningMultikey, opts.Signer); err != nil {
		return nil, err
	}

	eff, err := params.Validate(entry.Parameters, nil)
	if err != nil {
		return nil, err
	}

	resolvedDID, err := stateID(entry.State)
	if err != nil {
		return nil, err
	}

	witnessEntries, err := signWitnessProofs(entry, eff.Witness, opts.WitnessSecrets, versionTime)
	if err != nil {
		return nil, err
	}

	return &Result{DID: resolvedDID, Entry: entry, WitnessEntries: witnessEntries}, nil
}

func stateID(state json.RawMessage) (string, error) {
	var doc struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(state, &doc); err != nil {
		return "", webvherr.Wrap(webvherr.DIDError, "unmarshal created DID document id", err)
	}

	return doc.ID, nil
}

func signWitnessProofs(
	entry *logentry.Entry,
	config *params.WitnessConfig,
	secrets map[string]logentry.Signer,
	at time.Time,
) ([]*witness.Entry, error) {
	if config == nil || len(config.Witnesses) == 0 {
		return nil, nil
	}

	collection := witness.NewCollection()

	for _, w := range config.Witnesses {
		signer, ok := secrets[w.ID]
		if !ok {
			return nil, webvherr.New(webvherr.WitnessProofError, "missing signing secret for witness "+w.ID)
		}

		proof, err := witness.Sign(entry.VersionID, w.ID, signer, at)
		if err != nil {
			return nil, err
		}

		if err := collection.AddProof(w.ID, entry.VersionID, []*logentry.DataIntegrityProof{proof}, false); err != nil {
			return nil, err
		}
	}

	return collection.Entries(), nil
}
