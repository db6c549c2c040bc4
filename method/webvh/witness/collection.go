/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package witness

import (
	"strconv"
	"strings"

	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/webvherr"
)

// record is one proof a witness has recorded against a versionId. It
// is the in-memory unit the Collection indexes; FutureEntry never
// appears on the wire (did-witness.json carries only Entry values) --
// it is an annotation on how the proof was added.
type record struct {
	WitnessID   string
	VersionID   string
	N           int
	Proof       []*logentry.DataIntegrityProof
	FutureEntry bool
}

// Collection accumulates witness proofs across a log's lifetime and
// reduces them to the "latest proof per witness" index used during
// validation, per spec §4.6.
type Collection struct {
	records []record
}

// NewCollection returns an empty witness proof collection.
func NewCollection() *Collection {
	return &Collection{}
}

// AddProof records a witness's proof for versionID. Unless
// futureEntry is true, any proof this witness previously recorded at
// a lower version number is dropped: a witness only ever needs to be
// trusted for its highest co-signed version. futureEntry proofs are
// pre-signed ahead of the log reaching that version and are kept
// untouched until WriteOptimiseRecords or GenerateProofState resolves
// them against a concrete version ceiling.
func (c *Collection) AddProof(witnessID, versionID string, proof []*logentry.DataIntegrityProof, futureEntry bool) error {
	n, err := versionNumber(versionID)
	if err != nil {
		return err
	}

	if !futureEntry {
		kept := c.records[:0]

		for _, r := range c.records {
			if r.WitnessID == witnessID && r.N < n {
				continue
			}

			kept = append(kept, r)
		}

		c.records = kept
	}

	c.records = append(c.records, record{
		WitnessID:   witnessID,
		VersionID:   versionID,
		N:           n,
		Proof:       proof,
		FutureEntry: futureEntry,
	})

	return nil
}

// WriteOptimiseRecords drops superseded non-future proofs, keeping
// only the highest-version proof recorded by each witness plus any
// futureEntry proofs -- the form suitable for serializing to
// did-witness.json.
func (c *Collection) WriteOptimiseRecords() {
	latest := map[string]int{}

	for _, r := range c.records {
		if r.FutureEntry {
			continue
		}

		if cur, ok := latest[r.WitnessID]; !ok || r.N > cur {
			latest[r.WitnessID] = r.N
		}
	}

	kept := c.records[:0]

	for _, r := range c.records {
		if r.FutureEntry || r.N >= latest[r.WitnessID] {
			kept = append(kept, r)
		}
	}

	c.records = kept
}

// Entries renders the collection as the Entry list written to
// did-witness.json, after WriteOptimiseRecords: one Entry per
// versionId, carrying every recorded proof for that versionId.
func (c *Collection) Entries() []*Entry {
	c.WriteOptimiseRecords()

	entries := make([]*Entry, 0, len(c.records))
	byVersion := map[string]*Entry{}

	for _, r := range c.records {
		if e, ok := byVersion[r.VersionID]; ok {
			e.Proof = append(e.Proof, r.Proof...)
			continue
		}

		e := &Entry{VersionID: r.VersionID, Proof: append([]*logentry.DataIntegrityProof{}, r.Proof...)}
		byVersion[r.VersionID] = e
		entries = append(entries, e)
	}

	return entries
}

// GenerateProofState computes, for each witness, the highest-version
// proof it has recorded whose version number does not exceed
// highestVersionNumber -- treating any proof beyond that ceiling as if
// it did not exist. This is how a chain not yet caught up to a
// witness's pre-signed future proof ignores it until it does.
func (c *Collection) GenerateProofState(highestVersionNumber int) map[string]record {
	latest := map[string]record{}

	for _, r := range c.records {
		if r.N > highestVersionNumber {
			continue
		}

		if cur, ok := latest[r.WitnessID]; !ok || r.N > cur.N {
			latest[r.WitnessID] = r
		}
	}

	return latest
}

// LoadEntries replaces the collection's contents with entries read
// from a did-witness.json document.
func (c *Collection) LoadEntries(entries []*Entry, witnessIDFor func(versionID string, proof *logentry.DataIntegrityProof) string) error {
	c.records = nil

	for _, e := range entries {
		n, err := versionNumber(e.VersionID)
		if err != nil {
			return err
		}

		for _, p := range e.Proof {
			witnessID := multikeyFromVerificationMethod(p.VerificationMethod)
			if witnessIDFor != nil {
				witnessID = witnessIDFor(e.VersionID, p)
			}

			c.records = append(c.records, record{
				WitnessID: witnessID,
				VersionID: e.VersionID,
				N:         n,
				Proof:     []*logentry.DataIntegrityProof{p},
			})
		}
	}

	return nil
}

// multikeyFromVerificationMethod extracts the multikey from a
// "did:key:<mb>#<mb>" verificationMethod string.
func multikeyFromVerificationMethod(vm string) string {
	const prefix = "did:key:"

	if !strings.HasPrefix(vm, prefix) {
		return vm
	}

	rest := vm[len(prefix):]
	if idx := strings.IndexByte(rest, '#'); idx >= 0 {
		return rest[:idx]
	}

	return rest
}

func versionNumber(versionID string) (int, error) {
	idx := strings.IndexByte(versionID, '-')
	if idx <= 0 {
		return 0, webvherr.New(webvherr.WitnessProofError, "malformed versionId "+versionID)
	}

	n, err := strconv.Atoi(versionID[:idx])
	if err != nil {
		return 0, webvherr.Wrap(webvherr.WitnessProofError, "parse versionId number", err)
	}

	return n, nil
}
