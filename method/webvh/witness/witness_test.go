/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package witness

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/params"
)

type witnessKey struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	mk   string
}

func newWitnessKey(t *testing.T) witnessKey {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	return witnessKey{pub: pub, priv: priv, mk: canon.Ed25519Multikey(pub)}
}

func sign(t *testing.T, versionID string, w witnessKey, at time.Time) *logentry.DataIntegrityProof {
	t.Helper()

	p, err := Sign(versionID, w.mk, logentry.NewEd25519Signer(w.priv), at)
	require.NoError(t, err)

	return p
}

// TestThresholdTwoOfThree covers spec §8 scenario 6: a witness
// configuration requiring 2 of {w1, w2, w3} to co-sign. Entry 1 is
// valid once w1 and w2 have recorded proofs at or above version 1,
// even though w3 never signs at all.
func TestThresholdTwoOfThree(t *testing.T) {
	w1 := newWitnessKey(t)
	w2 := newWitnessKey(t)
	w3 := newWitnessKey(t)

	config := &params.WitnessConfig{
		Threshold: 2,
		Witnesses: []params.WitnessEntry{{ID: w1.mk}, {ID: w2.mk}, {ID: w3.mk}},
	}

	now := time.Now()

	c := NewCollection()
	require.NoError(t, c.AddProof(w1.mk, "1-abc", []*logentry.DataIntegrityProof{sign(t, "1-abc", w1, now)}, false))
	require.NoError(t, c.AddProof(w2.mk, "1-abc", []*logentry.DataIntegrityProof{sign(t, "1-abc", w2, now)}, false))

	ok, err := c.ValidateLogEntry(config, "1-abc", 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestThresholdNotMetWhenOnlyOneSigns(t *testing.T) {
	w1 := newWitnessKey(t)
	w2 := newWitnessKey(t)

	config := &params.WitnessConfig{
		Threshold: 2,
		Witnesses: []params.WitnessEntry{{ID: w1.mk}, {ID: w2.mk}},
	}

	now := time.Now()

	c := NewCollection()
	require.NoError(t, c.AddProof(w1.mk, "1-abc", []*logentry.DataIntegrityProof{sign(t, "1-abc", w1, now)}, false))

	ok, err := c.ValidateLogEntry(config, "1-abc", 1, 1)
	require.NoError(t, err)
	require.False(t, ok)

	require.Error(t, c.RequireValid(config, "1-abc", 1, 1))
}

// TestFutureEntryIgnoredUntilChainCatchesUp covers a witness
// pre-signing a proof for a version the replaying client has not yet
// reached: the proof must not count toward validation until
// highestVersionNumber reaches it.
func TestFutureEntryIgnoredUntilChainCatchesUp(t *testing.T) {
	w1 := newWitnessKey(t)
	w2 := newWitnessKey(t)

	config := &params.WitnessConfig{
		Threshold: 2,
		Witnesses: []params.WitnessEntry{{ID: w1.mk}, {ID: w2.mk}},
	}

	now := time.Now()

	c := NewCollection()
	require.NoError(t, c.AddProof(w1.mk, "1-abc", []*logentry.DataIntegrityProof{sign(t, "1-abc", w1, now)}, false))
	// w2 pre-signs version 2 ahead of the chain reaching it.
	require.NoError(t, c.AddProof(w2.mk, "2-def", []*logentry.DataIntegrityProof{sign(t, "2-def", w2, now)}, true))

	ok, err := c.ValidateLogEntry(config, "1-abc", 1, 1)
	require.NoError(t, err)
	require.False(t, ok, "w2's future proof must not count while highestVersionNumber is still 1")

	ok, err = c.ValidateLogEntry(config, "1-abc", 1, 2)
	require.NoError(t, err)
	require.True(t, ok, "once the chain reaches version 2, w2's pre-signed proof covers entry 1 too")
}

func TestAddProofDropsOlderNonFutureProof(t *testing.T) {
	w1 := newWitnessKey(t)
	now := time.Now()

	c := NewCollection()
	require.NoError(t, c.AddProof(w1.mk, "1-abc", []*logentry.DataIntegrityProof{sign(t, "1-abc", w1, now)}, false))
	require.NoError(t, c.AddProof(w1.mk, "2-def", []*logentry.DataIntegrityProof{sign(t, "2-def", w1, now)}, false))

	require.Len(t, c.records, 1)
	require.Equal(t, 2, c.records[0].N)
}

func TestWriteOptimiseRecordsPreservesFutureEntries(t *testing.T) {
	w1 := newWitnessKey(t)
	now := time.Now()

	c := NewCollection()
	require.NoError(t, c.AddProof(w1.mk, "1-abc", []*logentry.DataIntegrityProof{sign(t, "1-abc", w1, now)}, false))
	require.NoError(t, c.AddProof(w1.mk, "2-def", []*logentry.DataIntegrityProof{sign(t, "2-def", w1, now)}, false))
	require.NoError(t, c.AddProof(w1.mk, "5-xyz", []*logentry.DataIntegrityProof{sign(t, "5-xyz", w1, now)}, true))

	entries := c.Entries()
	require.Len(t, entries, 2)
}

func TestVerifyRejectsWrongWitness(t *testing.T) {
	w1 := newWitnessKey(t)
	w2 := newWitnessKey(t)
	now := time.Now()

	proof := sign(t, "1-abc", w1, now)
	require.Error(t, Verify("1-abc", w2.mk, proof))
}
