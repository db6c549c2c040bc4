/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/logentry"
	"github.com/trustbloc/did-go/method/webvh/params"
)

type fakeFetcher struct {
	logBody     []byte
	witnessBody []byte
	witnessOK   bool
}

func (f *fakeFetcher) FetchLog(_ context.Context, _ string) ([]byte, error) {
	return f.logBody, nil
}

func (f *fakeFetcher) FetchWitnessProofs(_ context.Context, _ string) ([]byte, bool, error) {
	return f.witnessBody, f.witnessOK, nil
}

func buildSimpleLog(t *testing.T) (scid string, raw []byte, signTime time.Time) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	mk := canon.Ed25519Multikey(pub)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	wire := &params.Wire{
		SCID:       strPtr(logentry.SCIDPlaceholder),
		UpdateKeys: &params.ListField{Value: []string{mk}},
	}

	state := json.RawMessage(`{"id":"did:webvh:` + logentry.SCIDPlaceholder + `:example.com"}`)
	entry := logentry.Construct("", now, wire, state)

	scid, err = logentry.FinalizeGenesis(entry)
	require.NoError(t, err)

	require.NoError(t, logentry.Sign(entry, logentry.SCIDPlaceholder, mk, logentry.NewEd25519Signer(priv)))

	line, err := json.Marshal(entry)
	require.NoError(t, err)

	return scid, append(line, '\n'), now
}

func strPtr(s string) *string { return &s }

func TestResolveSimpleLog(t *testing.T) {
	_, raw, signTime := buildSimpleLog(t)

	r := New(
		WithFetcher(&fakeFetcher{logBody: raw, witnessOK: false}),
		WithClock(func() time.Time { return signTime.Add(time.Hour) }),
	)

	state, meta, err := r.Resolve(context.Background(), "did:webvh:placeholder:example.com")
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Contains(t, string(state), "example.com")
	require.Equal(t, "1-"+mustHash(t, raw), meta.VersionID)
}

func mustHash(t *testing.T, raw []byte) string {
	t.Helper()

	line := bytes.TrimRight(raw, "\n")

	var e logentry.Entry
	require.NoError(t, json.Unmarshal(line, &e))

	hash, err := e.EntryHash()
	require.NoError(t, err)

	return hash
}

func TestResolveMissingWitnessProofFileWhenRequired(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	mk := canon.Ed25519Multikey(pub)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	wire := &params.Wire{
		SCID:       strPtr(logentry.SCIDPlaceholder),
		UpdateKeys: &params.ListField{Value: []string{mk}},
		Witness: &params.WitnessField{Config: &params.WitnessConfig{
			Threshold: 1,
			Witnesses: []params.WitnessEntry{{ID: mk}},
		}},
	}

	state := json.RawMessage(`{"id":"did:webvh:` + logentry.SCIDPlaceholder + `:example.com"}`)
	genesis := logentry.Construct("", now, wire, state)

	_, err = logentry.FinalizeGenesis(genesis)
	require.NoError(t, err)
	require.NoError(t, logentry.Sign(genesis, logentry.SCIDPlaceholder, mk, logentry.NewEd25519Signer(priv)))

	genesisLine, err := json.Marshal(genesis)
	require.NoError(t, err)

	entry2 := logentry.Construct(genesis.VersionID, now.Add(time.Minute), &params.Wire{}, genesis.State)
	require.NoError(t, logentry.FinalizeSubsequent(entry2, genesis.VersionID))
	require.NoError(t, logentry.Sign(entry2, genesis.VersionID, mk, logentry.NewEd25519Signer(priv)))

	entry2Line, err := json.Marshal(entry2)
	require.NoError(t, err)

	raw := append(append(genesisLine, '\n'), append(entry2Line, '\n')...)

	r := New(
		WithFetcher(&fakeFetcher{logBody: raw, witnessOK: false}),
		WithClock(func() time.Time { return now.Add(time.Hour) }),
	)

	_, _, err = r.Resolve(context.Background(), "did:webvh:placeholder:example.com")
	require.Error(t, err)
}
