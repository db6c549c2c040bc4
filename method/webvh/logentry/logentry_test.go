/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logentry

import (
	"crypto/ed25519"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-go/method/webvh/canon"
	"github.com/trustbloc/did-go/method/webvh/params"
)

func TestGenesisFinalizeAndVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	mk := canon.Ed25519Multikey(pub)

	wire := &params.Wire{
		SCID:       strPtrT(SCIDPlaceholder),
		UpdateKeys: &params.ListField{Value: []string{mk}},
	}

	state := json.RawMessage(`{"id":"did:webvh:` + SCIDPlaceholder + `:example.com","alsoKnownAs":["did:web:example.com"]}`)

	entry := Construct("", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), wire, state)
	require.Equal(t, SCIDPlaceholder, entry.VersionID)

	scid, err := FinalizeGenesis(entry)
	require.NoError(t, err)
	require.NotEmpty(t, scid)
	require.Contains(t, entry.VersionID, "1-")
	require.NotContains(t, string(entry.State), SCIDPlaceholder)
	require.Contains(t, string(entry.State), scid)
	require.Equal(t, scid, *entry.Parameters.SCID)

	require.NoError(t, Sign(entry, SCIDPlaceholder, mk, NewEd25519Signer(priv)))
	require.Len(t, entry.Proof, 1)

	require.NoError(t, VerifyProof(entry, SCIDPlaceholder, pub))

	// Tamper with state: verification must fail.
	entry.State = append(json.RawMessage{}, entry.State...)
	entry.State = append(entry.State[:len(entry.State)-1], 'X', '}')
	require.Error(t, VerifyProof(entry, SCIDPlaceholder, pub))
}

func TestEntryJSONRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	mk := canon.Ed25519Multikey(pub)

	wire := &params.Wire{SCID: strPtrT("scid1"), UpdateKeys: &params.ListField{Value: []string{mk}}}
	entry := Construct("", time.Date(2024, 5, 6, 7, 8, 9, 123, time.UTC), wire, json.RawMessage(`{"id":"x"}`))
	entry.VersionID = "1-abc"
	require.NoError(t, Sign(entry, SCIDPlaceholder, mk, NewEd25519Signer(priv)))

	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"versionTime":"2024-05-06T07:08:09Z"`)

	var got Entry
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, entry.VersionID, got.VersionID)
	require.True(t, entry.VersionTime.Equal(got.VersionTime))
	require.Len(t, got.Proof, 1)
}

func TestSubsequentFinalize(t *testing.T) {
	wire := &params.Wire{}
	entry := Construct("1-abc", time.Now(), wire, json.RawMessage(`{}`))
	require.Equal(t, "1-abc", entry.VersionID)

	require.NoError(t, FinalizeSubsequent(entry, "1-abc"))
	n, err := entry.VersionNumber()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func strPtrT(s string) *string { return &s }
