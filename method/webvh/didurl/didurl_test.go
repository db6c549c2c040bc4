/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didurl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	validSCID = "QmSCID"
	validHost = "example.com"
)

func TestParseDIDForm(t *testing.T) {
	t.Run("minimal identifier defaults to well-known path", func(t *testing.T) {
		id, err := Parse("did:webvh:" + validSCID + ":" + validHost)
		require.NoError(t, err)
		require.Equal(t, validSCID, id.SCID)
		require.Equal(t, validHost, id.Domain)
		require.Empty(t, id.Port)
		require.Empty(t, id.PathSegments)
		require.Equal(t, DIDDoc, id.Kind)
		require.Equal(t, "https://example.com/.well-known/did.jsonl", id.RenderHTTPURL(""))
	})

	t.Run("path segments and port", func(t *testing.T) {
		id, err := Parse("did:webvh:" + validSCID + ":example.com%3A8443:user:alice")
		require.NoError(t, err)
		require.Equal(t, "8443", id.Port)
		require.Equal(t, []string{"user", "alice"}, id.PathSegments)
		require.Equal(t, "https://example.com:8443/user/alice/did.jsonl", id.RenderHTTPURL(""))
	})

	t.Run("localhost downgrades scheme to http", func(t *testing.T) {
		id, err := Parse("did:webvh:" + validSCID + ":localhost%3A9999")
		require.NoError(t, err)
		require.Equal(t, "http://localhost:9999/.well-known/did.jsonl", id.RenderHTTPURL(""))
	})

	t.Run("whois trailing segment sets kind", func(t *testing.T) {
		id, err := Parse("did:webvh:" + validSCID + ":" + validHost + ":whois")
		require.NoError(t, err)
		require.Equal(t, WhoIs, id.Kind)
		require.Empty(t, id.PathSegments)
		require.Equal(t, "https://example.com/.well-known/whois.vp", id.RenderHTTPURL(""))
	})

	t.Run("query selectors", func(t *testing.T) {
		id, err := Parse("did:webvh:" + validSCID + ":" + validHost + "?versionId=2-abc&versionNumber=2")
		require.NoError(t, err)
		require.Equal(t, "2-abc", id.VersionIDSelector)
		require.NotNil(t, id.VersionNumberSelector)
		require.Equal(t, uint64(2), *id.VersionNumberSelector)
	})

	t.Run("versionTime selector", func(t *testing.T) {
		id, err := Parse("did:webvh:" + validSCID + ":" + validHost + "?versionTime=2024-01-02T03:04:05Z")
		require.NoError(t, err)
		require.NotNil(t, id.VersionTimeSelector)
	})

	t.Run("unsupported method rejected", func(t *testing.T) {
		_, err := Parse("did:web:" + validHost)
		require.Error(t, err)
	})

	t.Run("invalid port rejected", func(t *testing.T) {
		_, err := Parse("did:webvh:" + validSCID + ":example.com%3Anotaport")
		require.Error(t, err)
	})

	t.Run("malformed query pair rejected", func(t *testing.T) {
		_, err := Parse("did:webvh:" + validSCID + ":" + validHost + "?justakey")
		require.Error(t, err)
	})
}

func TestParseHTTPURL(t *testing.T) {
	id, err := Parse("https://example.com/user/alice/did.jsonl")
	require.NoError(t, err)
	require.Equal(t, []string{"user", "alice"}, id.PathSegments)
	require.Equal(t, DIDDoc, id.Kind)

	id, err = Parse("https://example.com/.well-known/whois.vp")
	require.NoError(t, err)
	require.Empty(t, id.PathSegments)
	require.Equal(t, WhoIs, id.Kind)
}

func TestRenderDID(t *testing.T) {
	id, err := Parse("did:webvh:" + validSCID + ":example.com%3A8443:user:alice?versionNumber=3#key-1")
	require.NoError(t, err)
	require.Equal(t, "did:webvh:"+validSCID+":example.com%3A8443:user:alice?versionNumber=3#key-1", id.RenderDID())
}

func TestWitnessFileURL(t *testing.T) {
	id, err := Parse("did:webvh:" + validSCID + ":" + validHost)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/.well-known/did-witness.json", id.WitnessFileURL())
}
