/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webexport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToWebDIDRewritesIDAndController(t *testing.T) {
	state := json.RawMessage(`{"id":"did:webvh:acme1234:affinidi.com:path"}`)

	out, err := ToWebDID(state)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	require.Equal(t, "did:web:affinidi.com:path", doc["id"])
	require.Equal(t, "did:webvh:acme1234:affinidi.com:path", doc["controller"])
}

func TestToWebDIDMissingID(t *testing.T) {
	_, err := ToWebDID(json.RawMessage(`{"not_id":"did:webvh:acme1234:affinidi.com:path"}`))
	require.Error(t, err)
}

func TestToWebDIDAlsoKnownAsEmpty(t *testing.T) {
	out, err := ToWebDID(json.RawMessage(`{"id":"did:webvh:acme1234:affinidi.com"}`))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	aka := doc["alsoKnownAs"].([]interface{})
	require.Len(t, aka, 1)
	require.Contains(t, aka, "did:webvh:acme1234:affinidi.com")
}

func TestToWebDIDAlsoKnownAsExistingWebVH(t *testing.T) {
	out, err := ToWebDID(json.RawMessage(
		`{"id":"did:webvh:acme1234:affinidi.com","alsoKnownAs":["did:webvh:acme1234:affinidi.com"]}`))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	aka := doc["alsoKnownAs"].([]interface{})
	require.Len(t, aka, 1)
}

func TestToWebDIDAlsoKnownAsDropsSynthesizedWebAlias(t *testing.T) {
	out, err := ToWebDID(json.RawMessage(
		`{"id":"did:webvh:acme1234:affinidi.com","alsoKnownAs":["did:web:affinidi.com"]}`))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	aka := doc["alsoKnownAs"].([]interface{})
	require.Len(t, aka, 1)
	require.NotContains(t, aka, "did:web:affinidi.com")
	require.Contains(t, aka, "did:webvh:acme1234:affinidi.com")
}

func TestToWebDIDAlsoKnownAsMany(t *testing.T) {
	out, err := ToWebDID(json.RawMessage(
		`{"id":"did:webvh:acme1234:affinidi.com","alsoKnownAs":` +
			`["did:web:affinidi.com","did:webvh:acme1234:affinidi.com","did:web:unknown.com"]}`))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	aka := doc["alsoKnownAs"].([]interface{})
	require.Len(t, aka, 2)
	require.NotContains(t, aka, "did:web:affinidi.com")
	require.Contains(t, aka, "did:web:unknown.com")
	require.Contains(t, aka, "did:webvh:acme1234:affinidi.com")
}

func TestToWebDIDImplicitServicesRoot(t *testing.T) {
	out, err := ToWebDID(json.RawMessage(`{"id":"did:webvh:acme1234:affinidi.com"}`))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	services := doc["service"].([]interface{})
	require.Len(t, services, 2)

	endpoints := map[string]string{}

	for _, s := range services {
		m := s.(map[string]interface{})
		endpoints[m["id"].(string)] = m["serviceEndpoint"].(string)
	}

	require.Equal(t, "https://affinidi.com/", endpoints["did:web:affinidi.com#files"])
	require.Equal(t, "https://affinidi.com/whois.vp", endpoints["did:web:affinidi.com#whois"])
}

func TestToWebDIDImplicitServicesCustomPath(t *testing.T) {
	out, err := ToWebDID(json.RawMessage(`{"id":"did:webvh:acme1234:affinidi.com:custom:path"}`))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	services := doc["service"].([]interface{})
	require.Len(t, services, 2)

	endpoints := map[string]string{}

	for _, s := range services {
		m := s.(map[string]interface{})
		endpoints[m["id"].(string)] = m["serviceEndpoint"].(string)
	}

	require.Equal(t, "https://affinidi.com/custom/path/", endpoints["did:web:affinidi.com:custom:path#files"])
	require.Equal(t, "https://affinidi.com/custom/path/whois.vp", endpoints["did:web:affinidi.com:custom:path#whois"])
}
